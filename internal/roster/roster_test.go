package roster

import (
    "os"
    "path/filepath"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/dineshyadav009/retrospectives/internal/domain"
)

func writeFile(t *testing.T, body string) string {
    t.Helper()
    path := filepath.Join(t.TempDir(), "roster.yaml")
    require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
    return path
}

func TestLoadAndApply(t *testing.T) {
    path := writeFile(t, `members:
  - name: Alice
    username: alice.a
    sheet_key: sheet-a
    sheet_index: 1
    bandwidth: 0.8
    days_worked: 9
  - name: Bob
    sheet_key: sheet-b
    days_worked: 10
tickets:
  - ABC-1
  - ABC-2
`)
    f, err := Load(path)
    require.NoError(t, err)

    retro := domain.NewRetroContext()
    require.NoError(t, f.Apply(retro))

    require.Len(t, retro.Members, 2)
    alice := retro.Members[0]
    assert.Equal(t, "alice.a", alice.Username)
    assert.Equal(t, 1, alice.SheetIndex)
    assert.Equal(t, 0.8, alice.Bandwidth)
    assert.Equal(t, 9, alice.DaysWorked)

    // username falls back to the display name, bandwidth to full time
    bob := retro.Members[1]
    assert.Equal(t, "Bob", bob.Username)
    assert.Equal(t, 1.0, bob.Bandwidth)

    assert.True(t, retro.HasTicket("ABC-1"))
    assert.True(t, retro.HasTicket("ABC-2"))
}

func TestApplyValidatesMembers(t *testing.T) {
    path := writeFile(t, `members:
  - name: Alice
    sheet_key: sheet-a
  - name: Bob
    sheet_key: sheet-a
`)
    f, err := Load(path)
    require.NoError(t, err)

    err = f.Apply(domain.NewRetroContext())
    var ve *domain.ValidationError
    require.ErrorAs(t, err, &ve)
    assert.Contains(t, ve.Error(), "duplicate sheet key")
}

func TestLoadErrors(t *testing.T) {
    _, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
    assert.Error(t, err)

    _, err = Load(writeFile(t, "members: {not: [valid"))
    assert.Error(t, err)
}

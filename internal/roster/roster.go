package roster

import (
    "fmt"
    "os"

    "github.com/dineshyadav009/retrospectives/internal/domain"
    "gopkg.in/yaml.v3"
)

// Member is one roster record. Username defaults to Name when the tracker
// identity matches the display name.
type Member struct {
    Name       string  `yaml:"name"`
    Username   string  `yaml:"username"`
    SheetKey   string  `yaml:"sheet_key"`
    SheetIndex int     `yaml:"sheet_index"`
    Bandwidth  float64 `yaml:"bandwidth"`
    DaysWorked int     `yaml:"days_worked"`
}

type File struct {
    Members []Member `yaml:"members"`
    Tickets []string `yaml:"tickets"`
}

func Load(path string) (File, error) {
    var f File
    data, err := os.ReadFile(path)
    if err != nil { return f, fmt.Errorf("roster: %w", err) }
    if err := yaml.Unmarshal(data, &f); err != nil {
        return f, fmt.Errorf("roster %s: %w", path, err)
    }
    return f, nil
}

// Apply adds the roster members and pre-declared tickets to the context.
// Member validation (required fields, duplicate sheet keys) happens here,
// before any fetch is attempted.
func (f File) Apply(retro *domain.RetroContext) error {
    for _, rm := range f.Members {
        m := domain.NewMember(rm.Name, rm.Username, rm.SheetKey)
        if m.Username == "" { m.Username = rm.Name }
        m.SheetIndex = rm.SheetIndex
        if rm.Bandwidth > 0 { m.Bandwidth = rm.Bandwidth }
        m.DaysWorked = rm.DaysWorked
        if err := retro.AddMember(m); err != nil { return err }
    }
    for _, id := range f.Tickets {
        retro.AddTicket(id)
    }
    return nil
}

package services

import (
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestParseStoryPoints(t *testing.T) {
    cases := []struct {
        raw      string
        consumed float64
        carry    float64
    }{
        {"5 (3)", 3, 2},
        {"5(3)", 3, 2},
        {"2.5 (1.5)", 1.5, 1},
        {"8", 8, 0},
        {"  8  ", 8, 0},
        {"", 0, 0},
        {"   ", 0, 0},
        {"TBD", 0, 0},
        {"? (2)", 2, 0},
        {"3 (3)", 3, 0},
    }
    for _, c := range cases {
        consumed, carry := parseStoryPoints(c.raw)
        assert.Equal(t, c.consumed, consumed, "consumed of %q", c.raw)
        assert.Equal(t, c.carry, carry, "carry of %q", c.raw)
    }
}

func TestFmtNum(t *testing.T) {
    assert.Equal(t, "5", fmtNum(5))
    assert.Equal(t, "3.5", fmtNum(3.5))
    assert.Equal(t, "0", fmtNum(0))
    assert.Equal(t, "14.4", fmtNum(14.4))
}

func TestStrField(t *testing.T) {
    fields := map[string]any{
        "summary": "Fix checkout",
        "status":  map[string]any{"name": "Done"},
    }
    assert.Equal(t, "Fix checkout", strField(fields, "summary"))
    assert.Equal(t, "Done", strField(fields, "status", "name"))
    assert.Equal(t, "", strField(fields, "issuetype", "name"))
    assert.Equal(t, "", strField(fields, "status", "name", "deeper"))
}

func TestNumField(t *testing.T) {
    assert.Equal(t, 5.0, numField(5.0))
    assert.Equal(t, 5.0, numField(5))
    assert.Equal(t, 5.0, numField(int64(5)))
    assert.Equal(t, 2.5, numField("2.5"))
    assert.Equal(t, 0.0, numField(nil))
    assert.Equal(t, 0.0, numField("n/a"))
}

func TestParseTime(t *testing.T) {
    got := parseTime("2017-01-10T09:00:00.000+0000")
    require.NotNil(t, got)
    assert.True(t, got.Equal(time.Date(2017, 1, 10, 9, 0, 0, 0, time.UTC)))

    // the wall-clock date survives even when UTC lands on the previous day
    got = parseTime("2017-01-10T01:00:00+05:30")
    require.NotNil(t, got)
    assert.Equal(t, 10, got.Day())
    assert.True(t, got.Equal(time.Date(2017, 1, 9, 19, 30, 0, 0, time.UTC)))

    assert.Nil(t, parseTime(""))
    assert.Nil(t, parseTime(nil))
    assert.Nil(t, parseTime("yesterday"))
}

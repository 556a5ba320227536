package services

import (
    "fmt"
    "regexp"
    "strconv"
    "strings"
    "time"

    "github.com/dineshyadav009/retrospectives/internal/domain"
)

var consumedRe = regexp.MustCompile(`\(\s*([0-9]+(?:\.[0-9]+)?)\s*\)`)

// parseStoryPoints splits a raw story-point field into consumed and
// carry-forward. "5 (3)" means total 5 with 3 consumed, so 2 carry forward;
// a plain number is fully consumed; anything else counts as zero.
func parseStoryPoints(raw string) (consumed, carry float64) {
    s := strings.TrimSpace(raw)
    if s == "" { return 0, 0 }
    if m := consumedRe.FindStringSubmatch(s); m != nil {
        consumed, _ = strconv.ParseFloat(m[1], 64)
        totalPart := strings.TrimSpace(s[:strings.Index(s, "(")])
        total, err := strconv.ParseFloat(totalPart, 64)
        if err != nil { return consumed, 0 }
        return consumed, domain.Round2(total - consumed)
    }
    v, err := strconv.ParseFloat(s, 64)
    if err != nil { return 0, 0 }
    return v, 0
}

func toFloat(s string) float64 {
    v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
    if err != nil { return 0 }
    return v
}

// fmtNum renders hours and points without trailing zeros: 5 not 5.00, 3.5 not 3.50.
func fmtNum(v float64) string {
    return strconv.FormatFloat(v, 'f', -1, 64)
}

func toStr(v any) string {
    if v == nil { return "" }
    if s, ok := v.(string); ok { return s }
    return fmt.Sprintf("%v", v)
}

// strField walks nested field maps: strField(fields, "status", "name").
func strField(fields map[string]any, path ...string) string {
    cur := any(fields)
    for _, p := range path {
        m, ok := cur.(map[string]any)
        if !ok { return "" }
        cur = m[p]
    }
    return toStr(cur)
}

func numField(v any) float64 {
    switch t := v.(type) {
    case float64:
        return t
    case int:
        return float64(t)
    case int64:
        return float64(t)
    case string:
        return toFloat(t)
    case fmt.Stringer:
        return toFloat(t.String())
    default:
        return 0
    }
}

// parseTime keeps the timestamp's own offset: the calendar day a worklog
// belongs to is the day as written, not the day after shifting to UTC.
func parseTime(v any) *time.Time {
    s, _ := v.(string)
    if s == "" { return nil }
    layouts := []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05.000-0700", "2006-01-02T15:04:05-0700", "2006-01-02"}
    for _, l := range layouts {
        if t, err := time.Parse(l, s); err == nil { return &t }
    }
    return nil
}

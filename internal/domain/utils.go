package domain

import (
    "fmt"
    "math"
    "strings"
)

// Clean normalizes a raw cell value: quotes dropped, surrounding whitespace
// stripped. Nil in, empty string out.
func Clean(v any) string {
    if v == nil { return "" }
    s := fmt.Sprint(v)
    s = strings.ReplaceAll(s, `"`, "")
    return strings.TrimSpace(s)
}

// ValidateRequired fails with a ValidationError naming the first key that is
// absent or blank in record. Keys are checked in the order given.
func ValidateRequired(record map[string]string, keys ...string) error {
    for _, k := range keys {
        v, ok := record[k]
        if !ok || strings.TrimSpace(v) == "" {
            return Validationf("required key missing [%s]", k)
        }
    }
    return nil
}

func Round2(v float64) float64 {
    return math.Round(v*100) / 100
}

package services

import (
    "context"
    "sync"
)

// fakeSheet is an in-memory grid. formulas falls back to values when nil so
// tests only need both when raw input differs from the displayed value.
type fakeSheet struct {
    values   [][]string
    formulas [][]string
    written  []writtenRange
    flushed  bool
}

type writtenRange struct {
    row, col int
    rows     [][]string
}

func gridAt(grid [][]string, row, col int) string {
    if row < 1 || row > len(grid) { return "" }
    r := grid[row-1]
    if col < 1 || col > len(r) { return "" }
    return r[col-1]
}

func (f *fakeSheet) Cell(row, col int) string { return gridAt(f.values, row, col) }

func (f *fakeSheet) InputValue(row, col int) string {
    if f.formulas == nil { return gridAt(f.values, row, col) }
    return gridAt(f.formulas, row, col)
}

func (f *fakeSheet) Rows() int {
    n := len(f.values)
    if len(f.formulas) > n { n = len(f.formulas) }
    return n
}

func (f *fakeSheet) Cols() int {
    max := 0
    for _, r := range f.values {
        if len(r) > max { max = len(r) }
    }
    for _, r := range f.formulas {
        if len(r) > max { max = len(r) }
    }
    return max
}

func (f *fakeSheet) WriteRange(startRow, startCol int, rows [][]string) {
    f.written = append(f.written, writtenRange{row: startRow, col: startCol, rows: rows})
}

func (f *fakeSheet) Flush(ctx context.Context) error {
    f.flushed = true
    return nil
}

type fakeStore struct {
    sheets  map[string]*fakeSheet // by spreadsheet key
    byTitle map[string]*fakeSheet // by "key/title", matched case-insensitively upstream
    err     error
}

func (s *fakeStore) Worksheet(ctx context.Context, key string, index int) (Sheet, error) {
    if s.err != nil { return nil, s.err }
    sh, ok := s.sheets[key]
    if !ok { return nil, &notFoundErr{key} }
    return sh, nil
}

func (s *fakeStore) WorksheetByTitle(ctx context.Context, key, title string) (Sheet, error) {
    if s.err != nil { return nil, s.err }
    sh, ok := s.byTitle[key+"/"+title]
    if !ok { return nil, &notFoundErr{key + "/" + title} }
    return sh, nil
}

type notFoundErr struct{ key string }

func (e *notFoundErr) Error() string { return "no sheet " + e.key }

// fakeJira mirrors the function-field fake style used for repository mocks.
type fakeJira struct {
    mu           sync.Mutex
    issueCalls   map[string]int
    worklogCalls map[string]int

    issueFunc    func(key string) (map[string]any, error)
    worklogsFunc func(key string) ([]map[string]any, error)
    searchFunc   func(jql string, startAt, max int) (map[string]any, error)

    updatedFields map[string]map[string]any
    worklogsAdded map[string][]map[string]any
}

func newFakeJira() *fakeJira {
    return &fakeJira{
        issueCalls:    map[string]int{},
        worklogCalls:  map[string]int{},
        updatedFields: map[string]map[string]any{},
        worklogsAdded: map[string][]map[string]any{},
    }
}

func (f *fakeJira) Issue(ctx context.Context, key string) (map[string]any, error) {
    f.mu.Lock()
    f.issueCalls[key]++
    f.mu.Unlock()
    if f.issueFunc == nil { return map[string]any{"fields": map[string]any{}}, nil }
    return f.issueFunc(key)
}

func (f *fakeJira) Worklogs(ctx context.Context, key string) ([]map[string]any, error) {
    f.mu.Lock()
    f.worklogCalls[key]++
    f.mu.Unlock()
    if f.worklogsFunc == nil { return nil, nil }
    return f.worklogsFunc(key)
}

func (f *fakeJira) Search(ctx context.Context, jql string, startAt, max int) (map[string]any, error) {
    if f.searchFunc == nil { return map[string]any{}, nil }
    return f.searchFunc(jql, startAt, max)
}

func (f *fakeJira) UpdateFields(ctx context.Context, key string, fields map[string]any) error {
    f.mu.Lock()
    defer f.mu.Unlock()
    f.updatedFields[key] = fields
    return nil
}

func (f *fakeJira) AddWorklog(ctx context.Context, key string, params map[string]any) error {
    f.mu.Lock()
    defer f.mu.Unlock()
    f.worklogsAdded[key] = append(f.worklogsAdded[key], params)
    return nil
}

func (f *fakeJira) calls(key string) int {
    f.mu.Lock()
    defer f.mu.Unlock()
    return f.issueCalls[key]
}

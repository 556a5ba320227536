/* Copyright (c) 2025 Dinesh Yadav
 * SPDX-License-Identifier: BSD-3-Clause */
package gsheets

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "io"
    "net/http"
    "net/url"
    "strings"

    "github.com/dineshyadav009/retrospectives/internal/config"
    "github.com/dineshyadav009/retrospectives/internal/services"
    "github.com/rs/zerolog"
)

// Client talks to the Google Sheets values API. Worksheets are fetched as
// whole grids up front; writes are buffered and flushed in one batch.
type Client struct {
    baseURL string
    token   string
    http    *http.Client
    log     zerolog.Logger
}

func NewClient(cfg config.Config, log zerolog.Logger) *Client {
    return &Client{
        baseURL: cfg.SheetsBaseURL,
        token:   cfg.GoogleToken,
        http:    &http.Client{Timeout: cfg.HTTPTimeout},
        log:     log,
    }
}

func (c *Client) Worksheet(ctx context.Context, key string, index int) (services.Sheet, error) {
    titles, err := c.sheetTitles(ctx, key)
    if err != nil { return nil, err }
    if index < 0 || index >= len(titles) {
        return nil, fmt.Errorf("gsheets: spreadsheet %s has no worksheet at index %d", key, index)
    }
    return c.load(ctx, key, titles[index])
}

func (c *Client) WorksheetByTitle(ctx context.Context, key, title string) (services.Sheet, error) {
    titles, err := c.sheetTitles(ctx, key)
    if err != nil { return nil, err }
    for _, t := range titles {
        if strings.EqualFold(t, title) { return c.load(ctx, key, t) }
    }
    return nil, fmt.Errorf("gsheets: no worksheet titled %q in %s", title, key)
}

func (c *Client) sheetTitles(ctx context.Context, key string) ([]string, error) {
    q := url.Values{}
    q.Set("fields", "sheets.properties.title")
    res, err := c.doJSON(ctx, http.MethodGet, c.apiURL("/v4/spreadsheets/"+url.PathEscape(key), q), nil)
    if err != nil { return nil, err }
    arr, _ := res["sheets"].([]any)
    titles := make([]string, 0, len(arr))
    for _, s0 := range arr {
        sm, _ := s0.(map[string]any)
        if sm == nil { continue }
        props, _ := sm["properties"].(map[string]any)
        if props == nil { continue }
        if t, ok := props["title"].(string); ok { titles = append(titles, t) }
    }
    return titles, nil
}

func (c *Client) load(ctx context.Context, key, title string) (*Worksheet, error) {
    values, err := c.values(ctx, key, title, "FORMATTED_VALUE")
    if err != nil { return nil, err }
    formulas, err := c.values(ctx, key, title, "FORMULA")
    if err != nil { return nil, err }
    return &Worksheet{client: c, key: key, title: title, values: values, formulas: formulas}, nil
}

func (c *Client) values(ctx context.Context, key, title, render string) ([][]string, error) {
    q := url.Values{}
    q.Set("valueRenderOption", render)
    path := "/v4/spreadsheets/" + url.PathEscape(key) + "/values/" + url.PathEscape(title)
    res, err := c.doJSON(ctx, http.MethodGet, c.apiURL(path, q), nil)
    if err != nil { return nil, err }
    arr, _ := res["values"].([]any)
    grid := make([][]string, 0, len(arr))
    for _, r0 := range arr {
        cells, _ := r0.([]any)
        row := make([]string, 0, len(cells))
        for _, cell := range cells { row = append(row, cellString(cell)) }
        grid = append(grid, row)
    }
    return grid, nil
}

// cellString keeps numeric cells exact: json.Number avoids float formatting drift.
func cellString(v any) string {
    switch t := v.(type) {
    case nil:
        return ""
    case string:
        return t
    case json.Number:
        return t.String()
    default:
        return fmt.Sprint(t)
    }
}

func (c *Client) apiURL(path string, q url.Values) string {
    base := strings.TrimRight(c.baseURL, "/")
    u := base + path
    if len(q) > 0 { u = u + "?" + q.Encode() }
    return u
}

func (c *Client) doJSON(ctx context.Context, method, u string, body any) (map[string]any, error) {
    if c.baseURL == "" { return nil, errors.New("gsheets: empty baseURL") }
    var r io.Reader
    if body != nil {
        b, err := json.Marshal(body)
        if err != nil { return nil, err }
        r = strings.NewReader(string(b))
    }
    req, err := http.NewRequestWithContext(ctx, method, u, r)
    if err != nil { return nil, err }
    if body != nil { req.Header.Set("Content-Type", "application/json") }
    if c.token != "" { req.Header.Set("Authorization", "Bearer "+c.token) }
    resp, err := c.http.Do(req)
    if err != nil { return nil, err }
    defer resp.Body.Close()
    if resp.StatusCode >= 300 {
        b, _ := io.ReadAll(resp.Body)
        return nil, fmt.Errorf("sheets api status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(b)))
    }
    dec := json.NewDecoder(resp.Body)
    dec.UseNumber()
    var out map[string]any
    if err := dec.Decode(&out); err != nil {
        if errors.Is(err, io.EOF) { return nil, nil }
        return nil, err
    }
    return out, nil
}

type pendingRange struct {
    startRow, startCol int
    rows               [][]string
}

// Worksheet is an in-memory snapshot of one sheet plus buffered writes.
type Worksheet struct {
    client   *Client
    key      string
    title    string
    values   [][]string
    formulas [][]string
    pending  []pendingRange
}

func cellAt(grid [][]string, row, col int) string {
    if row < 1 || row > len(grid) { return "" }
    r := grid[row-1]
    if col < 1 || col > len(r) { return "" }
    return r[col-1]
}

func (w *Worksheet) Cell(row, col int) string { return cellAt(w.values, row, col) }

func (w *Worksheet) InputValue(row, col int) string { return cellAt(w.formulas, row, col) }

func (w *Worksheet) Rows() int {
    if len(w.formulas) > len(w.values) { return len(w.formulas) }
    return len(w.values)
}

func (w *Worksheet) Cols() int {
    max := 0
    for _, r := range w.values {
        if len(r) > max { max = len(r) }
    }
    for _, r := range w.formulas {
        if len(r) > max { max = len(r) }
    }
    return max
}

func (w *Worksheet) WriteRange(startRow, startCol int, rows [][]string) {
    w.pending = append(w.pending, pendingRange{startRow: startRow, startCol: startCol, rows: rows})
}

// Flush sends every buffered range in a single batch update.
func (w *Worksheet) Flush(ctx context.Context) error {
    if len(w.pending) == 0 { return nil }
    data := make([]map[string]any, 0, len(w.pending))
    for _, p := range w.pending {
        width := 1
        for _, r := range p.rows {
            if len(r) > width { width = len(r) }
        }
        rng := fmt.Sprintf("%s!R%dC%d:R%dC%d", w.title, p.startRow, p.startCol, p.startRow+len(p.rows)-1, p.startCol+width-1)
        data = append(data, map[string]any{"range": rng, "values": p.rows})
    }
    body := map[string]any{"valueInputOption": "USER_ENTERED", "data": data}
    path := "/v4/spreadsheets/" + url.PathEscape(w.key) + "/values:batchUpdate"
    _, err := w.client.doJSON(ctx, http.MethodPost, w.client.apiURL(path, nil), body)
    if err != nil { return err }
    w.pending = nil
    return nil
}

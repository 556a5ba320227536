/* Copyright (c) 2025 Dinesh Yadav
 * SPDX-License-Identifier: BSD-3-Clause */
package jira

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
    "github.com/rs/zerolog"
)

type Client struct {
    baseURL string
    token   string
    user    string
    pass    string
    http    *http.Client
    log     zerolog.Logger
    apiVer  string
}

func NewClient(cfg config.Config, log zerolog.Logger) *Client {
    return &Client{
        baseURL: cfg.JiraBaseURL,
        token:   cfg.JiraPAT,
        user:    cfg.JiraUsername,
        pass:    cfg.JiraPassword,
        http:    &http.Client{Timeout: cfg.HTTPTimeout},
        log:     log,
        apiVer:  cfg.JiraAPIVersion,
    }
}

func (c *Client) apiURL(path string, q url.Values) string {
    base := strings.TrimRight(c.baseURL, "/")
    if !strings.HasPrefix(path, "/") { path = "/" + path }
    u := base + path
    if len(q) > 0 { u = u + "?" + q.Encode() }
    return u
}

func (c *Client) issuePath(key, suffix string) string {
    p := "/rest/api/3/issue/" + url.PathEscape(key)
    if c.apiVer == "2" { p = "/rest/api/2/issue/" + url.PathEscape(key) }
    if suffix != "" { p += "/" + suffix }
    return p
}

// doJSON performs a single request. The retry budget belongs to the caller:
// the sync layer caps attempts per ticket.
func (c *Client) doJSON(ctx context.Context, method, u string, body any) (map[string]any, error) {
    if c.baseURL == "" { return nil, errors.New("jira: empty baseURL") }
    var r io.Reader
    if body != nil {
        b, err := json.Marshal(body)
        if err != nil { return nil, err }
        r = strings.NewReader(string(b))
    }
    req, err := http.NewRequestWithContext(ctx, method, u, r)
    if err != nil { return nil, err }
    if body != nil { req.Header.Set("Content-Type", "application/json") }
    if c.token != "" {
        req.Header.Set("Authorization", "Bearer "+c.token)
    } else if c.user != "" && c.pass != "" {
        req.SetBasicAuth(c.user, c.pass)
    }
    resp, err := c.http.Do(req)
    if err != nil { return nil, err }
    defer resp.Body.Close()
    if resp.StatusCode >= 300 {
        b, _ := io.ReadAll(resp.Body)
        return nil, fmt.Errorf("jira api status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(b)))
    }
    if resp.StatusCode == http.StatusNoContent {
        return nil, nil
    }
    var out map[string]any
    if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
        if errors.Is(err, io.EOF) { return nil, nil }
        return nil, err
    }
    return out, nil
}

// Issue fetches a single issue with full fields.
func (c *Client) Issue(ctx context.Context, key string) (map[string]any, error) {
    if key == "" { return nil, errors.New("jira: empty issue key") }
    q := url.Values{}
    q.Set("fields", "*all")
    return c.doJSON(ctx, http.MethodGet, c.apiURL(c.issuePath(key, ""), q), nil)
}

// Worklogs fetches every worklog entry of an issue, following the response
// pagination metadata.
func (c *Client) Worklogs(ctx context.Context, key string) ([]map[string]any, error) {
    if key == "" { return nil, errors.New("jira: empty issue key") }
    var out []map[string]any
    startAt := 0
    for {
        q := url.Values{}
        if startAt > 0 { q.Set("startAt", fmt.Sprint(startAt)) }
        q.Set("maxResults", "100")
        page, err := c.doJSON(ctx, http.MethodGet, c.apiURL(c.issuePath(key, "worklog"), q), nil)
        if err != nil { return nil, err }
        arr, _ := page["worklogs"].([]any)
        if len(arr) == 0 { break }
        for _, w0 := range arr {
            if wi, _ := w0.(map[string]any); wi != nil { out = append(out, wi) }
        }
        total, _ := page["total"].(float64)
        startAtResp, _ := page["startAt"].(float64)
        maxResp, _ := page["maxResults"].(float64)
        if total == 0 { break }
        next := int(startAtResp) + int(maxResp)
        if float64(next) >= total { break }
        startAt = next
    }
    return out, nil
}

func (c *Client) Search(ctx context.Context, jql string, startAt, max int) (map[string]any, error) {
    if jql == "" { return nil, errors.New("jira: empty jql") }
    if c.apiVer == "2" {
        q := url.Values{}
        q.Set("jql", jql)
        if startAt > 0 { q.Set("startAt", fmt.Sprint(startAt)) }
        if max > 0 { q.Set("maxResults", fmt.Sprint(max)) }
        q.Set("fields", "*all")
        return c.doJSON(ctx, http.MethodGet, c.apiURL("/rest/api/2/search", q), nil)
    }
    // default to v3
    body := map[string]any{"jql": jql, "startAt": startAt, "maxResults": max}
    return c.doJSON(ctx, http.MethodPost, c.apiURL("/rest/api/3/search", url.Values{"fields": []string{"*all"}}), body)
}

// UpdateFields sets issue fields, custom or otherwise.
func (c *Client) UpdateFields(ctx context.Context, key string, fields map[string]any) error {
    if key == "" { return errors.New("jira: empty issue key") }
    if len(fields) == 0 { return errors.New("jira: empty fields") }
    body := map[string]any{"fields": fields}
    _, err := c.doJSON(ctx, http.MethodPut, c.apiURL(c.issuePath(key, ""), nil), body)
    return err
}

// AddWorklog posts a new worklog entry on an issue.
func (c *Client) AddWorklog(ctx context.Context, key string, params map[string]any) error {
    if key == "" { return errors.New("jira: empty issue key") }
    if len(params) == 0 { return errors.New("jira: empty worklog params") }
    _, err := c.doJSON(ctx, http.MethodPost, c.apiURL(c.issuePath(key, "worklog"), nil), params)
    return err
}

/* Copyright (c) 2025 Dinesh Yadav
 * SPDX-License-Identifier: BSD-3-Clause */
package services

import (
    "context"
    "strings"
    "sync"
    "time"

    "github.com/dineshyadav009/retrospectives/internal/config"
    "github.com/dineshyadav009/retrospectives/internal/domain"
    "github.com/rs/zerolog"
)

// At most three issue fetches per ticket, then the ticket is skipped.
const fetchAttempts = 3

// IssueTrackerSync enriches every known ticket with tracker metadata and
// distributes worklog hours to tickets and members.
type IssueTrackerSync struct {
    cfg  config.Config
    log  zerolog.Logger
    jira JiraClient

    // serializes member attribution across ticket workers
    mu sync.Mutex
}

func NewIssueTrackerSync(cfg config.Config, log zerolog.Logger, jira JiraClient) *IssueTrackerSync {
    return &IssueTrackerSync{cfg: cfg, log: log, jira: jira}
}

// Run fans ticket syncs out over a bounded worker pool. Each worker owns its
// ticket's state; only member attribution is shared and lock-guarded. One
// ticket's failure never aborts the rest.
func (s *IssueTrackerSync) Run(ctx context.Context, retro *domain.RetroContext, sprintSheetActive bool) {
    workers := s.cfg.WorkersJira
    if workers <= 0 { workers = 4 }
    jobs := make(chan *domain.Ticket)
    var wg sync.WaitGroup
    for w := 0; w < workers; w++ {
        wg.Add(1)
        go func() {
            defer wg.Done()
            for t := range jobs { s.syncTicket(ctx, retro, t, sprintSheetActive) }
        }()
    }
    for _, t := range retro.Tickets() { jobs <- t }
    close(jobs)
    wg.Wait()
}

func (s *IssueTrackerSync) syncTicket(ctx context.Context, retro *domain.RetroContext, t *domain.Ticket, sprintSheetActive bool) {
    for _, prefix := range retro.IgnoredIssuePrefixes {
        if strings.HasPrefix(t.ID, prefix) {
            s.log.Debug().Str("ticket", t.ID).Msg("ignored prefix, skipping tracker calls")
            return
        }
    }

    // With a sprint sheet active the descriptive fields already came from the
    // sheet; the issue is only fetched when story-point totals are wanted.
    if !sprintSheetActive || s.cfg.TotalSPsOnly {
        issue, err := s.fetchIssue(ctx, t.ID)
        if err != nil {
            s.log.Warn().Err(err).Str("ticket", t.ID).Msg("issue details not found, skipping")
            return
        }
        fields, _ := issue["fields"].(map[string]any)
        if !s.cfg.TotalSPsOnly {
            t.Description = strField(fields, "summary")
            t.Type = strField(fields, "issuetype", "name")
            t.Status = strField(fields, "status", "name")
        }
        t.TotalStoryPoints = numField(fields[s.cfg.JiraStoryPointsField])
    }

    s.distributeWorklogs(ctx, retro, t)
}

func (s *IssueTrackerSync) fetchIssue(ctx context.Context, key string) (map[string]any, error) {
    var lastErr error
    for attempt := 1; attempt <= fetchAttempts; attempt++ {
        issue, err := s.jira.Issue(ctx, key)
        if err == nil { return issue, nil }
        lastErr = err
        s.log.Warn().Err(err).Str("ticket", key).Int("attempt", attempt).Int("max", fetchAttempts).Msg("issue fetch failed")
    }
    return nil, &domain.FetchError{Key: key, Err: lastErr}
}

func (s *IssueTrackerSync) distributeWorklogs(ctx context.Context, retro *domain.RetroContext, t *domain.Ticket) {
    worklogs, err := s.jira.Worklogs(ctx, t.ID)
    if err != nil {
        s.log.Warn().Err(err).Str("ticket", t.ID).Msg("worklogs unavailable")
        return
    }
    // endDate is a calendar date: the exclusive boundary is one day back, not
    // one second
    lastDay := retro.EndDate.AddDate(0, 0, -1)
    for _, wl := range worklogs {
        started := parseTime(wl["started"])
        if started == nil { continue }
        hours := domain.Round2(numField(wl["timeSpentSeconds"]) / 3600)
        t.HoursLogged.Add("total", hours)

        // the day as written in the worklog's own offset
        day := time.Date(started.Year(), started.Month(), started.Day(), 0, 0, 0, 0, time.UTC)
        if day.Before(retro.StartDate) || day.After(lastDay) { continue }

        member := retro.MemberByUsername(worklogAuthor(wl))
        if member == nil { continue }
        s.mu.Lock()
        member.HoursSpentJira.Add(t.ID, hours)
        s.mu.Unlock()
    }
}

// worklogAuthor returns the tracker identity of a worklog entry. Matching is
// by username, never display name: the two commonly differ.
func worklogAuthor(wl map[string]any) string {
    author, _ := wl["author"].(map[string]any)
    if author == nil { return "" }
    if name := toStr(author["name"]); name != "" { return name }
    return toStr(author["accountId"])
}

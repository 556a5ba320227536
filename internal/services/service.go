/* Copyright (c) 2025 Dinesh Yadav
 * SPDX-License-Identifier: BSD-3-Clause */
package services

import (
    "context"
    "fmt"
    "time"

    "github.com/dineshyadav009/retrospectives/internal/config"
    "github.com/dineshyadav009/retrospectives/internal/domain"
    "github.com/dineshyadav009/retrospectives/internal/repo"
    "github.com/dineshyadav009/retrospectives/internal/roster"
    "github.com/rs/zerolog"
)

type JiraClient interface {
    Issue(ctx context.Context, key string) (map[string]any, error)
    Worklogs(ctx context.Context, key string) ([]map[string]any, error)
    Search(ctx context.Context, jql string, startAt, max int) (map[string]any, error)
    UpdateFields(ctx context.Context, key string, fields map[string]any) error
    AddWorklog(ctx context.Context, key string, params map[string]any) error
}

// Sheet is one worksheet of a remote tabular store. Rows and columns are
// 1-based, matching the spreadsheet UI. Cell returns the displayed value,
// InputValue the raw formula/text behind it.
type Sheet interface {
    Cell(row, col int) string
    InputValue(row, col int) string
    Rows() int
    Cols() int
    WriteRange(startRow, startCol int, rows [][]string)
    Flush(ctx context.Context) error
}

type SheetStore interface {
    Worksheet(ctx context.Context, key string, index int) (Sheet, error)
    WorksheetByTitle(ctx context.Context, key, title string) (Sheet, error)
}

type Service struct {
    cfg    config.Config
    log    zerolog.Logger
    repo   *repo.Repository
    jira   JiraClient
    sheets SheetStore

    timesheets *TimesheetLocator
    tracker    *IssueTrackerSync
    engine     *ReconciliationEngine
    writer     *ReportWriter
}

func New(cfg config.Config, log zerolog.Logger, r *repo.Repository, jira JiraClient, sheets SheetStore) *Service {
    return &Service{
        cfg:        cfg,
        log:        log,
        repo:       r,
        jira:       jira,
        sheets:     sheets,
        timesheets: NewTimesheetLocator(cfg, log, sheets),
        tracker:    NewIssueTrackerSync(cfg, log, jira),
        engine:     NewReconciliationEngine(cfg, log),
        writer:     NewReportWriter(cfg, log, sheets),
    }
}

// Generate runs one full reconciliation pass: roster -> sprint sheet ->
// timesheets -> tracker -> report. Setup problems abort before anything is
// fetched; failures on a single member or ticket are logged and skipped.
func (s *Service) Generate(ctx context.Context) error {
    retro, err := s.newContext()
    if err != nil { return err }
    if err := s.validatePrerequisites(retro); err != nil { return err }

    var runID int64
    if s.repo != nil {
        runID, err = s.repo.StartRun(ctx, s.cfg.TimeFrame)
        if err != nil { s.log.Error().Err(err).Msg("start run failed") }
    }
    genErr := s.generate(ctx, retro)
    if s.repo != nil && runID != 0 {
        _ = s.repo.FinishRun(ctx, runID, len(retro.Tickets()), len(retro.Members), genErr == nil, fmt.Sprintf("%v", genErr))
    }
    return genErr
}

func (s *Service) generate(ctx context.Context, retro *domain.RetroContext) error {
    sprintSheetActive := s.cfg.SprintSheetKey != ""
    if sprintSheetActive {
        parser := NewSprintSheetParser(s.cfg, s.log, s.sheets)
        if err := parser.Parse(ctx, retro); err != nil { return err }
        s.log.Info().Int("tickets", len(retro.Tickets())).Msg("sprint sheet parsed")
    } else if s.cfg.JiraSeedJQL != "" {
        if err := s.SeedTicketsFromJQL(ctx, retro, s.cfg.JiraSeedJQL); err != nil {
            s.log.Warn().Err(err).Msg("jql seed failed, continuing with roster tickets")
        }
    }

    s.timesheets.Fetch(ctx, retro)
    s.log.Info().Int("members", len(retro.Members)).Msg("timesheet hours aggregated")

    s.tracker.Run(ctx, retro, sprintSheetActive)
    s.log.Info().Int("tickets", len(retro.Tickets())).Msg("tracker hours aggregated")

    rows := s.engine.Assemble(retro)
    if err := s.writer.Write(ctx, retro, rows); err != nil { return err }
    s.log.Info().Str("report", reportURL(s.cfg.ReportSheetKey)).Msg("retro report written")
    return nil
}

func (s *Service) newContext() (*domain.RetroContext, error) {
    retro := domain.NewRetroContext()
    retro.IncludeOtherTickets = s.cfg.IncludeOtherTickets
    retro.IgnoredIssuePrefixes = s.cfg.IgnoredIssuePrefixes

    ros, err := roster.Load(s.cfg.RosterFile)
    if err != nil { return nil, domain.Validationf("%v", err) }
    if err := ros.Apply(retro); err != nil { return nil, err }

    if s.cfg.TimeFrame != "" {
        if err := retro.SetTimeFrame(s.cfg.TimeFrame); err != nil { return nil, err }
    }
    return retro, nil
}

func (s *Service) validatePrerequisites(retro *domain.RetroContext) error {
    if s.sheets == nil || s.cfg.GoogleToken == "" {
        return domain.Validationf("google drive not authenticated")
    }
    if s.jira == nil || s.cfg.JiraBaseURL == "" || (s.cfg.JiraPAT == "" && (s.cfg.JiraUsername == "" || s.cfg.JiraPassword == "")) {
        return domain.Validationf("JIRA not authenticated")
    }
    if len(retro.Members) == 0 {
        return domain.Validationf("no members added")
    }
    if !retro.TimeFrameSet() {
        return domain.Validationf("time frame not set properly [expected format: '20170102-20170115']")
    }
    if s.cfg.ReportSheetKey == "" {
        return domain.Validationf("retrospective sheet key not set")
    }
    return nil
}

// SeedTicketsFromJQL adds every issue key the query returns to the working
// ticket set.
func (s *Service) SeedTicketsFromJQL(ctx context.Context, retro *domain.RetroContext, jql string) error {
    startAt := 0
    const page = 50
    for {
        res, err := s.jira.Search(ctx, jql, startAt, page)
        if err != nil { return err }
        arr, _ := res["issues"].([]any)
        if len(arr) == 0 { break }
        for _, it := range arr {
            im, _ := it.(map[string]any)
            if im == nil { continue }
            if key := toStr(im["key"]); key != "" { retro.AddTicket(key) }
        }
        if len(arr) < page { break }
        startAt += page
    }
    return nil
}

func (s *Service) UpdateAssignee(ctx context.Context, ticketID, assignee string) error {
    if assignee == "" { return domain.Validationf("assignee cannot be blank") }
    return s.jira.UpdateFields(ctx, ticketID, map[string]any{"assignee": map[string]any{"name": assignee}})
}

func (s *Service) LogWork(ctx context.Context, ticketID string, started time.Time, seconds int, comment string) error {
    if seconds <= 0 { return domain.Validationf("worklog seconds must be positive") }
    params := map[string]any{
        "started":          started.Format("2006-01-02T15:04:05.000-0700"),
        "timeSpentSeconds": seconds,
    }
    if comment != "" { params["comment"] = comment }
    return s.jira.AddWorklog(ctx, ticketID, params)
}

func (s *Service) GetLastRun(ctx context.Context) (any, error) {
    if s.repo == nil { return nil, nil }
    return s.repo.GetLastRun(ctx)
}

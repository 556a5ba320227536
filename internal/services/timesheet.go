/* Copyright (c) 2025 Dinesh Yadav
 * SPDX-License-Identifier: BSD-3-Clause */
package services

import (
    "context"
    "strings"
    "time"

    "github.com/dineshyadav009/retrospectives/internal/config"
    "github.com/dineshyadav009/retrospectives/internal/domain"
    "github.com/rs/zerolog"
)

// Timesheets mark days as DD/MM/YYYY in the header row.
const sheetDateLayout = "02/01/2006"

// TimesheetLocator finds the row/column window of a member's timesheet that
// covers the reporting period and extracts (ticket, hours) pairs from it.
type TimesheetLocator struct {
    cfg    config.Config
    log    zerolog.Logger
    sheets SheetStore
}

func NewTimesheetLocator(cfg config.Config, log zerolog.Logger, sheets SheetStore) *TimesheetLocator {
    return &TimesheetLocator{cfg: cfg, log: log, sheets: sheets}
}

// Fetch aggregates timesheet hours for every member. A member whose sheet
// cannot be read or whose sprint window is not marked is skipped with an
// error log; the remaining members still aggregate.
func (l *TimesheetLocator) Fetch(ctx context.Context, retro *domain.RetroContext) {
    for _, m := range retro.Members {
        if err := l.FetchMember(ctx, retro, m); err != nil {
            l.log.Error().Err(err).Str("member", m.Name).Msg("timesheet aggregation failed")
        }
    }
}

func (l *TimesheetLocator) FetchMember(ctx context.Context, retro *domain.RetroContext, m *domain.Member) error {
    sheet, err := l.sheets.Worksheet(ctx, m.SheetKey, m.SheetIndex)
    if err != nil { return err }
    if l.cfg.TimesheetLayout == config.LayoutDelimiterRow {
        return l.extractDelimiterRows(retro, m, sheet)
    }
    return l.extractDateColumns(retro, m, sheet)
}

// extractDateColumns handles the layout where row 1 holds dates: every column
// between the start and end date columns is a day of the sprint.
func (l *TimesheetLocator) extractDateColumns(retro *domain.RetroContext, m *domain.Member, sheet Sheet) error {
    startCol, endCol := dateColumns(sheet, retro)
    if startCol == 0 || endCol == 0 {
        l.log.Debug().Int("start_col", startCol).Int("end_col", endCol).Str("member", m.Name).Msg("date boundary scan")
        return domain.Setupf(m.Name, "dates not marked or timesheet not completed")
    }
    for col := startCol; col <= endCol; col++ {
        for row := 1; row <= sheet.Rows(); row++ {
            input := sheet.InputValue(row, col)
            // =SUM rows are aggregate helpers, not data
            if strings.TrimSpace(input) == "" || strings.Contains(input, "=SUM") { continue }
            ticketID := domain.Clean(sheet.Cell(row, l.cfg.TicketIDColumn))
            if ticketID == "" { continue }
            hours := domain.Round2(toFloat(domain.Clean(input)))
            l.accumulate(retro, m, ticketID, hours)
        }
    }
    return nil
}

// extractDelimiterRows handles the layout where a dedicated column carries
// sprint markers: the first rows whose marker text contains the stringified
// start and end dates bound the window, one (ticket, hours) pair per row.
func (l *TimesheetLocator) extractDelimiterRows(retro *domain.RetroContext, m *domain.Member, sheet Sheet) error {
    startRow := delimiterRow(sheet, l.cfg.SprintDelimiterColumn, retro.StartLabel())
    endRow := delimiterRow(sheet, l.cfg.SprintDelimiterColumn, retro.EndLabel())
    if startRow == 0 || endRow == 0 {
        return domain.Setupf(m.Name, "sprint not marked correctly")
    }
    for row := startRow; row <= endRow; row++ {
        ticketID := domain.Clean(sheet.Cell(row, l.cfg.TicketIDColumn))
        if ticketID == "" { continue }
        hours := domain.Round2(toFloat(domain.Clean(sheet.Cell(row, l.cfg.HoursSpentColumn))))
        l.accumulate(retro, m, ticketID, hours)
    }
    return nil
}

func (l *TimesheetLocator) accumulate(retro *domain.RetroContext, m *domain.Member, ticketID string, hours float64) {
    if !retro.IncludeOtherTickets && !retro.HasTicket(ticketID) { return }
    m.HoursSpentTimesheet.Add(ticketID, hours)
    if retro.IncludeOtherTickets { retro.AddTicket(ticketID) }
}

func dateColumns(sheet Sheet, retro *domain.RetroContext) (int, int) {
    startCol, endCol := 0, 0
    for col := 1; col <= sheet.Cols(); col++ {
        d, err := time.Parse(sheetDateLayout, domain.Clean(sheet.Cell(1, col)))
        if err != nil { continue } // most header cells are not dates
        if d.Equal(retro.StartDate) { startCol = col }
        if d.Equal(retro.EndDate) { endCol = col }
    }
    return startCol, endCol
}

func delimiterRow(sheet Sheet, col int, label string) int {
    if label == "" { return 0 }
    for row := 1; row <= sheet.Rows(); row++ {
        if strings.Contains(sheet.Cell(row, col), label) { return row }
    }
    return 0
}

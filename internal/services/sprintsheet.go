/* Copyright (c) 2025 Dinesh Yadav
 * SPDX-License-Identifier: BSD-3-Clause */
package services

import (
    "context"
    "strings"

    "github.com/dineshyadav009/retrospectives/internal/config"
    "github.com/dineshyadav009/retrospectives/internal/domain"
    "github.com/rs/zerolog"
)

// Expected header fields of a sprint sheet, in ticket-field order.
var sprintSheetFields = []string{"Key", "Summary", "Type", "Status", "Ticket owner", "Reviewer", "Assigned SPs"}

const (
    fieldKey = iota
    fieldSummary
    fieldType
    fieldStatus
    fieldOwner
    fieldReviewer
    fieldSPs
)

// SprintSheetParser replaces the working ticket set with the contents of a
// structured sheet: one header row, one row per ticket, with explicit
// owner/status/story-point columns.
type SprintSheetParser struct {
    cfg    config.Config
    log    zerolog.Logger
    sheets SheetStore
}

func NewSprintSheetParser(cfg config.Config, log zerolog.Logger, sheets SheetStore) *SprintSheetParser {
    return &SprintSheetParser{cfg: cfg, log: log, sheets: sheets}
}

func (p *SprintSheetParser) Parse(ctx context.Context, retro *domain.RetroContext) error {
    sheet, err := p.sheets.WorksheetByTitle(ctx, p.cfg.SprintSheetKey, p.cfg.SprintSheetTitle)
    if err != nil { return err }
    cols, err := p.headerColumns(sheet)
    if err != nil { return err }

    var tickets []*domain.Ticket
    for row := 2; row <= sheet.Rows(); row++ {
        key := domain.Clean(sheet.Cell(row, cols[fieldKey]))
        if key == "" { continue }
        t := domain.NewTicket(key)
        t.Description = domain.Clean(sheet.Cell(row, cols[fieldSummary]))
        t.Type = domain.Clean(sheet.Cell(row, cols[fieldType]))
        t.Status = domain.Clean(sheet.Cell(row, cols[fieldStatus]))
        t.Owner = domain.Clean(sheet.Cell(row, cols[fieldOwner]))
        t.Reviewer = domain.Clean(sheet.Cell(row, cols[fieldReviewer]))
        t.StoryPoints = domain.Clean(sheet.Cell(row, cols[fieldSPs]))
        tickets = append(tickets, t)
    }
    retro.SetTickets(tickets)
    return nil
}

// headerColumns resolves each expected field to a column by scanning row 1.
// Matching is case-insensitive with newlines folded to spaces; every field
// must match exactly one header cell.
func (p *SprintSheetParser) headerColumns(sheet Sheet) ([]int, error) {
    subject := p.cfg.SprintSheetTitle
    cols := make([]int, len(sprintSheetFields))
    for col := 1; col <= sheet.Cols(); col++ {
        cell := sheet.Cell(1, col)
        if strings.TrimSpace(cell) == "" { continue }
        norm := strings.ToLower(strings.ReplaceAll(cell, "\n", " "))
        for i, f := range sprintSheetFields {
            if strings.Contains(norm, strings.ToLower(f)) {
                if cols[i] != 0 {
                    return nil, domain.Setupf(subject, "header field %q matched more than one column", f)
                }
                cols[i] = col
                break
            }
        }
    }
    for i, f := range sprintSheetFields {
        if cols[i] == 0 {
            return nil, domain.Setupf(subject, "header field %q not found, check field names in sheet", f)
        }
    }
    return cols, nil
}

/* Copyright (c) 2025 Dinesh Yadav
 * SPDX-License-Identifier: BSD-3-Clause */
package services

import (
    "fmt"
    "strings"

    "github.com/dineshyadav009/retrospectives/internal/config"
    "github.com/dineshyadav009/retrospectives/internal/domain"
    "github.com/rs/zerolog"
)

// Placeholder owner for tickets nobody logged timesheet hours on.
const noOwner = "None"

// Fixed estimate used to express carry-forward points as hours.
const hoursPerStoryPoint = 4.0

// ReconciliationEngine merges the aggregated timesheet and tracker state into
// ordered report rows, resolving ownership, participants and story-point
// carry-forward per ticket.
type ReconciliationEngine struct {
    cfg config.Config
    log zerolog.Logger
}

func NewReconciliationEngine(cfg config.Config, log zerolog.Logger) *ReconciliationEngine {
    return &ReconciliationEngine{cfg: cfg, log: log}
}

type participant struct {
    name  string
    hours float64
}

// Assemble produces the final report grid: a header row, one row per ticket
// in first-seen order, then a member summary block. Running story-point
// totals accumulate on the context as a side effect.
func (e *ReconciliationEngine) Assemble(retro *domain.RetroContext) [][]string {
    rows := [][]string{e.headerRow(retro)}
    for _, t := range retro.Tickets() {
        rows = append(rows, e.ticketRow(retro, t))
    }
    rows = append(rows, []string{})
    rows = append(rows, e.summaryRows(retro)...)
    return rows
}

func (e *ReconciliationEngine) headerRow(retro *domain.RetroContext) []string {
    head := []string{"Ticket", "Description", "Type", "SPs consumed (total)", "Owner", "Participants", "Owner hours", "Status", "Comments"}
    if e.cfg.ReportJiraHours { head = append(head, "JIRA hours (total)") }
    head = append(head, "Timesheet hours")
    if e.cfg.ReportJiraHours {
        for _, m := range retro.Members { head = append(head, m.Name+" (JIRA)") }
    }
    for _, m := range retro.Members { head = append(head, m.Name+" (timesheet)") }
    return head
}

func (e *ReconciliationEngine) ticketRow(retro *domain.RetroContext, t *domain.Ticket) []string {
    consumed, carry := parseStoryPoints(t.StoryPoints)
    retro.DoneStoryPoints += consumed
    retro.CarryForwardStoryPoints += carry

    var jiraCols, tsCols []string
    var participants []participant
    totalJira, totalTS := 0.0, 0.0
    for _, m := range retro.Members {
        jh := m.HoursSpentJira.Get(t.ID)
        th := m.HoursSpentTimesheet.Get(t.ID)
        totalJira += jh
        totalTS += th
        jiraCols = append(jiraCols, fmtNum(jh))
        tsCols = append(tsCols, fmtNum(th))
        if th != 0 { participants = append(participants, participant{name: m.Name, hours: th}) }
    }
    owner, ownerHours := resolveOwner(t, participants)

    row := []string{
        t.ID,
        t.Description,
        t.Type,
        fmt.Sprintf("%s (%s)", fmtNum(consumed), fmtNum(t.TotalStoryPoints)),
        owner,
        participantsDisplay(participants, owner),
        fmtNum(ownerHours),
        t.Status,
        "", // comments, filled in by hand during the retro
    }
    if e.cfg.ReportJiraHours {
        row = append(row, fmt.Sprintf("%s (%s)", fmtNum(totalJira), fmtNum(t.HoursLogged.Get("total"))))
    }
    row = append(row, fmtNum(totalTS))
    if e.cfg.ReportJiraHours { row = append(row, jiraCols...) }
    row = append(row, tsCols...)
    return row
}

// resolveOwner picks the ticket owner: an explicit owner always wins, no
// participants means nobody owns it, otherwise the participant with the most
// timesheet hours (first seen wins ties).
func resolveOwner(t *domain.Ticket, participants []participant) (string, float64) {
    if strings.TrimSpace(t.Owner) != "" {
        hours := 0.0
        for _, p := range participants {
            if p.name == t.Owner {
                hours = p.hours
                break
            }
        }
        return t.Owner, hours
    }
    switch len(participants) {
    case 0:
        return noOwner, 0
    case 1:
        return participants[0].name, participants[0].hours
    }
    best := participants[0]
    for _, p := range participants[1:] {
        if p.hours > best.hours { best = p }
    }
    return best.name, best.hours
}

func participantsDisplay(participants []participant, owner string) string {
    if len(participants) == 0 { return owner }
    names := make([]string, 0, len(participants))
    for _, p := range participants { names = append(names, p.name) }
    return strings.Join(names, ", ")
}

func (e *ReconciliationEngine) summaryRows(retro *domain.RetroContext) [][]string {
    var rows [][]string
    for _, m := range retro.Members {
        rows = append(rows, []string{
            m.Name,
            "",
            "",
            fmtNum(m.HoursSpentTimesheet.Total()),
            fmtNum(m.ExpectedStoryPoints()),
        })
    }
    rows = append(rows,
        []string{"Done SPs", fmtNum(retro.DoneStoryPoints)},
        []string{"Carry forward SPs", fmtNum(retro.CarryForwardStoryPoints)},
        []string{"Carry forward hours", fmtNum(domain.Round2(retro.CarryForwardStoryPoints * hoursPerStoryPoint))},
    )
    return rows
}

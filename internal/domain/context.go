package domain

import (
    "strings"
    "time"
)

const timeFrameLayout = "20060102"

// RetroContext is the aggregate a single generation pass works on. It is
// configured once (members, tickets, dates) and then handed through the
// aggregation phases; it is not safe to share one context across two
// overlapping passes.
type RetroContext struct {
    Members []*Member

    tickets  []*Ticket
    ticketID map[string]*Ticket

    StartDate time.Time
    EndDate   time.Time
    startRaw  string
    endRaw    string

    // IncludeOtherTickets admits ticket ids discovered in timesheet rows even
    // when they were never pre-declared.
    IncludeOtherTickets  bool
    IgnoredIssuePrefixes []string

    DoneStoryPoints         float64
    CarryForwardStoryPoints float64
}

func NewRetroContext() *RetroContext {
    return &RetroContext{ticketID: map[string]*Ticket{}}
}

// AddMember validates the member record and rejects duplicate sheet keys.
func (r *RetroContext) AddMember(m *Member) error {
    if err := ValidateRequired(map[string]string{"name": m.Name, "sheet_key": m.SheetKey}, "name", "sheet_key"); err != nil {
        return err
    }
    m.SheetKey = strings.TrimSpace(m.SheetKey)
    for _, ex := range r.Members {
        if ex.SheetKey == m.SheetKey {
            return Validationf("duplicate sheet key [%s] in members", m.SheetKey)
        }
    }
    if m.HoursSpentTimesheet == nil { m.HoursSpentTimesheet = Hours{} }
    if m.HoursSpentJira == nil { m.HoursSpentJira = Hours{} }
    r.Members = append(r.Members, m)
    return nil
}

// AddTicket inserts a ticket by id, preserving first-seen order. Inserting an
// id that already exists is a no-op; either way the stored ticket is returned.
func (r *RetroContext) AddTicket(id string) *Ticket {
    id = Clean(id)
    if id == "" { return nil }
    if t, ok := r.ticketID[id]; ok { return t }
    t := NewTicket(id)
    r.ticketID[id] = t
    r.tickets = append(r.tickets, t)
    return t
}

// SetTickets replaces the working set with exactly the given tickets.
func (r *RetroContext) SetTickets(tickets []*Ticket) {
    r.tickets = nil
    r.ticketID = map[string]*Ticket{}
    for _, t := range tickets {
        if t == nil || Clean(t.ID) == "" { continue }
        t.ID = Clean(t.ID)
        if _, ok := r.ticketID[t.ID]; ok { continue }
        r.ticketID[t.ID] = t
        r.tickets = append(r.tickets, t)
    }
}

func (r *RetroContext) Tickets() []*Ticket { return r.tickets }

func (r *RetroContext) HasTicket(id string) bool {
    _, ok := r.ticketID[Clean(id)]
    return ok
}

func (r *RetroContext) TicketByID(id string) *Ticket { return r.ticketID[Clean(id)] }

func (r *RetroContext) MemberByUsername(username string) *Member {
    for _, m := range r.Members {
        if m.Username == username { return m }
    }
    return nil
}

// SetTimeFrame parses a "YYYYMMDD-YYYYMMDD" frame, each side trimmed.
// A reversed frame parses fine; downstream lookups simply find no rows.
func (r *RetroContext) SetTimeFrame(frame string) error {
    parts := strings.SplitN(frame, "-", 2)
    if len(parts) != 2 {
        return Validationf("time frame not set properly [expected format: '20170102-20170115'], got %q", frame)
    }
    startRaw := strings.TrimSpace(parts[0])
    endRaw := strings.TrimSpace(parts[1])
    start, err := time.Parse(timeFrameLayout, startRaw)
    if err != nil {
        return Validationf("time frame start %q: not a calendar date", startRaw)
    }
    end, err := time.Parse(timeFrameLayout, endRaw)
    if err != nil {
        return Validationf("time frame end %q: not a calendar date", endRaw)
    }
    r.StartDate, r.EndDate = start, end
    r.startRaw, r.endRaw = startRaw, endRaw
    return nil
}

// StartLabel returns the raw start half of the time frame, used for
// delimiter-row matching in timesheets.
func (r *RetroContext) StartLabel() string { return r.startRaw }

func (r *RetroContext) EndLabel() string { return r.endRaw }

func (r *RetroContext) TimeFrameSet() bool { return !r.StartDate.IsZero() && !r.EndDate.IsZero() }

package services

import (
    "context"
    "testing"

    "github.com/rs/zerolog"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/dineshyadav009/retrospectives/internal/config"
    "github.com/dineshyadav009/retrospectives/internal/domain"
)

func timesheetConfig() config.Config {
    return config.Config{
        TimesheetLayout:       config.LayoutDateHeader,
        TicketIDColumn:        1,
        SprintDelimiterColumn: 3,
        HoursSpentColumn:      4,
    }
}

func newRetro(t *testing.T, frame string) *domain.RetroContext {
    t.Helper()
    retro := domain.NewRetroContext()
    require.NoError(t, retro.SetTimeFrame(frame))
    return retro
}

func addMember(t *testing.T, retro *domain.RetroContext, name, key string) *domain.Member {
    t.Helper()
    m := domain.NewMember(name, name, key)
    require.NoError(t, retro.AddMember(m))
    return m
}

// dateHeaderSheet builds the layout where row 1 carries DD/MM/YYYY dates.
func dateHeaderSheet() *fakeSheet {
    values := [][]string{
        {"", "", "02/01/2017", "03/01/2017", "15/01/2017"},
        {"ABC-1", "", "2", "", "3"},
        {"ABC-2", "", "5", "", ""},
        {"", "", "4", "", ""},
        {"XYZ-9", "", "1.5", "", ""},
    }
    formulas := [][]string{
        {"", "", "02/01/2017", "03/01/2017", "15/01/2017"},
        {"ABC-1", "", "2", "", "3"},
        {"ABC-2", "", "=SUM(C2:C2)", "", ""},
        {"", "", "4", "", ""},
        {"XYZ-9", "", "1.5", "", ""},
    }
    return &fakeSheet{values: values, formulas: formulas}
}

func TestFetchMemberDateHeader(t *testing.T) {
    retro := newRetro(t, "20170102-20170115")
    retro.AddTicket("ABC-1")
    retro.AddTicket("ABC-2")
    m := addMember(t, retro, "Alice", "sheet-a")
    store := &fakeStore{sheets: map[string]*fakeSheet{"sheet-a": dateHeaderSheet()}}
    l := NewTimesheetLocator(timesheetConfig(), zerolog.Nop(), store)

    require.NoError(t, l.FetchMember(context.Background(), retro, m))

    assert.Equal(t, 5.0, m.HoursSpentTimesheet.Get("ABC-1"))
    // the =SUM helper row contributes nothing
    assert.Equal(t, 0.0, m.HoursSpentTimesheet.Get("ABC-2"))
    // undeclared tickets are dropped unless IncludeOtherTickets is on
    assert.Equal(t, 0.0, m.HoursSpentTimesheet.Get("XYZ-9"))
    assert.Equal(t, 5.0, m.HoursSpentTimesheet.Total())
}

func TestFetchMemberIncludeOtherTickets(t *testing.T) {
    retro := newRetro(t, "20170102-20170115")
    retro.IncludeOtherTickets = true
    retro.AddTicket("ABC-1")
    m := addMember(t, retro, "Alice", "sheet-a")
    store := &fakeStore{sheets: map[string]*fakeSheet{"sheet-a": dateHeaderSheet()}}
    l := NewTimesheetLocator(timesheetConfig(), zerolog.Nop(), store)

    require.NoError(t, l.FetchMember(context.Background(), retro, m))

    assert.Equal(t, 1.5, m.HoursSpentTimesheet.Get("XYZ-9"))
    assert.True(t, retro.HasTicket("XYZ-9"))
}

func TestFetchMemberDatesNotMarked(t *testing.T) {
    // sheet covers a different sprint entirely
    retro := newRetro(t, "20170201-20170214")
    m := addMember(t, retro, "Alice", "sheet-a")
    store := &fakeStore{sheets: map[string]*fakeSheet{"sheet-a": dateHeaderSheet()}}
    l := NewTimesheetLocator(timesheetConfig(), zerolog.Nop(), store)

    err := l.FetchMember(context.Background(), retro, m)
    var se *domain.SetupError
    require.ErrorAs(t, err, &se)
    assert.Equal(t, "Alice", se.Subject)
}

func TestFetchMemberReversedTimeFrame(t *testing.T) {
    // both boundary dates exist in the sheet but in reverse order, so the
    // window is empty: no hours, no crash
    retro := newRetro(t, "20170115-20170102")
    retro.AddTicket("ABC-1")
    m := addMember(t, retro, "Alice", "sheet-a")
    store := &fakeStore{sheets: map[string]*fakeSheet{"sheet-a": dateHeaderSheet()}}
    l := NewTimesheetLocator(timesheetConfig(), zerolog.Nop(), store)

    require.NoError(t, l.FetchMember(context.Background(), retro, m))
    assert.Equal(t, 0.0, m.HoursSpentTimesheet.Total())
}

func TestFetchIsolatesMemberFailures(t *testing.T) {
    retro := newRetro(t, "20170102-20170115")
    retro.AddTicket("ABC-1")
    ok := addMember(t, retro, "Alice", "sheet-a")
    broken := addMember(t, retro, "Bob", "missing-sheet")
    store := &fakeStore{sheets: map[string]*fakeSheet{"sheet-a": dateHeaderSheet()}}
    l := NewTimesheetLocator(timesheetConfig(), zerolog.Nop(), store)

    l.Fetch(context.Background(), retro)

    assert.Equal(t, 5.0, ok.HoursSpentTimesheet.Get("ABC-1"))
    assert.Equal(t, 0.0, broken.HoursSpentTimesheet.Total())
}

func TestFetchMemberDelimiterRows(t *testing.T) {
    retro := newRetro(t, "20170102-20170115")
    retro.AddTicket("ABC-1")
    m := addMember(t, retro, "Alice", "sheet-a")
    sheet := &fakeSheet{values: [][]string{
        {"Ticket", "Notes", "Sprint", "Hours"},
        {"", "", "sprint starts 20170102", ""},
        {"ABC-1", "", "", "3"},
        {"ABC-2", "", "", "2.5"},
        {"", "", "ends 20170115", ""},
        {"ABC-1", "", "", "9"},
    }}
    cfg := timesheetConfig()
    cfg.TimesheetLayout = config.LayoutDelimiterRow
    store := &fakeStore{sheets: map[string]*fakeSheet{"sheet-a": sheet}}
    l := NewTimesheetLocator(cfg, zerolog.Nop(), store)

    require.NoError(t, l.FetchMember(context.Background(), retro, m))

    // rows past the end marker belong to the next sprint
    assert.Equal(t, 3.0, m.HoursSpentTimesheet.Get("ABC-1"))
    assert.Equal(t, 3.0, m.HoursSpentTimesheet.Total())
}

func TestFetchMemberDelimiterMissingMarker(t *testing.T) {
    retro := newRetro(t, "20170102-20170115")
    m := addMember(t, retro, "Alice", "sheet-a")
    sheet := &fakeSheet{values: [][]string{
        {"", "", "sprint starts 20170102", ""},
        {"ABC-1", "", "", "3"},
    }}
    cfg := timesheetConfig()
    cfg.TimesheetLayout = config.LayoutDelimiterRow
    store := &fakeStore{sheets: map[string]*fakeSheet{"sheet-a": sheet}}
    l := NewTimesheetLocator(cfg, zerolog.Nop(), store)

    err := l.FetchMember(context.Background(), retro, m)
    var se *domain.SetupError
    require.ErrorAs(t, err, &se)
    assert.Contains(t, se.Error(), "sprint not marked")
}

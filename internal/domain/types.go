package domain

// Hours is an accumulator keyed by ticket id or tracker identity. Missing
// keys read as zero, so Add on a fresh key starts from zero.
type Hours map[string]float64

func (h Hours) Add(key string, v float64) { h[key] += v }

func (h Hours) Get(key string) float64 { return h[key] }

func (h Hours) Total() float64 {
    t := 0.0
    for _, v := range h { t += v }
    return t
}

// Fixed velocity: points a full-time member is expected to burn per working day.
const pointsPerDay = 2.0

type Member struct {
    Name       string
    Username   string
    SheetKey   string
    SheetIndex int
    Bandwidth  float64
    DaysWorked int

    HoursSpentTimesheet Hours
    HoursSpentJira      Hours
}

func NewMember(name, username, sheetKey string) *Member {
    return &Member{
        Name:                name,
        Username:            username,
        SheetKey:            sheetKey,
        Bandwidth:           1.0,
        HoursSpentTimesheet: Hours{},
        HoursSpentJira:      Hours{},
    }
}

func (m *Member) ExpectedStoryPoints() float64 {
    return Round2(m.Bandwidth * float64(m.DaysWorked) * pointsPerDay)
}

type Ticket struct {
    ID          string
    Description string
    Type        string
    Status      string
    Owner       string
    Reviewer    string

    // StoryPoints holds the raw primary-source field, possibly a composite
    // like "5 (3)" meaning total 5, consumed 3.
    StoryPoints      string
    TotalStoryPoints float64

    // HoursLogged is keyed by tracker username, plus the literal key "total"
    // which counts every worklog regardless of date.
    HoursLogged Hours
}

func NewTicket(id string) *Ticket {
    return &Ticket{ID: id, HoursLogged: Hours{}}
}

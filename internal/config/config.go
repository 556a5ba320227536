/* Copyright (c) 2025 Dinesh Yadav
 * SPDX-License-Identifier: BSD-3-Clause */
package config

import (
    "log"
    "os"
    "strconv"
    "strings"
    "time"
)

// Timesheet layouts supported by the locator.
const (
    LayoutDateHeader   = "dates"
    LayoutDelimiterRow = "delimiter"
)

type Config struct {
    AppEnv   string
    TZ       string
    HTTPAddr string
    LogLevel string

    DBDSN string

    SheetsBaseURL string
    GoogleToken   string

    JiraBaseURL          string
    JiraPAT              string
    JiraUsername         string
    JiraPassword         string
    JiraAPIVersion       string
    JiraStoryPointsField string
    JiraSeedJQL          string

    RosterFile string
    TimeFrame  string

    TimesheetLayout       string
    TicketIDColumn        int
    SprintDelimiterColumn int
    HoursSpentColumn      int

    IncludeOtherTickets  bool
    IgnoredIssuePrefixes []string
    TotalSPsOnly         bool
    ReportJiraHours      bool

    ReportSheetKey   string
    ReportStartRow   int
    SprintLabel      string
    SprintSheetKey   string
    SprintSheetTitle string

    GenerateCron string
    WorkersJira  int
    HTTPTimeout  time.Duration
}

func getenv(key, def string) string {
    v := os.Getenv(key)
    if v == "" { return def }
    return v
}

func atoi(key string, def int) int {
    v := os.Getenv(key)
    if v == "" { return def }
    i, err := strconv.Atoi(v)
    if err != nil { return def }
    return i
}

func dur(key string, def time.Duration) time.Duration {
    v := os.Getenv(key)
    if v == "" { return def }
    d, err := time.ParseDuration(v)
    if err != nil { return def }
    return d
}

func flag(key string, def bool) bool {
    v := os.Getenv(key)
    if v == "" { return def }
    b, err := strconv.ParseBool(v)
    if err != nil { return def }
    return b
}

func parseStrings(csv string) []string {
    if csv == "" { return nil }
    parts := strings.Split(csv, ",")
    out := make([]string, 0, len(parts))
    for _, p := range parts {
        p = strings.TrimSpace(p)
        if p == "" { continue }
        out = append(out, p)
    }
    return out
}

func Load() Config {
    cfg := Config{
        AppEnv:   getenv("APP_ENV", "dev"),
        TZ:       getenv("APP_TZ", "Asia/Kolkata"),
        HTTPAddr: getenv("HTTP_ADDR", ":8080"),
        LogLevel: getenv("LOG_LEVEL", "info"),

        DBDSN: getenv("DB_DSN", ""),

        SheetsBaseURL: getenv("SHEETS_BASE_URL", "https://sheets.googleapis.com"),
        GoogleToken:   getenv("GOOGLE_OAUTH_TOKEN", ""),

        JiraBaseURL:          getenv("JIRA_BASE_URL", ""),
        JiraPAT:              getenv("JIRA_PAT", ""),
        JiraUsername:         getenv("JIRA_USERNAME", ""),
        JiraPassword:         getenv("JIRA_PASSWORD", ""),
        JiraAPIVersion:       getenv("JIRA_API_VERSION", "2"),
        JiraStoryPointsField: getenv("JIRA_STORY_POINTS_FIELD", "customfield_10004"),
        JiraSeedJQL:          getenv("JIRA_SEED_JQL", ""),

        RosterFile: getenv("ROSTER_FILE", "config/roster.yaml"),
        TimeFrame:  getenv("TIME_FRAME", ""),

        TimesheetLayout:       getenv("TIMESHEET_LAYOUT", LayoutDateHeader),
        TicketIDColumn:        atoi("TICKET_ID_COLUMN", 1),
        SprintDelimiterColumn: atoi("SPRINT_DELIMITER_COLUMN", 3),
        HoursSpentColumn:      atoi("HOURS_SPENT_COLUMN", 4),

        IncludeOtherTickets:  flag("INCLUDE_OTHER_TICKETS", false),
        IgnoredIssuePrefixes: parseStrings(getenv("IGNORE_ISSUE_PREFIXES", "")),
        TotalSPsOnly:         flag("TOTAL_SPS_ONLY", false),
        ReportJiraHours:      flag("REPORT_JIRA_HOURS", true),

        ReportSheetKey:   getenv("REPORT_SHEET_KEY", ""),
        ReportStartRow:   atoi("REPORT_START_ROW", 2),
        SprintLabel:      getenv("SPRINT_LABEL", ""),
        SprintSheetKey:   getenv("SPRINT_SHEET_KEY", ""),
        SprintSheetTitle: getenv("SPRINT_SHEET_TITLE", ""),

        GenerateCron: getenv("CRON_SPEC", "0 10 * * FRI"),
        WorkersJira:  atoi("WORKERS_JIRA", 4),
        HTTPTimeout:  dur("HTTP_TIMEOUT", 15*time.Second),
    }

    if loc, err := time.LoadLocation(cfg.TZ); err == nil {
        time.Local = loc
    } else {
        log.Printf("warning: cannot load TZ %s: %v", cfg.TZ, err)
    }

    return cfg
}

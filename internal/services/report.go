package services

import (
    "context"

    "github.com/dineshyadav009/retrospectives/internal/config"
    "github.com/dineshyadav009/retrospectives/internal/domain"
    "github.com/rs/zerolog"
)

// ReportWriter persists finished report rows into the retrospective sheet at
// a fixed cell layout.
type ReportWriter struct {
    cfg    config.Config
    log    zerolog.Logger
    sheets SheetStore
}

func NewReportWriter(cfg config.Config, log zerolog.Logger, sheets SheetStore) *ReportWriter {
    return &ReportWriter{cfg: cfg, log: log, sheets: sheets}
}

func (w *ReportWriter) Write(ctx context.Context, retro *domain.RetroContext, rows [][]string) error {
    if len(rows) == 0 { return nil }
    sheet, err := w.sheets.Worksheet(ctx, w.cfg.ReportSheetKey, 0)
    if err != nil { return err }

    if w.cfg.SprintLabel != "" {
        sheet.WriteRange(1, 1, [][]string{{w.cfg.SprintLabel}})
    }
    startRow := w.cfg.ReportStartRow
    if startRow < 1 { startRow = 1 }
    sheet.WriteRange(startRow, 1, rows)
    return sheet.Flush(ctx)
}

func reportURL(key string) string {
    return "https://docs.google.com/spreadsheets/d/" + key
}

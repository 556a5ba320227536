/* Copyright (c) 2025 Dinesh Yadav
 * SPDX-License-Identifier: BSD-3-Clause */
package main

import (
    "context"
    "os"
    "os/signal"
    "syscall"
    "time"

    "github.com/dineshyadav009/retrospectives/internal/adapters/gsheets"
    "github.com/dineshyadav009/retrospectives/internal/adapters/jira"
    "github.com/dineshyadav009/retrospectives/internal/config"
    httpapi "github.com/dineshyadav009/retrospectives/internal/http"
    "github.com/dineshyadav009/retrospectives/internal/jobs"
    "github.com/dineshyadav009/retrospectives/internal/logger"
    "github.com/dineshyadav009/retrospectives/internal/repo"
    "github.com/dineshyadav009/retrospectives/internal/services"
)

func main() {
    cfg := config.Load()
    log := logger.New(cfg)
    ctx, cancel := context.WithCancel(context.Background())
    defer cancel()

    // Run ledger is optional: without a DSN the service still generates,
    // it just keeps no history.
    var repository *repo.Repository
    if cfg.DBDSN != "" {
        db := repo.MustOpen(ctx, cfg, log)
        defer db.Close()
        repository = repo.NewRepository(db, log)
        if err := repository.EnsureSchema(ctx); err != nil {
            log.Fatal().Err(err).Msg("schema init failed")
        }
    }

    jc := jira.NewClient(cfg, log)
    sheets := gsheets.NewClient(cfg, log)
    svc := services.New(cfg, log, repository, jc, sheets)

    // `retro once` generates a single report and exits.
    if len(os.Args) > 1 && os.Args[1] == "once" {
        if err := svc.Generate(ctx); err != nil {
            log.Fatal().Err(err).Msg("generation failed")
        }
        return
    }

    router := httpapi.NewRouter(cfg, log, svc)
    cr := jobs.NewCron(cfg, log, svc, repository)
    cr.Start()
    defer cr.Stop()

    errCh := make(chan error, 1)
    go func() { errCh <- router.Run(cfg.HTTPAddr) }()

    sigCh := make(chan os.Signal, 1)
    signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

    select {
    case <-sigCh:
        log.Info().Msg("shutting down...")
    case err := <-errCh:
        if err != nil { log.Error().Err(err).Msg("http server error") }
    }

    time.Sleep(500 * time.Millisecond)
}

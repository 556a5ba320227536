package jobs

import (
    "context"
    "sync"
    "time"

    "github.com/dineshyadav009/retrospectives/internal/config"
    "github.com/dineshyadav009/retrospectives/internal/repo"
    "github.com/robfig/cron/v3"
    "github.com/rs/zerolog"
)

type service interface {
    Generate(ctx context.Context) error
}

const lockKey int64 = 723001

type Cron struct {
    cfg  config.Config
    log  zerolog.Logger
    svc  service
    repo *repo.Repository
    c    *cron.Cron
    mu   sync.Mutex
}

func NewCron(cfg config.Config, log zerolog.Logger, svc service, r *repo.Repository) *Cron {
    loc, err := time.LoadLocation(cfg.TZ)
    if err != nil { loc = time.Local }
    c := cron.New(cron.WithLocation(loc), cron.WithParser(cron.NewParser(cron.Minute|cron.Hour|cron.Dom|cron.Month|cron.Dow)))
    cr := &Cron{cfg: cfg, log: log, svc: svc, repo: r, c: c}
    _, _ = c.AddFunc(cfg.GenerateCron, cr.generate)
    return cr
}

func (cr *Cron) Start() { cr.c.Start() }
func (cr *Cron) Stop()  { cr.c.Stop() }

func (cr *Cron) generate() {
    ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
    defer cancel()
    if cr.repo != nil {
        ok, err := cr.repo.TryAdvisoryLock(ctx, lockKey)
        if err != nil { cr.log.Error().Err(err).Msg("cron: lock error"); return }
        if !ok { cr.log.Info().Msg("cron: already running elsewhere"); return }
        defer func() { _ = cr.repo.AdvisoryUnlock(context.Background(), lockKey) }()
    } else {
        if !cr.mu.TryLock() { cr.log.Info().Msg("cron: already running"); return }
        defer cr.mu.Unlock()
    }
    cr.log.Info().Msg("cron: retro generation")
    if err := cr.svc.Generate(ctx); err != nil { cr.log.Error().Err(err).Msg("cron: generation failed") }
}

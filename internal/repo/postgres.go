package repo

import (
    "context"
    "errors"
    "time"

    "github.com/dineshyadav009/retrospectives/internal/config"
    "github.com/jackc/pgx/v5"
    "github.com/jackc/pgx/v5/pgxpool"
    "github.com/rs/zerolog"
)

type DB struct {
    Pool *pgxpool.Pool
    log  zerolog.Logger
}

func MustOpen(ctx context.Context, cfg config.Config, log zerolog.Logger) *DB {
    pool, err := pgxpool.New(ctx, cfg.DBDSN)
    if err != nil { log.Fatal().Err(err).Msg("db connect failed") }
    ctx2, cancel := context.WithTimeout(ctx, 10*time.Second)
    defer cancel()
    if err := pool.Ping(ctx2); err != nil { log.Fatal().Err(err).Msg("db ping failed") }
    return &DB{Pool: pool, log: log}
}

func (d *DB) Close() { d.Pool.Close() }

// Repository records generation runs so the last outcome is inspectable and
// overlapping runs can be fenced with an advisory lock.
type Repository struct {
    db  *DB
    log zerolog.Logger
}

func NewRepository(d *DB, log zerolog.Logger) *Repository { return &Repository{db: d, log: log} }

func (r *Repository) EnsureSchema(ctx context.Context) error {
    const q = `
        CREATE TABLE IF NOT EXISTS runs(
            id BIGSERIAL PRIMARY KEY,
            time_frame TEXT NOT NULL,
            started_at TIMESTAMPTZ NOT NULL DEFAULT now(),
            finished_at TIMESTAMPTZ,
            tickets INT NOT NULL DEFAULT 0,
            members INT NOT NULL DEFAULT 0,
            ok BOOLEAN,
            error TEXT NOT NULL DEFAULT ''
        )`
    _, err := r.db.Pool.Exec(ctx, q)
    return err
}

func (r *Repository) TryAdvisoryLock(ctx context.Context, key int64) (bool, error) {
    var ok bool
    err := r.db.Pool.QueryRow(ctx, "SELECT pg_try_advisory_lock($1)", key).Scan(&ok)
    return ok, err
}

func (r *Repository) AdvisoryUnlock(ctx context.Context, key int64) error {
    var ok bool
    err := r.db.Pool.QueryRow(ctx, "SELECT pg_advisory_unlock($1)", key).Scan(&ok)
    if !ok && err == nil { return errors.New("advisory unlock returned false") }
    return err
}

type Run struct {
    ID         int64      `json:"id"`
    TimeFrame  string     `json:"time_frame"`
    StartedAt  time.Time  `json:"started_at"`
    FinishedAt *time.Time `json:"finished_at"`
    Tickets    int        `json:"tickets"`
    Members    int        `json:"members"`
    OK         *bool      `json:"ok"`
    Error      string     `json:"error"`
}

func (r *Repository) StartRun(ctx context.Context, timeFrame string) (int64, error) {
    var id int64
    err := r.db.Pool.QueryRow(ctx, "INSERT INTO runs(time_frame) VALUES($1) RETURNING id", timeFrame).Scan(&id)
    if err != nil { return 0, err }
    return id, nil
}

func (r *Repository) FinishRun(ctx context.Context, id int64, tickets, members int, ok bool, errMsg string) error {
    const q = `UPDATE runs SET finished_at=now(), tickets=$2, members=$3, ok=$4, error=$5 WHERE id=$1`
    _, err := r.db.Pool.Exec(ctx, q, id, tickets, members, ok, errMsg)
    return err
}

func (r *Repository) GetLastRun(ctx context.Context) (*Run, error) {
    const q = `SELECT id, time_frame, started_at, finished_at, tickets, members, ok, error
        FROM runs ORDER BY id DESC LIMIT 1`
    var run Run
    err := r.db.Pool.QueryRow(ctx, q).Scan(&run.ID, &run.TimeFrame, &run.StartedAt, &run.FinishedAt, &run.Tickets, &run.Members, &run.OK, &run.Error)
    if errors.Is(err, pgx.ErrNoRows) { return nil, nil }
    if err != nil { return nil, err }
    return &run, nil
}

package syncx

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"
)

const (
	EventAttemptStarted   = "attempt_started"
	EventAttemptSubmitted = "attempt_submitted"
)

type Event struct {
	Offset    int64
	Type      string
	Key       string // natural key: attempt id
	DataJSON  string
	CreatedAt int64
}

// Execer lets Append run on a *sql.DB or inside a *sql.Tx, so domain
// writes and their events commit together.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type EventRepo struct{}

func NewEventRepo() *EventRepo { return &EventRepo{} }

func (r *EventRepo) Append(ctx context.Context, ex Execer, typ, key string, data any) error {
	buf, err := json.Marshal(data)
	if err != nil {
		return err
	}
	_, err = ex.ExecContext(ctx,
		`INSERT INTO event_log (typ, key, data, created_at)
		 VALUES ($1,$2,$3,$4)`,
		typ, key, string(buf), time.Now().Unix())
	return err
}

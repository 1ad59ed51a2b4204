// internal/adapters/out/db/ticket_repository_pg.go
package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"storefront/internal/domain/common"
	tdom "storefront/internal/domain/ticket"
)

// TicketSchema creates the tickets table used when TICKET_BACKEND=postgres.
const TicketSchema = `
CREATE TABLE IF NOT EXISTS tickets (
  id              TEXT PRIMARY KEY,
  user_id         TEXT NOT NULL,
  email           TEXT NOT NULL DEFAULT '',
  subject         TEXT NOT NULL DEFAULT '',
  message         TEXT NOT NULL,
  status          TEXT NOT NULL,
  timeline        JSONB NOT NULL DEFAULT '[]'::jsonb,
  viewed_by_admin BOOLEAN NOT NULL DEFAULT FALSE,
  admin_response  TEXT NOT NULL DEFAULT '',
  version         INTEGER NOT NULL DEFAULT 1,
  created_at      TIMESTAMPTZ NOT NULL,
  updated_at      TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS tickets_user_created_idx ON tickets (user_id, created_at DESC);
`

const ticketColumns = `
  id, user_id, email, subject, message, status, timeline,
  viewed_by_admin, admin_response, version, created_at, updated_at`

// TicketRepositoryPG implements ticket.Repository and ticket.Watcher on PostgreSQL.
// Watch is polling based: rows are re-read every PollInterval and re-delivered
// when the (count, max(updated_at)) fingerprint changes.
type TicketRepositoryPG struct {
	DB           *sql.DB
	PollInterval time.Duration
}

func NewTicketRepositoryPG(db *sql.DB, poll time.Duration) *TicketRepositoryPG {
	if poll <= 0 {
		poll = 3 * time.Second
	}
	return &TicketRepositoryPG{DB: db, PollInterval: poll}
}

func (r *TicketRepositoryPG) EnsureSchema(ctx context.Context) error {
	if r == nil || r.DB == nil {
		return errors.New("ticket_repository_pg: db is nil")
	}
	_, err := r.DB.ExecContext(ctx, TicketSchema)
	return err
}

// =======================
// Queries
// =======================

func (r *TicketRepositoryPG) GetByID(ctx context.Context, uid, id string) (tdom.Ticket, error) {
	q := `SELECT` + ticketColumns + ` FROM tickets WHERE id = $1 AND user_id = $2`
	t, err := scanTicket(GetRunner(ctx, r.DB).QueryRowContext(ctx, q, strings.TrimSpace(id), strings.TrimSpace(uid)))
	if errors.Is(err, sql.ErrNoRows) {
		return tdom.Ticket{}, tdom.ErrNotFound
	}
	return t, err
}

func (r *TicketRepositoryPG) ListByUser(ctx context.Context, uid string) ([]tdom.Ticket, error) {
	q := `SELECT` + ticketColumns + ` FROM tickets WHERE user_id = $1 ORDER BY created_at DESC, id DESC`
	return r.list(ctx, q, strings.TrimSpace(uid))
}

func (r *TicketRepositoryPG) ListAll(ctx context.Context) ([]tdom.Ticket, error) {
	q := `SELECT` + ticketColumns + ` FROM tickets ORDER BY created_at DESC, id DESC`
	return r.list(ctx, q)
}

func (r *TicketRepositoryPG) list(ctx context.Context, q string, args ...any) ([]tdom.Ticket, error) {
	rows, err := GetRunner(ctx, r.DB).QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []tdom.Ticket{}
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// =======================
// Mutations
// =======================

func (r *TicketRepositoryPG) Create(ctx context.Context, t tdom.Ticket) error {
	tl, err := json.Marshal(nonNilTimeline(t.Timeline))
	if err != nil {
		return err
	}
	q := `
INSERT INTO tickets (` + ticketColumns + `
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`
	_, err = GetRunner(ctx, r.DB).ExecContext(ctx, q,
		t.ID, t.UserID, t.Email, t.Subject, t.Message, string(t.Status), string(tl),
		t.ViewedByAdmin, t.AdminResponse, t.Version, t.CreatedAt.UTC(), t.UpdatedAt.UTC(),
	)
	if IsUniqueViolation(err) {
		return fmt.Errorf("%w: ticket %s already exists", tdom.ErrConflict, t.ID)
	}
	return err
}

// Mutate locks the row, applies fn and writes back with a version check.
func (r *TicketRepositoryPG) Mutate(ctx context.Context, uid, id string, fn func(t *tdom.Ticket) error) (tdom.Ticket, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return tdom.Ticket{}, err
	}
	defer func() { _ = tx.Rollback() }()

	q := `SELECT` + ticketColumns + ` FROM tickets WHERE id = $1 AND user_id = $2 FOR UPDATE`
	cur, err := scanTicket(tx.QueryRowContext(ctx, q, strings.TrimSpace(id), strings.TrimSpace(uid)))
	if errors.Is(err, sql.ErrNoRows) {
		return tdom.Ticket{}, tdom.ErrNotFound
	}
	if err != nil {
		return tdom.Ticket{}, err
	}

	prevVersion := cur.Version
	next := cur
	next.Timeline = common.CloneTimeline(cur.Timeline)
	if err := fn(&next); err != nil {
		return tdom.Ticket{}, err
	}
	if next.Version == prevVersion {
		return cur, nil
	}

	tl, err := json.Marshal(nonNilTimeline(next.Timeline))
	if err != nil {
		return tdom.Ticket{}, err
	}
	res, err := tx.ExecContext(ctx, `
UPDATE tickets
SET status = $1, timeline = $2, viewed_by_admin = $3, admin_response = $4,
    version = $5, updated_at = $6
WHERE id = $7 AND user_id = $8 AND version = $9`,
		string(next.Status), string(tl), next.ViewedByAdmin, next.AdminResponse,
		next.Version, next.UpdatedAt.UTC(), next.ID, next.UserID, prevVersion,
	)
	if err != nil {
		if IsSerializationFailure(err) {
			return tdom.Ticket{}, tdom.ErrConflict
		}
		return tdom.Ticket{}, err
	}
	if aff, _ := res.RowsAffected(); aff == 0 {
		return tdom.Ticket{}, tdom.ErrConflict
	}
	if err := tx.Commit(); err != nil {
		return tdom.Ticket{}, err
	}
	return next, nil
}

// =======================
// Watch (polling)
// =======================

func (r *TicketRepositoryPG) WatchByUser(ctx context.Context, uid string, fn func([]tdom.Ticket)) error {
	uid = strings.TrimSpace(uid)
	return r.poll(ctx, func(ctx context.Context) ([]tdom.Ticket, error) {
		return r.ListByUser(ctx, uid)
	}, fn)
}

func (r *TicketRepositoryPG) WatchAll(ctx context.Context, fn func([]tdom.Ticket)) error {
	return r.poll(ctx, r.ListAll, fn)
}

func (r *TicketRepositoryPG) poll(ctx context.Context, load func(context.Context) ([]tdom.Ticket, error), fn func([]tdom.Ticket)) error {
	ticker := time.NewTicker(r.PollInterval)
	defer ticker.Stop()

	last := ""
	for {
		rows, err := load(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			log.Printf("[ticket_repository_pg] poll failed: %v", err)
			return err
		}
		if fp := ticketFingerprint(rows); fp != last {
			last = fp
			fn(rows)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// ticketFingerprint changes whenever a row is added, removed or bumped.
func ticketFingerprint(rows []tdom.Ticket) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d", len(rows))
	for _, t := range rows {
		fmt.Fprintf(&b, "|%s:%d", t.ID, t.Version)
	}
	return b.String()
}

// =======================
// Scan
// =======================

func scanTicket(s RowScanner) (tdom.Ticket, error) {
	var (
		t        tdom.Ticket
		status   string
		timeline []byte
	)
	if err := s.Scan(
		&t.ID, &t.UserID, &t.Email, &t.Subject, &t.Message, &status, &timeline,
		&t.ViewedByAdmin, &t.AdminResponse, &t.Version, &t.CreatedAt, &t.UpdatedAt,
	); err != nil {
		return tdom.Ticket{}, err
	}
	t.Status = tdom.Status(status)
	tl, err := decodeTimeline(timeline)
	if err != nil {
		return tdom.Ticket{}, fmt.Errorf("ticket %s: %w", t.ID, err)
	}
	t.Timeline = tl
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
	return t, nil
}

func decodeTimeline(raw []byte) ([]common.TimelineEntry, error) {
	out := []common.TimelineEntry{}
	if len(raw) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func nonNilTimeline(tl []common.TimelineEntry) []common.TimelineEntry {
	if tl == nil {
		return []common.TimelineEntry{}
	}
	return tl
}

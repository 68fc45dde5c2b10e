package audit

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-gateway/internal/events"
)

const auditSchema = `
CREATE TABLE IF NOT EXISTS audit_events (
    id                 UUID PRIMARY KEY,
    occurred_at        TIMESTAMPTZ NOT NULL,
    action             TEXT NOT NULL,
    outcome            TEXT NOT NULL,
    requester_name     TEXT,
    requester_email    TEXT,
    requester_username TEXT,
    ticket_id          INTEGER,
    subject            TEXT,
    attachment_count   INTEGER NOT NULL DEFAULT 0,
    error              TEXT
);
CREATE INDEX IF NOT EXISTS idx_audit_events_occurred_at ON audit_events (occurred_at);
`

// PostgresSink persists audit records into the audit_events table. Optional;
// only registered when an audit DSN is configured. Insert failures are logged
// and swallowed so they never abort a ticket workflow.
type PostgresSink struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPostgresSink builds the sink.
func NewPostgresSink(pool *pgxpool.Pool, logger *zap.Logger) *PostgresSink {
	return &PostgresSink{pool: pool, logger: logger}
}

// EnsureSchema creates the audit table when missing.
func (s *PostgresSink) EnsureSchema(ctx context.Context) error {
	if s.pool == nil {
		return nil
	}
	_, err := s.pool.Exec(ctx, auditSchema)
	return err
}

// Handle inserts one audit event.
func (s *PostgresSink) Handle(ctx context.Context, event events.Event) error {
	if s.pool == nil {
		return nil
	}
	record, ok := event.Payload.(Record)
	if !ok {
		return nil
	}
	outcome := "success"
	if event.Type == events.EventTicketCreateFailed {
		outcome = "failure"
	}
	var ticketID *int
	if record.TicketID != 0 {
		ticketID = &record.TicketID
	}
	_, err := s.pool.Exec(ctx, `
        INSERT INTO audit_events (
            id, occurred_at, action, outcome,
            requester_name, requester_email, requester_username,
            ticket_id, subject, attachment_count, error
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		record.ID, record.Timestamp, record.Action, outcome,
		nullable(record.RequesterName), nullable(record.RequesterEmail), nullable(record.RequesterUsername),
		ticketID, nullable(record.Subject), record.AttachmentCount, nullable(record.Error),
	)
	if err != nil {
		s.logger.Error("failed to persist audit event", zap.Error(err), zap.String("audit_id", record.ID))
	}
	return err
}

func nullable(val string) *string {
	if val == "" {
		return nil
	}
	return &val
}

// Package interaction persists question/response exchanges for operator
// analysis. The assistant invokes it fire-and-forget: recording failures are
// observable in logs and metrics but never affect a turn.
package interaction

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"smartshopper/internal/models"
)

// Recorder is the logging/telemetry collaborator the session engine calls
// once per turn.
type Recorder interface {
	Record(ctx context.Context, in *models.Interaction) error
}

// PostgresRecorder writes interactions to the interactions table.
type PostgresRecorder struct {
	db *sql.DB
}

func NewPostgresRecorder(db *sql.DB) *PostgresRecorder {
	return &PostgresRecorder{db: db}
}

func (r *PostgresRecorder) Record(ctx context.Context, in *models.Interaction) error {
	intentJSON, err := json.Marshal(in.Intent)
	if err != nil {
		return fmt.Errorf("marshal intent: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO interactions (id, session_id, question, response, intent, follow_up, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		in.ID, in.SessionID, in.Question, in.Response, intentJSON, nullable(in.FollowUp), in.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert interaction: %w", err)
	}

	return nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/grouptab/grouptab/internal/models"
	"github.com/grouptab/grouptab/internal/storage"
)

// UpsertSummary stores the cached summary blob for a group. The cache is
// a convenience copy of the aggregator's output; it is always re-derived
// from expenses and obligations, never read as the source of truth.
func (s *SQLiteStore) UpsertSummary(ctx context.Context, groupID string, summary *models.GroupSummary) error {
	if summary.UpdatedAt == 0 {
		summary.UpdatedAt = time.Now().Unix()
	}

	payload, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO group_summaries (group_id, payload, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(group_id) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		groupID, string(payload), summary.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert summary: %w", err)
	}

	return nil
}

// GetSummary retrieves the cached summary blob for a group.
func (s *SQLiteStore) GetSummary(ctx context.Context, groupID string) (*models.GroupSummary, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		"SELECT payload FROM group_summaries WHERE group_id = ?",
		groupID,
	).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("summary for group %s: %w", groupID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get summary: %w", err)
	}

	summary := &models.GroupSummary{}
	if err := json.Unmarshal([]byte(payload), summary); err != nil {
		return nil, fmt.Errorf("failed to decode summary: %w", err)
	}

	return summary, nil
}

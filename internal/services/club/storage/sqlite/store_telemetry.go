package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/louisbranch/bookclub.space/internal/services/club/storage"
)

// AppendTelemetryEvent inserts one operational telemetry record.
func (s *Store) AppendTelemetryEvent(ctx context.Context, evt storage.TelemetryEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	eventName := strings.TrimSpace(evt.EventName)
	if eventName == "" {
		return fmt.Errorf("event name is required")
	}
	timestamp := evt.Timestamp.UTC()
	if timestamp.IsZero() {
		timestamp = time.Now().UTC()
	}

	attributesJSON := []byte("{}")
	if len(evt.Attributes) > 0 {
		encoded, err := json.Marshal(evt.Attributes)
		if err != nil {
			return fmt.Errorf("encode telemetry attributes: %w", err)
		}
		attributesJSON = encoded
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO telemetry_events (
		   timestamp, event_name, severity, club_id, book_id, actor_id, attributes_json
		 ) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		toMillis(timestamp),
		eventName,
		strings.TrimSpace(evt.Severity),
		strings.TrimSpace(evt.ClubID),
		strings.TrimSpace(evt.BookID),
		strings.TrimSpace(evt.ActorID),
		string(attributesJSON),
	)
	if err != nil {
		return fmt.Errorf("append telemetry event: %w", err)
	}
	return nil
}

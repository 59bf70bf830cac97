package eventlogger

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

type sqlEventLogger struct {
	db *sql.DB
}

func NewSqlEventLogger(db *sql.DB) *sqlEventLogger {
	return &sqlEventLogger{
		db: db,
	}
}

func (el *sqlEventLogger) Save(ctx context.Context, e Event) error {
	jsonData, err := json.Marshal(e.Data)
	if err != nil {
		return fmt.Errorf("encoding event data: %w", err)
	}
	jsonMetadata, err := json.Marshal(e.Metadata)
	if err != nil {
		return fmt.Errorf("encoding event metadata: %w", err)
	}

	statement := `INSERT INTO events (id, event_type, ledger_id, actor_id, event_data, event_metadata, created_at)
                  VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err = el.db.ExecContext(ctx, statement, e.ID, e.Type, e.LedgerID, e.ActorID, jsonData, jsonMetadata, e.CreatedAt)
	return err
}

// ForLedger returns the newest events of a ledger. Data is left as raw JSON.
func (el *sqlEventLogger) ForLedger(ctx context.Context, ledgerID uuid.UUID, limit int) ([]Event, error) {
	query := `SELECT id, event_type, ledger_id, actor_id, event_data, event_metadata, created_at
              FROM events
              WHERE ledger_id = $1
              ORDER BY created_at DESC
              LIMIT $2`
	result, err := el.db.QueryContext(ctx, query, ledgerID, limit)
	if err != nil {
		return nil, err
	}
	defer result.Close()

	events := make([]Event, 0)
	for result.Next() {
		var event Event
		var jsonData, jsonMetadata []byte
		if err := result.Scan(&event.ID, &event.Type, &event.LedgerID, &event.ActorID, &jsonData, &jsonMetadata, &event.CreatedAt); err != nil {
			return events, err
		}
		event.Data = json.RawMessage(jsonData)

		var metadata map[string]string
		if err := json.Unmarshal(jsonMetadata, &metadata); err != nil {
			return events, fmt.Errorf("decoding event metadata: %w", err)
		}
		event.Metadata = metadata

		events = append(events, event)
	}

	if err := result.Err(); err != nil {
		return events, err
	}

	return events, nil
}

package eventlogger

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryLogger struct {
	mu     sync.Mutex
	events []Event
}

func (m *memoryLogger) Save(_ context.Context, e Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, e)
	return nil
}

func (m *memoryLogger) ForLedger(_ context.Context, ledgerID uuid.UUID, limit int) ([]Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Event
	for _, e := range m.events {
		if e.LedgerID.Valid && e.LedgerID.UUID == ledgerID && len(out) < limit {
			out = append(out, e)
		}
	}
	return out, nil
}

func TestNewEvent(t *testing.T) {
	ledgerID := uuid.New()
	e := NewEvent(
		WithType("expense.added"),
		WithLedger(ledgerID),
		WithActor(uuid.Nil),
		WithMetadata(map[string]string{"source": "api"}),
	)

	assert.Equal(t, "expense.added", e.Type)
	assert.Equal(t, ledgerID, e.LedgerID.UUID)
	assert.False(t, e.ActorID.Valid)
	assert.Equal(t, "api", e.Metadata["source"])
}

func TestWorker_FlushesOnShutdown(t *testing.T) {
	store := &memoryLogger{}
	w := NewWorker(store, 10, time.Second)
	w.Start()

	for i := 0; i < 5; i++ {
		assert.True(t, w.Log(NewEvent(WithType("expense.added"))))
	}
	w.Shutdown()

	store.mu.Lock()
	assert.Len(t, store.events, 5)
	store.mu.Unlock()

	assert.False(t, w.Log(NewEvent(WithType("late"))))
	w.Shutdown()
}

func TestWorker_DropsWhenFull(t *testing.T) {
	w := NewWorker(&memoryLogger{}, 1, time.Second)

	assert.True(t, w.Log(NewEvent()))
	assert.False(t, w.Log(NewEvent()))
}

func TestSqlEventLogger_Save(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ledgerID := uuid.New()
	e := NewEvent(WithType("ledger.settled"), WithLedger(ledgerID), WithData(map[string]string{"amount": "12.5"}))

	mock.ExpectExec("INSERT INTO events").
		WithArgs(e.ID, "ledger.settled", ledgerID, nil, []byte(`{"amount":"12.5"}`), []byte(`{}`), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, NewSqlEventLogger(db).Save(context.Background(), e))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSqlEventLogger_ForLedger(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ledgerID := uuid.New()
	rows := sqlmock.NewRows([]string{"id", "event_type", "ledger_id", "actor_id", "event_data", "event_metadata", "created_at"}).
		AddRow(uuid.NewString(), "expense.added", ledgerID.String(), nil, []byte(`{"amount":"10"}`), []byte(`{"k":"v"}`), time.Now())
	mock.ExpectQuery("SELECT id, event_type").WithArgs(ledgerID, 20).WillReturnRows(rows)

	events, err := NewSqlEventLogger(db).ForLedger(context.Background(), ledgerID, 20)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "v", events[0].Metadata["k"])
	assert.JSONEq(t, `{"amount":"10"}`, string(events[0].Data.(json.RawMessage)))

	assert.NoError(t, mock.ExpectationsWereMet())
}

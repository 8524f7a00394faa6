package events

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/vsinha/shopsched/pkg/infrastructure/logging"
)

func TestInMemoryEventStore_VersionsPerStream(t *testing.T) {
	store := NewInMemoryEventStore(nil)

	require.NoError(t, store.AppendEvent(OrderStream("1"), NewEvent(OrderRelocatedEvent, "", OrderRelocated{OrderID: "1"})))
	require.NoError(t, store.AppendEvent(OrderStream("1"), NewEvent(OrderStatusChangedEvent, "", OrderStatusChanged{OrderID: "1"})))
	require.NoError(t, store.AppendEvent(OrderStream("2"), NewEvent(OrderDeletedEvent, "", nil)))

	first, err := store.ReadEvents(OrderStream("1"), 0)
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, 1, first[0].Version())
	assert.Equal(t, 2, first[1].Version())
	assert.Equal(t, "order-1", first[1].StreamID())
	assert.NotEmpty(t, first[0].ID())

	fromSecond, err := store.ReadEvents(OrderStream("1"), 2)
	require.NoError(t, err)
	require.Len(t, fromSecond, 1)
	assert.Equal(t, OrderStatusChangedEvent, fromSecond[0].Type())

	none, err := store.ReadEvents("missing", 1)
	require.NoError(t, err)
	assert.Empty(t, none)

	all, err := store.ReadAllEvents(1)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Equal(t, 3, store.Position())
}

func TestInMemoryEventStore_NotifiesSynchronously(t *testing.T) {
	store := NewInMemoryEventStore(nil)

	var seen []string
	specific := &HandlerFunc{Types: []string{ShortageIdentifiedEvent}, Fn: func(e Event) error {
		seen = append(seen, "specific:"+e.Type())
		return nil
	}}
	wildcard := &HandlerFunc{Types: []string{"*"}, Fn: func(e Event) error {
		seen = append(seen, "any:"+e.Type())
		return nil
	}}
	require.NoError(t, store.Subscribe([]string{ShortageIdentifiedEvent}, specific))
	require.NoError(t, store.Subscribe([]string{"*"}, wildcard))

	require.NoError(t, store.AppendEvent(LedgerStream, NewEvent(ShortageIdentifiedEvent, LedgerStream, nil)))
	require.NoError(t, store.AppendEvent(MachineStream("BUIG 1"), NewEvent(OrderCompactedEvent, "", nil)))

	assert.Equal(t, []string{
		"specific:" + ShortageIdentifiedEvent,
		"any:" + ShortageIdentifiedEvent,
		"any:" + OrderCompactedEvent,
	}, seen)

	require.NoError(t, store.Unsubscribe(wildcard))
	require.NoError(t, store.AppendEvent(LedgerStream, NewEvent(OrderCompactedEvent, "", nil)))
	assert.Len(t, seen, 3)
}

func TestInMemoryEventStore_LogsHandlerErrors(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	store := NewInMemoryEventStore(logging.FromZap(zap.New(core)))

	failing := &HandlerFunc{Types: []string{OrderDeletedEvent}, Fn: func(Event) error {
		return errors.New("sink unavailable")
	}}
	require.NoError(t, store.Subscribe([]string{OrderDeletedEvent}, failing))

	require.NoError(t, store.AppendEvent(OrderStream("9"), NewEvent(OrderDeletedEvent, "", nil)))

	entries := logs.FilterMessage("event handler failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, OrderDeletedEvent, entries[0].ContextMap()["event_type"])
}

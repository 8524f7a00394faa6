package events

import (
	"sync"

	"github.com/vsinha/shopsched/pkg/infrastructure/logging"
)

// InMemoryEventStore keeps every event in memory and notifies subscribers
// synchronously, in subscription order, before AppendEvent returns.
type InMemoryEventStore struct {
	streams     map[string][]Event
	subscribers map[string][]EventHandler
	mutex       sync.RWMutex
	position    int
	allEvents   []Event
	log         *logging.Logger
}

func NewInMemoryEventStore(log *logging.Logger) *InMemoryEventStore {
	if log == nil {
		log = logging.NewNop()
	}
	return &InMemoryEventStore{
		streams:     make(map[string][]Event),
		subscribers: make(map[string][]EventHandler),
		allEvents:   make([]Event, 0),
		log:         log,
	}
}

var _ EventStore = (*InMemoryEventStore)(nil)

func (s *InMemoryEventStore) AppendEvent(streamID string, event Event) error {
	s.mutex.Lock()

	eventWithVersion := BaseEvent{
		EventID:      event.ID(),
		EventType:    event.Type(),
		Stream:       streamID,
		EventData:    event.Data(),
		EventTime:    event.Timestamp(),
		EventVersion: len(s.streams[streamID]) + 1,
	}

	s.streams[streamID] = append(s.streams[streamID], eventWithVersion)
	s.allEvents = append(s.allEvents, eventWithVersion)
	s.position++
	handlers := append([]EventHandler(nil), s.subscribers[event.Type()]...)
	handlers = append(handlers, s.subscribers["*"]...)

	s.mutex.Unlock()

	s.notifySubscribers(eventWithVersion, handlers)
	return nil
}

func (s *InMemoryEventStore) ReadEvents(streamID string, fromVersion int) ([]Event, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	events, exists := s.streams[streamID]
	if !exists {
		return []Event{}, nil
	}

	if fromVersion < 1 {
		fromVersion = 1
	}

	if fromVersion > len(events) {
		return []Event{}, nil
	}

	return append([]Event(nil), events[fromVersion-1:]...), nil
}

func (s *InMemoryEventStore) ReadAllEvents(fromPosition int) ([]Event, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if fromPosition < 0 {
		fromPosition = 0
	}

	if fromPosition >= len(s.allEvents) {
		return []Event{}, nil
	}

	return append([]Event(nil), s.allEvents[fromPosition:]...), nil
}

// Subscribe registers handler for the given types; "*" matches every type
func (s *InMemoryEventStore) Subscribe(eventTypes []string, handler EventHandler) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for _, eventType := range eventTypes {
		s.subscribers[eventType] = append(s.subscribers[eventType], handler)
	}

	return nil
}

func (s *InMemoryEventStore) Unsubscribe(handler EventHandler) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for eventType, handlers := range s.subscribers {
		newHandlers := make([]EventHandler, 0, len(handlers))
		for _, h := range handlers {
			if h != handler {
				newHandlers = append(newHandlers, h)
			}
		}
		s.subscribers[eventType] = newHandlers
	}

	return nil
}

// Position is the number of events appended so far
func (s *InMemoryEventStore) Position() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.position
}

func (s *InMemoryEventStore) notifySubscribers(event Event, handlers []EventHandler) {
	for _, handler := range handlers {
		if !handler.CanHandle(event.Type()) {
			continue
		}
		if err := handler.Handle(event); err != nil {
			s.log.Error("event handler failed", "event_type", event.Type(), "stream", event.StreamID(), "error", err)
		}
	}
}

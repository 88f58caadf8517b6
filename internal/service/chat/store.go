package chat

import (
	"context"
	"sync"
	"time"

	"github.com/echolab/parrot/internal/model/chat"
	"github.com/echolab/parrot/internal/pubsub"
)

// Store is the single source of truth for the conversation log. Identifier
// assignment is serialized, so concurrent appends never lose or duplicate
// identifiers. Every mutation publishes a full snapshot, never a delta.
type Store struct {
	mu       sync.Mutex
	nextID   int64
	messages []chat.Message

	bus *pubsub.Broadcaster[[]chat.Message]
}

// NewStore bootstraps an empty in-memory store. The first assigned
// identifier is 1.
func NewStore() *Store {
	return &Store{
		nextID:   1,
		messages: make([]chat.Message, 0, 16),
		bus:      pubsub.New[[]chat.Message](),
	}
}

// AppendOutgoing records a user-authored message and notifies observers.
// Text is stored as given; callers reject blank drafts before calling.
func (s *Store) AppendOutgoing(text string) chat.Message {
	return s.append(text, false)
}

// AppendIncoming records a responder-authored message and notifies observers.
func (s *Store) AppendIncoming(text string) chat.Message {
	return s.append(text, true)
}

func (s *Store) append(text string, incoming bool) chat.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	message := chat.Message{
		ID:        s.nextID,
		Text:      text,
		Incoming:  incoming,
		CreatedAt: time.Now().UTC(),
	}
	s.nextID++
	s.messages = append(s.messages, message)

	// Published under the lock so snapshots reach subscribers in log order.
	// Publish never blocks, so holding the mutex here is cheap.
	s.bus.Publish(s.snapshotLocked())
	return message
}

// ScheduleIncomingReply waits for delay, then appends text as an incoming
// message. Cancelling ctx abandons the reply before anything is appended.
// Safe to race from many goroutines; each completed wait appends exactly one
// message with its own identifier.
func (s *Store) ScheduleIncomingReply(ctx context.Context, text string, delay time.Duration) (chat.Message, error) {
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return chat.Message{}, ctx.Err()
	case <-timer.C:
	}

	return s.AppendIncoming(text), nil
}

// Reset atomically empties the log and restarts identifiers so the next
// append gets ID 1. Observers receive the empty snapshot.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID = 1
	s.messages = s.messages[:0]
	s.bus.Publish(s.snapshotLocked())
}

// Transcript returns a copy of the current log, oldest first.
func (s *Store) Transcript() []chat.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribe delivers a full log snapshot after every mutation until ctx is
// cancelled.
func (s *Store) Subscribe(ctx context.Context) (<-chan []chat.Message, string) {
	return s.bus.Subscribe(ctx)
}

func (s *Store) snapshotLocked() []chat.Message {
	copied := make([]chat.Message, len(s.messages))
	copy(copied, s.messages)
	return copied
}

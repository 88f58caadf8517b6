package chat

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/echolab/parrot/internal/model/chat"
	"github.com/echolab/parrot/internal/pubsub"
)

// echoPrefix is prepended to the trimmed draft to form the simulated reply.
const echoPrefix = "Echo: "

// DefaultReplyDelay applies when no delay is configured.
const DefaultReplyDelay = 5 * time.Second

// Controller translates discrete client intents into store operations and
// keeps a client-facing UIState projection current. It owns the draft text
// and busy flag; the store owns the log.
type Controller struct {
	store      *Store
	replyDelay time.Duration

	mu    sync.Mutex
	state chat.UIState

	bus    *pubsub.Broadcaster[chat.UIState]
	cancel context.CancelFunc
	done   chan struct{}
}

// NewController subscribes to the store and starts projecting its log into
// UIState. Close releases the subscription.
func NewController(store *Store, replyDelay time.Duration) *Controller {
	if replyDelay <= 0 {
		replyDelay = DefaultReplyDelay
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		store:      store,
		replyDelay: replyDelay,
		state:      chat.UIState{Messages: []chat.Message{}},
		bus:        pubsub.New[chat.UIState](),
		cancel:     cancel,
		done:       make(chan struct{}),
	}

	updates, _ := store.Subscribe(ctx)
	go c.observe(updates)

	return c
}

// observe republishes every store snapshot into UIState. This is the only
// path that clears IsSending after a send: the busy flag drops when the
// store confirms the append, not when the send call returns.
func (c *Controller) observe(updates <-chan []chat.Message) {
	defer close(c.done)

	for snapshot := range updates {
		c.mu.Lock()
		c.state.Messages = snapshot
		c.state.IsSending = false
		// Published under the lock so projections reach subscribers in
		// mutation order.
		c.bus.Publish(c.stateLocked())
		c.mu.Unlock()
	}
}

// DraftChanged stores the draft verbatim, with no trimming or validation.
// The store is untouched.
func (c *Controller) DraftChanged(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state.DraftText = text
	c.bus.Publish(c.stateLocked())
}

// SendRequested trims the draft and appends it as an outgoing message, then
// schedules the echoed reply without blocking on the delay. A draft that
// trims to nothing is ignored and the untrimmed draft is kept.
func (c *Controller) SendRequested() {
	c.mu.Lock()
	trimmed := strings.TrimSpace(c.state.DraftText)
	if trimmed == "" {
		c.mu.Unlock()
		return
	}
	c.state.IsSending = true
	c.state.DraftText = ""
	c.bus.Publish(c.stateLocked())
	c.mu.Unlock()

	c.store.AppendOutgoing(trimmed)

	go func() {
		// The reply outlives the controller on purpose: closing the
		// controller stops observing but never aborts a scheduled reply.
		_, _ = c.store.ScheduleIncomingReply(context.Background(), echoPrefix+trimmed, c.replyDelay)
	}()
}

// MessagesReplaced swaps the whole message list in, clearing the draft and
// busy flag. Escape hatch for bulk replacement; the send flow never uses it.
func (c *Controller) MessagesReplaced(messages []chat.Message) {
	copied := make([]chat.Message, len(messages))
	copy(copied, messages)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.state.Messages = copied
	c.state.DraftText = ""
	c.state.IsSending = false
	c.bus.Publish(c.stateLocked())
}

// State returns a copy of the current projection.
func (c *Controller) State() chat.UIState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

// Subscribe delivers the projection after every change until ctx is
// cancelled.
func (c *Controller) Subscribe(ctx context.Context) (<-chan chat.UIState, string) {
	return c.bus.Subscribe(ctx)
}

// Close cancels the store subscription and waits for the projection loop to
// stop. UIState freezes at its last value; replies already scheduled still
// append to the store, unobserved.
func (c *Controller) Close() {
	c.cancel()
	<-c.done
	c.bus.Close()
}

func (c *Controller) stateLocked() chat.UIState {
	messages := make([]chat.Message, len(c.state.Messages))
	copy(messages, c.state.Messages)
	return chat.UIState{
		Messages:  messages,
		DraftText: c.state.DraftText,
		IsSending: c.state.IsSending,
	}
}

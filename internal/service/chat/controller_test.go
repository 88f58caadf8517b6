package chat_test

import (
	"context"
	"testing"
	"time"

	chatmodel "github.com/echolab/parrot/internal/model/chat"
	chat "github.com/echolab/parrot/internal/service/chat"
)

func waitForState(t *testing.T, c *chat.Controller, cond func(chatmodel.UIState) bool) chatmodel.UIState {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		state := c.State()
		if cond(state) {
			return state
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("timed out waiting for state condition")
	return chatmodel.UIState{}
}

func nextState(t *testing.T, updates <-chan chatmodel.UIState) chatmodel.UIState {
	t.Helper()
	select {
	case state := <-updates:
		return state
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for state update")
		return chatmodel.UIState{}
	}
}

func TestSendRequestedTrimsDraft(t *testing.T) {
	store := chat.NewStore()
	controller := chat.NewController(store, time.Hour)
	t.Cleanup(controller.Close)

	controller.DraftChanged("  Hello World  ")
	controller.SendRequested()

	state := waitForState(t, controller, func(s chatmodel.UIState) bool {
		return len(s.Messages) == 1 && !s.IsSending
	})

	if state.DraftText != "" {
		t.Fatalf("draft not cleared: %q", state.DraftText)
	}
	if state.Messages[0].Text != "Hello World" {
		t.Fatalf("message text: got %q want %q", state.Messages[0].Text, "Hello World")
	}
	if state.Messages[0].Incoming {
		t.Fatal("sent message flagged as incoming")
	}
}

func TestSendRequestedBlankDraftIsNoOp(t *testing.T) {
	store := chat.NewStore()
	controller := chat.NewController(store, 10*time.Millisecond)
	t.Cleanup(controller.Close)

	controller.DraftChanged("   \n\t  ")
	controller.SendRequested()

	time.Sleep(50 * time.Millisecond)

	state := controller.State()
	if state.DraftText != "   \n\t  " {
		t.Fatalf("untrimmed draft changed: %q", state.DraftText)
	}
	if len(state.Messages) != 0 {
		t.Fatalf("blank send produced %d messages", len(state.Messages))
	}
	if state.IsSending {
		t.Fatal("blank send left IsSending set")
	}
	if got := len(store.Transcript()); got != 0 {
		t.Fatalf("blank send reached the store: %d messages", got)
	}
}

func TestSendRequestedSchedulesEcho(t *testing.T) {
	store := chat.NewStore()
	controller := chat.NewController(store, 150*time.Millisecond)
	t.Cleanup(controller.Close)

	controller.DraftChanged("Hello")
	controller.SendRequested()

	waitForState(t, controller, func(s chatmodel.UIState) bool {
		return len(s.Messages) == 1
	})

	// Before the delay elapses only the outgoing message exists.
	if got := len(store.Transcript()); got != 1 {
		t.Fatalf("transcript before delay: got %d messages want 1", got)
	}

	state := waitForState(t, controller, func(s chatmodel.UIState) bool {
		return len(s.Messages) == 2
	})

	echo := state.Messages[1]
	if echo.Text != "Echo: Hello" {
		t.Fatalf("echo text: got %q want %q", echo.Text, "Echo: Hello")
	}
	if !echo.Incoming {
		t.Fatal("echo not flagged as incoming")
	}
}

func TestSequentialSendsKeepOrder(t *testing.T) {
	store := chat.NewStore()
	controller := chat.NewController(store, 20*time.Millisecond)
	t.Cleanup(controller.Close)

	controller.DraftChanged("First")
	controller.SendRequested()
	waitForState(t, controller, func(s chatmodel.UIState) bool {
		return len(s.Messages) == 2
	})

	controller.DraftChanged("Second")
	controller.SendRequested()
	state := waitForState(t, controller, func(s chatmodel.UIState) bool {
		return len(s.Messages) == 4
	})

	wantTexts := []string{"First", "Echo: First", "Second", "Echo: Second"}
	wantIncoming := []bool{false, true, false, true}
	for i, msg := range state.Messages {
		if msg.Text != wantTexts[i] {
			t.Fatalf("message %d text: got %q want %q", i, msg.Text, wantTexts[i])
		}
		if msg.Incoming != wantIncoming[i] {
			t.Fatalf("message %d incoming: got %v want %v", i, msg.Incoming, wantIncoming[i])
		}
		if msg.ID != int64(i+1) {
			t.Fatalf("message %d ID: got %d want %d", i, msg.ID, i+1)
		}
	}
}

func TestSendPublishesBusyThenConfirmed(t *testing.T) {
	store := chat.NewStore()
	controller := chat.NewController(store, time.Hour)
	t.Cleanup(controller.Close)

	updates, _ := controller.Subscribe(context.Background())

	controller.DraftChanged("hi")
	controller.SendRequested()

	draft := nextState(t, updates)
	if draft.DraftText != "hi" || draft.IsSending {
		t.Fatalf("unexpected draft state: %+v", draft)
	}

	busy := nextState(t, updates)
	if !busy.IsSending {
		t.Fatal("send did not publish a busy state")
	}
	if busy.DraftText != "" {
		t.Fatalf("busy state kept draft: %q", busy.DraftText)
	}

	confirmed := nextState(t, updates)
	if confirmed.IsSending {
		t.Fatal("store confirmation did not clear IsSending")
	}
	if len(confirmed.Messages) != 1 {
		t.Fatalf("confirmed state has %d messages, want 1", len(confirmed.Messages))
	}
}

func TestMessagesReplacedClearsDraftAndBusy(t *testing.T) {
	store := chat.NewStore()
	controller := chat.NewController(store, time.Hour)
	t.Cleanup(controller.Close)

	controller.DraftChanged("pending input")

	replacement := []chatmodel.Message{
		{ID: 10, Text: "a", Incoming: false},
		{ID: 11, Text: "b", Incoming: true},
	}
	controller.MessagesReplaced(replacement)

	state := controller.State()
	if len(state.Messages) != 2 {
		t.Fatalf("messages not replaced: %d", len(state.Messages))
	}
	if state.DraftText != "" {
		t.Fatalf("draft not cleared: %q", state.DraftText)
	}
	if state.IsSending {
		t.Fatal("IsSending not cleared")
	}
}

func TestCloseFreezesProjection(t *testing.T) {
	store := chat.NewStore()
	controller := chat.NewController(store, 10*time.Millisecond)

	controller.DraftChanged("Hello")
	controller.SendRequested()
	waitForState(t, controller, func(s chatmodel.UIState) bool {
		return len(s.Messages) == 2
	})

	controller.Close()

	store.AppendIncoming("after close")
	time.Sleep(50 * time.Millisecond)

	if got := len(controller.State().Messages); got != 2 {
		t.Fatalf("closed controller observed a store mutation: %d messages", got)
	}
	if got := len(store.Transcript()); got != 3 {
		t.Fatalf("store transcript: got %d messages want 3", got)
	}
}

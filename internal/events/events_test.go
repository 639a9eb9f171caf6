package events

import (
	"errors"
	"testing"
	"time"
)

func TestEmitRejectsUnknownName(t *testing.T) {
	Clear()
	if err := Emit("info", "not.a.real.event", "", nil); err == nil {
		t.Fatal("expected error for unknown event name")
	}
	if got := len(Snapshot()); got != 0 {
		t.Errorf("unknown event buffered: got %d events", got)
	}
}

func TestEmitBuffersInOrder(t *testing.T) {
	Clear()
	Emit("info", "scene.entered", "menu", nil)
	Emit("info", "lever.flipped", "", map[string]interface{}{"side": "left"})
	Emit("info", "scene.exited", "menu", nil)

	got := Snapshot()
	if len(got) != 3 {
		t.Fatalf("expected 3 buffered events, got %d", len(got))
	}
	want := []string{"scene.entered", "lever.flipped", "scene.exited"}
	for i, name := range want {
		if got[i].Name != name {
			t.Errorf("event %d: got %q, want %q", i, got[i].Name, name)
		}
	}
}

func TestRecentLimitsCount(t *testing.T) {
	Clear()
	for i := 0; i < 10; i++ {
		Emit("info", "countdown.pulse", "", nil)
	}
	if got := len(Recent(4)); got != 4 {
		t.Errorf("Recent(4) returned %d events", got)
	}
	if got := len(Recent(0)); got != 10 {
		t.Errorf("Recent(0) returned %d events, want all 10", got)
	}
}

func TestRingBufferWraps(t *testing.T) {
	rb := newRingBuffer(4)
	for i := 0; i < 6; i++ {
		rb.add(Event{Message: string(rune('a' + i))})
	}
	got := rb.snapshot()
	if len(got) != 4 {
		t.Fatalf("expected 4 events after wrap, got %d", len(got))
	}
	if got[0].Message != "c" || got[3].Message != "f" {
		t.Errorf("wrap order wrong: first=%q last=%q", got[0].Message, got[3].Message)
	}
}

func TestSubscribeReceivesEvents(t *testing.T) {
	Clear()
	sub := Subscribe()
	defer Unsubscribe(sub)

	Emit("info", "operator.skip", "", nil)

	select {
	case e := <-sub:
		if e.Name != "operator.skip" {
			t.Errorf("got event %q, want operator.skip", e.Name)
		}
	case <-time.After(time.Second):
		t.Fatal("subscriber never received the event")
	}
}

func TestSlowSubscriberDoesNotBlockEmit(t *testing.T) {
	Clear()
	sub := Subscribe()
	defer Unsubscribe(sub)

	// Overfill the subscriber buffer; Emit must not stall.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 200; i++ {
			Emit("info", "countdown.pulse", "", nil)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Emit blocked on a full subscriber")
	}
}

type failingSink struct{ calls int }

func (f *failingSink) Append(ts time.Time, level, name, msg string, fields map[string]interface{}) error {
	f.calls++
	return errors.New("connection refused")
}

func TestSinkFailureLoggedOnce(t *testing.T) {
	Clear()
	s := &failingSink{}
	SetSink(s)
	defer SetSink(nil)

	Emit("info", "scene.entered", "", nil)
	Emit("info", "scene.exited", "", nil)

	errCount := 0
	for _, e := range Snapshot() {
		if e.Name == "system.error" {
			errCount++
		}
	}
	if errCount != 1 {
		t.Errorf("expected exactly 1 system.error event, got %d", errCount)
	}
	if s.calls != 2 {
		t.Errorf("sink should still be attempted per event, got %d calls", s.calls)
	}
}

func TestPlaySoundEmitsToken(t *testing.T) {
	Clear()
	PlaySound(SoundLever, "")

	got := Snapshot()
	if len(got) != 1 || got[0].Name != "audio.play" {
		t.Fatalf("expected a single audio.play event, got %v", got)
	}
	if tok, _ := got[0].Fields["token"].(string); tok != "lever" {
		t.Errorf("token field = %q, want lever", tok)
	}
}

func TestPlaySoundSkipsUnknownToken(t *testing.T) {
	Clear()
	PlaySound(SoundToken("kazoo"), "sounds/kazoo.ogg")

	got := Snapshot()
	if len(got) != 1 || got[0].Name != "audio.missing" {
		t.Fatalf("expected a single audio.missing event, got %v", got)
	}
}

func TestKnownToken(t *testing.T) {
	if !KnownToken(SoundScream) {
		t.Error("scream should be a known token")
	}
	if KnownToken(SoundToken("kazoo")) {
		t.Error("kazoo should not be a known token")
	}
}

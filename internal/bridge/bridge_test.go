package bridge

import (
	"testing"
	"time"

	"github.com/FraserHollow/TrolleyEngine/internal/engine"
	"github.com/FraserHollow/TrolleyEngine/internal/events"
)

type mockMessage struct {
	topic   string
	payload []byte
}

func (m *mockMessage) Duplicate() bool   { return false }
func (m *mockMessage) Qos() byte         { return 1 }
func (m *mockMessage) Retained() bool    { return false }
func (m *mockMessage) Topic() string     { return m.topic }
func (m *mockMessage) MessageID() uint16 { return 0 }
func (m *mockMessage) Payload() []byte   { return m.payload }
func (m *mockMessage) Ack()              {}

func TestParseIntent(t *testing.T) {
	cases := []struct {
		name    string
		want    engine.IntentKind
		wantErr bool
	}{
		{name: "start", want: engine.IntentStart},
		{name: "lever_left", want: engine.IntentLeverLeft},
		{name: "lever_right", want: engine.IntentLeverRight},
		{name: "skip", want: engine.IntentSkip},
		{name: "replay", want: engine.IntentReplay},
		{name: "press_any_key", wantErr: true},
		{name: "", wantErr: true},
	}
	for _, tc := range cases {
		got, err := ParseIntent(tc.name)
		if tc.wantErr {
			if err == nil {
				t.Errorf("%q: expected error", tc.name)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%q: %v", tc.name, err)
		}
		if got != tc.want {
			t.Errorf("%q: got %v, want %v", tc.name, got, tc.want)
		}
	}
}

func newTestBridge(t *testing.T) *Bridge {
	t.Helper()
	eng, err := engine.New(engine.Options{})
	if err != nil {
		t.Fatal(err)
	}
	return New(eng)
}

func TestHandleInputDispatchesIntent(t *testing.T) {
	b := newTestBridge(t)
	b.handleInput(nil, &mockMessage{
		topic:   inputTopic,
		payload: []byte(`{"intent": "start"}`),
	})

	b.engine.Tick(time.Millisecond)
	b.engine.Tick(time.Millisecond)
	if got := b.engine.Snapshot().Kind; got != "loading" {
		t.Fatalf("start intent should leave the menu, got %s", got)
	}
}

func TestHandleInputRejectsUnknownIntent(t *testing.T) {
	events.Clear()
	b := newTestBridge(t)
	b.handleInput(nil, &mockMessage{
		topic:   inputTopic,
		payload: []byte(`{"intent": "launch_missiles"}`),
	})

	found := false
	for _, ev := range events.Snapshot() {
		if ev.Name == "console.error" {
			found = true
		}
	}
	if !found {
		t.Fatal("unknown intent should emit a console error")
	}
}

func TestHandleInputRejectsMalformedPayload(t *testing.T) {
	events.Clear()
	b := newTestBridge(t)
	b.handleInput(nil, &mockMessage{
		topic:   inputTopic,
		payload: []byte(`not json`),
	})

	b.engine.Tick(time.Millisecond)
	if got := b.engine.Snapshot().Kind; got != "menu" {
		t.Fatalf("malformed payload must not move the engine, got %s", got)
	}
	found := false
	for _, ev := range events.Snapshot() {
		if ev.Name == "console.error" {
			found = true
		}
	}
	if !found {
		t.Fatal("malformed payload should emit a console error")
	}
}

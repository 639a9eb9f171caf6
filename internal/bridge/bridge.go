package bridge

import (
	"encoding/json"
	"fmt"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/FraserHollow/TrolleyEngine/internal/engine"
	"github.com/FraserHollow/TrolleyEngine/internal/events"
)

const (
	inputTopic     = "trolley/console/input"
	eventTopicBase = "trolley/events/"
	snapshotTopic  = "trolley/snapshot"
)

// consoleInput is the payload accepted on the input topic.
type consoleInput struct {
	Intent string `json:"intent"`
}

var intentNames = map[string]engine.IntentKind{
	"start":          engine.IntentStart,
	"next":           engine.IntentNext,
	"lever_left":     engine.IntentLeverLeft,
	"lever_right":    engine.IntentLeverRight,
	"skip":           engine.IntentSkip,
	"narration_done": engine.IntentNarrationDone,
	"replay":         engine.IntentReplay,
}

// ParseIntent maps a console intent name onto the engine intent.
func ParseIntent(name string) (engine.IntentKind, error) {
	kind, ok := intentNames[name]
	if !ok {
		return 0, fmt.Errorf("unknown intent %q", name)
	}
	return kind, nil
}

// Bridge connects a physical console over MQTT: lever and button inputs
// arrive on the input topic, and every engine event is mirrored out so
// the cabinet lighting and operator panel can react.
type Bridge struct {
	client *Client
	engine *engine.Engine
	sub    events.Subscriber
	done   chan struct{}
}

// New builds a bridge around its own broker connection.
func New(eng *engine.Engine) *Bridge {
	return &Bridge{
		client: NewClient("trolley-engine-" + uuid.NewString()[:8]),
		engine: eng,
		done:   make(chan struct{}),
	}
}

// Start connects, subscribes to console input, and begins mirroring
// events. Returns false if the broker is unreachable; the game plays on
// without it.
func (b *Bridge) Start() bool {
	if !b.client.StartWithRetry(inputTopic, b.handleInput) {
		return false
	}
	events.Emit("info", "console.connected", "", map[string]interface{}{
		"broker": BrokerURL(),
	})

	b.sub = events.Subscribe()
	go b.mirror()
	return true
}

// Stop tears the bridge down.
func (b *Bridge) Stop() {
	close(b.done)
	if b.sub != nil {
		events.Unsubscribe(b.sub)
	}
	if b.client.IsConnected() {
		events.Emit("info", "console.disconnected", "", nil)
		b.client.Disconnect()
	}
}

func (b *Bridge) handleInput(_ paho.Client, msg paho.Message) {
	var input consoleInput
	if err := json.Unmarshal(msg.Payload(), &input); err != nil {
		events.Emit("warn", "console.error", err.Error(), map[string]interface{}{
			"topic": msg.Topic(),
		})
		return
	}

	kind, err := ParseIntent(input.Intent)
	if err != nil {
		events.Emit("warn", "console.error", err.Error(), nil)
		return
	}

	events.Emit("debug", "console.input", "", map[string]interface{}{
		"intent": input.Intent,
	})
	b.engine.Apply(kind)
}

// mirror republishes every engine event onto the event topic tree.
func (b *Bridge) mirror() {
	for {
		select {
		case <-b.done:
			return
		case ev, ok := <-b.sub:
			if !ok {
				return
			}
			payload, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			b.client.Publish(eventTopicBase+ev.Name, payload)
		}
	}
}

// PublishSnapshot pushes the current engine state for passive displays.
func (b *Bridge) PublishSnapshot() {
	snap := b.engine.Snapshot()
	payload, err := json.Marshal(snap)
	if err != nil {
		return
	}
	b.client.Publish(snapshotTopic, payload)
}

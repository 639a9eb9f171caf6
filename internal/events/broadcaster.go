package events

import (
	"sync"
)

// Subscriber is a channel fed a copy of every emitted event.
type Subscriber chan Event

var (
	subMu       sync.RWMutex
	subscribers = make(map[Subscriber]struct{})
)

// Subscribe registers a new subscriber. The channel is buffered so a slow
// observer client cannot stall the tick loop.
func Subscribe() Subscriber {
	ch := make(Subscriber, 64)
	subMu.Lock()
	subscribers[ch] = struct{}{}
	subMu.Unlock()
	return ch
}

// Unsubscribe removes a subscriber and closes its channel.
func Unsubscribe(sub Subscriber) {
	subMu.Lock()
	delete(subscribers, sub)
	subMu.Unlock()
	close(sub)
}

// SubscriberCount reports how many observers are attached.
func SubscriberCount() int {
	subMu.RLock()
	defer subMu.RUnlock()
	return len(subscribers)
}

// broadcast fans an event out to every subscriber. When a subscriber's
// buffer is full the event is dropped for that subscriber only.
func broadcast(e Event) {
	subMu.RLock()
	defer subMu.RUnlock()

	for sub := range subscribers {
		select {
		case sub <- e:
		default:
		}
	}
}

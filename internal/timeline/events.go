package timeline

import (
	"log"
	"sync"

	"daytrack-backend/internal/model"
)

// Handler receives a slot after a committed write. Handlers run on the
// writer's goroutine, in commit order, and must return quickly and must not
// write to the timeline themselves; wrap slow ones with
// notification.WorkerPool.Wrap.
type Handler func(slot model.TimeSlot)

// Subscription identifies a registered handler.
type Subscription uint64

type eventKind int

const (
	slotCreated eventKind = iota
	slotUpdated
)

func (k eventKind) String() string {
	if k == slotCreated {
		return "slot-created"
	}
	return "slot-updated"
}

type subscriber struct {
	id      Subscription
	kind    eventKind
	handler Handler
}

// bus dispatches events to subscribers in registration order.
type bus struct {
	mu          sync.RWMutex
	next        Subscription
	subscribers []subscriber
}

func (b *bus) subscribe(kind eventKind, h Handler) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.next++
	b.subscribers = append(b.subscribers, subscriber{id: b.next, kind: kind, handler: h})
	return b.next
}

func (b *bus) unsubscribe(id Subscription) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.subscribers {
		if s.id == id {
			b.subscribers = append(b.subscribers[:i:i], b.subscribers[i+1:]...)
			return true
		}
	}
	return false
}

func (b *bus) publish(kind eventKind, slot model.TimeSlot) {
	b.mu.RLock()
	var handlers []Handler
	for _, s := range b.subscribers {
		if s.kind == kind {
			handlers = append(handlers, s.handler)
		}
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		deliver(kind, h, slot)
	}
}

func deliver(kind eventKind, h Handler, slot model.TimeSlot) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("timeline: %s handler panicked: %v", kind, r)
		}
	}()
	h(slot)
}

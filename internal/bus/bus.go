// Package bus is the in-process message channel between the catalog pane and
// the order editor. Delivery is synchronous and in publish order; a cancelled
// subscription receives nothing.
package bus

import "sync"

// ProductSelected is published when a catalog entry is picked.
type ProductSelected struct {
	ProductID        string
	ProductName      string
	UnitPriceCents   int64
	PricebookEntryID string
}

// Bus fans ProductSelected messages out to subscribers.
type Bus struct {
	mu   sync.Mutex
	subs map[int]func(ProductSelected)
	next int
}

func New() *Bus {
	return &Bus{subs: make(map[int]func(ProductSelected))}
}

// Subscribe registers handler for every subsequent Publish. The handler runs
// on the publisher's goroutine.
func (b *Bus) Subscribe(handler func(ProductSelected)) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.next
	b.next++
	b.subs[id] = handler
	return &Subscription{bus: b, id: id}
}

// Publish delivers msg to every live subscriber before returning.
func (b *Bus) Publish(msg ProductSelected) {
	b.mu.Lock()
	handlers := make([]func(ProductSelected), 0, len(b.subs))
	for id := 0; id < b.next; id++ {
		if h, ok := b.subs[id]; ok {
			handlers = append(handlers, h)
		}
	}
	b.mu.Unlock()
	for _, h := range handlers {
		h(msg)
	}
}

// Subscription detaches a subscriber from the bus.
type Subscription struct {
	bus  *Bus
	id   int
	once sync.Once
}

// Cancel removes the subscriber. Safe to call more than once.
func (s *Subscription) Cancel() {
	s.once.Do(func() {
		s.bus.mu.Lock()
		delete(s.bus.subs, s.id)
		s.bus.mu.Unlock()
	})
}

package attendance

import "sync"

// Feed fans out newly inserted records to live-stream subscribers.
// Publish happens on the submission path, so it never blocks: a
// subscriber that falls further behind than its buffer loses events
// rather than stalling writers.
type Feed struct {
	mu   sync.Mutex
	subs map[chan Record]struct{}
}

// NewFeed creates an empty feed.
func NewFeed() *Feed {
	return &Feed{subs: make(map[chan Record]struct{})}
}

// Subscribe registers a listener. The returned cancel func must be
// called when the consumer goes away; it closes the channel.
func (f *Feed) Subscribe() (<-chan Record, func()) {
	ch := make(chan Record, 16)
	f.mu.Lock()
	f.subs[ch] = struct{}{}
	f.mu.Unlock()

	cancel := func() {
		f.mu.Lock()
		if _, ok := f.subs[ch]; ok {
			delete(f.subs, ch)
			close(ch)
		}
		f.mu.Unlock()
	}
	return ch, cancel
}

// Publish delivers rec to every current subscriber.
func (f *Feed) Publish(rec Record) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for ch := range f.subs {
		select {
		case ch <- rec:
		default:
		}
	}
}

// Subscribers reports the current listener count.
func (f *Feed) Subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

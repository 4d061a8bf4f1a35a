package app

import (
	"sync"

	"quiz-engine/internal/domain"
)

// ProgressBroker fans session progress out to watchers. A slow watcher
// never blocks a publish: its stale buffered update is dropped first.
type ProgressBroker struct {
	mu       sync.Mutex
	watchers map[string]map[chan domain.Progress]struct{}
}

func NewProgressBroker() *ProgressBroker {
	return &ProgressBroker{watchers: make(map[string]map[chan domain.Progress]struct{})}
}

// Subscribe registers a watcher for a session. initial runs under the
// broker lock, after registration, and its result is buffered as the
// first message; publishes serialize on the same lock, so an update
// accepted concurrently with the subscription can never be lost or
// precede the snapshot. At worst the snapshot already includes the
// update that follows it. The caller must invoke cancel to release the
// channel.
func (b *ProgressBroker) Subscribe(sessionID string, initial func() (domain.Progress, error)) (<-chan domain.Progress, func(), error) {
	ch := make(chan domain.Progress, 8)

	b.mu.Lock()
	set, ok := b.watchers[sessionID]
	if !ok {
		set = make(map[chan domain.Progress]struct{})
		b.watchers[sessionID] = set
	}
	set[ch] = struct{}{}

	snapshot, err := initial()
	if err != nil {
		delete(set, ch)
		if len(set) == 0 {
			delete(b.watchers, sessionID)
		}
		b.mu.Unlock()
		return nil, nil, err
	}
	ch <- snapshot
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		if set, ok := b.watchers[sessionID]; ok {
			if _, ok := set[ch]; ok {
				delete(set, ch)
				close(ch)
			}
			if len(set) == 0 {
				delete(b.watchers, sessionID)
			}
		}
		b.mu.Unlock()
	}
	return ch, cancel, nil
}

// Publish delivers an update to every watcher of the session.
func (b *ProgressBroker) Publish(update domain.Progress) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.watchers[update.SessionID] {
		select {
		case ch <- update:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- update
		}
	}
}

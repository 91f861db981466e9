// Package watch provides an in-process change feed for the catalog and
// settings scopes. It replaces the browser storage-event polling the
// storefront used for cross-tab sync: writers publish a scope, every
// subscriber observes a monotonically increasing version for it.
package watch

import "sync"

// Scopes published on the feed
const (
	ScopeCatalog  = "catalog"
	ScopeSettings = "settings"
)

// Update notifies subscribers that a scope changed
type Update struct {
	Scope   string `json:"scope"`
	Version int64  `json:"version"`
}

type subscriber struct {
	ch chan Update
}

// Feed fans out scope updates to any number of subscribers. Slow
// subscribers drop updates rather than block publishers; they can
// re-sync from Versions, since versions only ever increase.
type Feed struct {
	mu       sync.Mutex
	versions map[string]int64
	subs     map[*subscriber]struct{}
	closed   bool
}

// NewFeed creates an empty feed
func NewFeed() *Feed {
	return &Feed{
		versions: make(map[string]int64),
		subs:     make(map[*subscriber]struct{}),
	}
}

// Seed raises a scope's version to at least v without notifying
// subscribers. Called at startup with the persisted counters so clients
// never observe a version regression across restarts.
func (f *Feed) Seed(scope string, v int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed || v <= f.versions[scope] {
		return
	}
	f.versions[scope] = v
}

// Publish bumps the scope's version and notifies subscribers.
// Returns the new version.
func (f *Feed) Publish(scope string) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return f.versions[scope]
	}

	f.versions[scope]++
	u := Update{Scope: scope, Version: f.versions[scope]}

	for s := range f.subs {
		select {
		case s.ch <- u:
		default:
			// subscriber buffer full, it re-syncs from Versions
		}
	}
	return u.Version
}

// Subscribe registers a subscriber with the given buffer size and returns
// its update channel plus a cancel func. Cancel closes the channel.
func (f *Feed) Subscribe(buffer int) (<-chan Update, func()) {
	if buffer < 1 {
		buffer = 1
	}
	s := &subscriber{ch: make(chan Update, buffer)}

	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		close(s.ch)
		return s.ch, func() {}
	}
	f.subs[s] = struct{}{}
	f.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			f.mu.Lock()
			if _, ok := f.subs[s]; ok {
				delete(f.subs, s)
				close(s.ch)
			}
			f.mu.Unlock()
		})
	}
	return s.ch, cancel
}

// Version returns the current version for a scope
func (f *Feed) Version(scope string) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.versions[scope]
}

// Versions returns a copy of all scope versions
func (f *Feed) Versions() map[string]int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]int64, len(f.versions))
	for k, v := range f.versions {
		out[k] = v
	}
	return out
}

// Close shuts the feed down and closes all subscriber channels
func (f *Feed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.closed = true
	for s := range f.subs {
		close(s.ch)
	}
	f.subs = make(map[*subscriber]struct{})
}

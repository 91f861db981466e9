package watch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishBumpsVersionPerScope(t *testing.T) {
	f := NewFeed()

	assert.Equal(t, int64(1), f.Publish(ScopeCatalog))
	assert.Equal(t, int64(2), f.Publish(ScopeCatalog))
	assert.Equal(t, int64(1), f.Publish(ScopeSettings))

	assert.Equal(t, int64(2), f.Version(ScopeCatalog))
	assert.Equal(t, int64(1), f.Version(ScopeSettings))
}

func TestSeedRestoresVersionsAcrossRestart(t *testing.T) {
	f := NewFeed()
	f.Seed(ScopeCatalog, 42)
	f.Seed(ScopeSettings, 7)

	assert.Equal(t, int64(42), f.Version(ScopeCatalog))
	assert.Equal(t, int64(7), f.Version(ScopeSettings))

	// publishing continues from the restored version
	assert.Equal(t, int64(43), f.Publish(ScopeCatalog))
}

func TestSeedNeverLowersVersions(t *testing.T) {
	f := NewFeed()
	f.Seed(ScopeCatalog, 10)
	f.Seed(ScopeCatalog, 3)

	assert.Equal(t, int64(10), f.Version(ScopeCatalog))
}

func TestSeedDoesNotNotifySubscribers(t *testing.T) {
	f := NewFeed()
	updates, cancel := f.Subscribe(4)
	defer cancel()

	f.Seed(ScopeCatalog, 5)

	select {
	case u := <-updates:
		t.Fatalf("unexpected update from seed: %+v", u)
	default:
	}
}

func TestSubscriberObservesIncreasingVersions(t *testing.T) {
	f := NewFeed()
	updates, cancel := f.Subscribe(8)
	defer cancel()

	for i := 0; i < 5; i++ {
		f.Publish(ScopeCatalog)
	}

	var last int64
	for i := 0; i < 5; i++ {
		select {
		case u := <-updates:
			assert.Equal(t, ScopeCatalog, u.Scope)
			assert.Greater(t, u.Version, last)
			last = u.Version
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for update")
		}
	}
	assert.Equal(t, int64(5), last)
}

func TestSlowSubscriberDropsButVersionsAdvance(t *testing.T) {
	f := NewFeed()
	updates, cancel := f.Subscribe(1)
	defer cancel()

	for i := 0; i < 10; i++ {
		f.Publish(ScopeSettings)
	}

	// buffer of one: only the first update got through, the rest dropped
	u := <-updates
	assert.Equal(t, int64(1), u.Version)
	select {
	case extra := <-updates:
		t.Fatalf("unexpected buffered update: %+v", extra)
	default:
	}

	// the subscriber re-syncs from the version map
	assert.Equal(t, int64(10), f.Version(ScopeSettings))
}

func TestFanOutToMultipleSubscribers(t *testing.T) {
	f := NewFeed()

	a, cancelA := f.Subscribe(4)
	b, cancelB := f.Subscribe(4)
	defer cancelA()
	defer cancelB()

	f.Publish(ScopeCatalog)

	ua := <-a
	ub := <-b
	assert.Equal(t, ua, ub)
}

func TestCancelStopsDelivery(t *testing.T) {
	f := NewFeed()
	updates, cancel := f.Subscribe(4)

	cancel()
	cancel() // idempotent

	_, open := <-updates
	assert.False(t, open)

	// publishing after cancel must not panic
	f.Publish(ScopeCatalog)
}

func TestCloseClosesSubscribers(t *testing.T) {
	f := NewFeed()
	updates, cancel := f.Subscribe(4)
	defer cancel()

	f.Close()

	_, open := <-updates
	assert.False(t, open)

	// versions freeze after close
	v := f.Version(ScopeCatalog)
	f.Publish(ScopeCatalog)
	assert.Equal(t, v, f.Version(ScopeCatalog))
}

func TestVersionsSnapshot(t *testing.T) {
	f := NewFeed()
	f.Publish(ScopeCatalog)
	f.Publish(ScopeSettings)
	f.Publish(ScopeSettings)

	versions := f.Versions()
	require.Equal(t, int64(1), versions[ScopeCatalog])
	require.Equal(t, int64(2), versions[ScopeSettings])

	// mutating the copy does not affect the feed
	versions[ScopeCatalog] = 99
	assert.Equal(t, int64(1), f.Version(ScopeCatalog))
}

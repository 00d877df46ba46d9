package security

import (
	"context"
	"fmt"
	"errors"
	"maps"
	"reflect"
	"slices"
	"sync"

	domain "github.com/oshokin/catpoint/internal/domain/security"
	"github.com/oshokin/catpoint/internal/logger"
)

// StatusListener observes the engine. Callbacks run synchronously on the
// caller's goroutine, so a slow listener stalls the operation that triggered it.
//
// Listeners are kept in a set keyed by identity; implementations must be
// comparable, pointer receivers are the usual choice. Registering a
// non-comparable value fails with ErrListenerNotComparable.
type StatusListener interface {
	// Notify receives every alarm status written by the engine.
	Notify(ctx context.Context, status domain.AlarmStatus)
	// CatDetected receives the verdict of every processed image.
	CatDetected(ctx context.Context, detected bool)
	// SensorStatusChanged signals that sensors may have changed; re-query them if needed.
	SensorStatusChanged(ctx context.Context)
}

// ErrListenerNotComparable is returned for listeners that cannot be used as set keys.
var ErrListenerNotComparable = errors.New("status listener is not comparable")

// listenerSet is an unordered set of listeners.
type listenerSet struct {
	// members holds the registered listeners.
	members map[StatusListener]struct{}
	// mu protects members.
	mu sync.RWMutex
}

func newListenerSet() *listenerSet {
	return &listenerSet{
		members: make(map[StatusListener]struct{}),
	}
}

func (s *listenerSet) add(l StatusListener) error {
	if l == nil {
		return nil
	}

	if !reflect.TypeOf(l).Comparable() {
		return fmt.Errorf("%w: %T", ErrListenerNotComparable, l)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.members[l] = struct{}{}

	return nil
}

func (s *listenerSet) remove(l StatusListener) {
	if l == nil || !reflect.TypeOf(l).Comparable() {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.members, l)
}

func (s *listenerSet) len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.members)
}

// each calls fn for every listener outside the lock, so listeners may
// register or unregister from inside a callback.
// A panicking listener is logged and skipped, the rest are still called.
func (s *listenerSet) each(ctx context.Context, channel string, fn func(l StatusListener)) {
	s.mu.RLock()
	members := slices.Collect(maps.Keys(s.members))
	s.mu.RUnlock()

	for _, l := range members {
		callListener(ctx, channel, l, fn)
	}
}

func callListener(ctx context.Context, channel string, l StatusListener, fn func(l StatusListener)) {
	defer func() {
		if r := recover(); r != nil {
			logger.ErrorKV(ctx, "Status listener failed",
				"channel", channel,
				"listener", fmt.Sprintf("%T", l),
				"panic", r,
			)
		}
	}()

	fn(l)
}

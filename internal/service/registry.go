package service

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bhaveshburad729/tronix365-E-commerse-sub000/internal/domain"
	"github.com/bhaveshburad729/tronix365-E-commerse-sub000/internal/storage"
	"github.com/bhaveshburad729/tronix365-E-commerse-sub000/internal/store"
)

var (
	liveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "storefront_live_sessions",
		Help: "Sessions whose cart and wishlist are held in memory.",
	})

	sessionsEvictedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storefront_sessions_evicted_total",
		Help: "Idle sessions dropped from memory by the sweeper.",
	})
)

// Session is the cart and wishlist of one browser session or signed-in user.
type Session struct {
	ID       string
	Cart     *store.Cart
	Wishlist *store.Wishlist

	lastUsed atomic.Int64
}

func (s *Session) touch(now time.Time) {
	s.lastUsed.Store(now.UnixNano())
}

// LastUsed is when the session was last handed out by the registry.
func (s *Session) LastUsed() time.Time {
	return time.Unix(0, s.lastUsed.Load())
}

// Registry keeps live sessions in memory. A session is hydrated from the
// substrate the first time it is asked for and stays until it goes idle.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session

	carts     store.Persister[domain.CartLine]
	wishlists store.Persister[domain.Product]
	notifier  store.Notifier
	logger    *slog.Logger
	now       func() time.Time
}

// NewRegistry creates an empty registry over the given persisters.
func NewRegistry(carts store.Persister[domain.CartLine], wishlists store.Persister[domain.Product], notifier store.Notifier, logger *slog.Logger) *Registry {
	return &Registry{
		sessions:  make(map[string]*Session),
		carts:     carts,
		wishlists: wishlists,
		notifier:  notifier,
		logger:    logger,
		now:       time.Now,
	}
}

// Get returns the live session for id, hydrating it on first use.
func (r *Registry) Get(ctx context.Context, id string) *Session {
	r.mu.Lock()
	if s, ok := r.sessions[id]; ok {
		s.touch(r.now())
		r.mu.Unlock()
		return s
	}
	r.mu.Unlock()

	// Hydration reads the substrate, so it runs without the registry lock.
	// When two requests race, the first one to register wins and the other
	// copy is dropped before anything mutates it.
	fresh := &Session{
		ID:       id,
		Cart:     store.NewCart(ctx, storage.SessionKey(id, storage.CartKey), r.carts, r.notifier, r.logger),
		Wishlist: store.NewWishlist(ctx, storage.SessionKey(id, storage.WishlistKey), r.wishlists, r.logger),
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[id]; ok {
		s.touch(r.now())
		return s
	}
	fresh.touch(r.now())
	r.sessions[id] = fresh
	liveSessions.Inc()

	r.logger.DebugContext(ctx, "session hydrated",
		slog.String("session_id", id),
		slog.Int("cart_lines", len(fresh.Cart.Items())),
		slog.Int("wishlist_items", fresh.Wishlist.Len()),
	)
	return fresh
}

// Len is the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep drops sessions unused for longer than idle and returns how many
// were dropped. Their state is already in the substrate.
func (r *Registry) Sweep(idle time.Duration) int {
	cutoff := r.now().Add(-idle)

	r.mu.Lock()
	defer r.mu.Unlock()

	evicted := 0
	for id, s := range r.sessions {
		if s.LastUsed().Before(cutoff) {
			delete(r.sessions, id)
			evicted++
		}
	}
	if evicted > 0 {
		liveSessions.Sub(float64(evicted))
		sessionsEvictedTotal.Add(float64(evicted))
	}
	return evicted
}

// RunSweeper sweeps every interval until ctx is cancelled.
func (r *Registry) RunSweeper(ctx context.Context, interval, idle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(idle); n > 0 {
				r.logger.InfoContext(ctx, "evicted idle sessions",
					slog.Int("evicted", n),
					slog.Int("live", r.Len()),
				)
			}
		}
	}
}

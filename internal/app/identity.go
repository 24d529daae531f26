package app

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"web3-quiz-service/internal/domain"
)

// AuthSession is what the identity provider returns on sign-in.
type AuthSession struct {
	AccessToken  string          `json:"accessToken"`
	RefreshToken string          `json:"refreshToken,omitempty"`
	ExpiresIn    int             `json:"expiresIn"`
	User         domain.Identity `json:"user"`
}

// IdentityProvider is the hosted auth service.
type IdentityProvider interface {
	// CurrentUser returns domain.ErrNoIdentity when the token has no live session.
	CurrentUser(ctx context.Context, token string) (domain.Identity, error)
	SignUp(ctx context.Context, email, password, name, redirectTo string) (domain.Identity, error)
	SignIn(ctx context.Context, email, password string) (AuthSession, error)
	SignOut(ctx context.Context, token string) error
	OAuthURL(provider, redirectTo string) string
}

// IdentityStore keeps resolved identities keyed by a token digest.
type IdentityStore interface {
	Load(ctx context.Context, key string) (domain.Identity, bool, error)
	Save(ctx context.Context, key string, id domain.Identity, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdentityEvent reports a sign-in or sign-out seen by the cache.
type IdentityEvent struct {
	UserID    string           `json:"userId"`
	Identity  *domain.Identity `json:"identity,omitempty"`
	SignedOut bool             `json:"signedOut"`
}

// IdentityCache is the process-wide answer to "who is logged in". Lookups go
// to the store first and fall back to the provider; concurrent misses for the
// same token share one provider call.
type IdentityCache struct {
	store    IdentityStore
	provider IdentityProvider
	ttl      time.Duration
	log      zerolog.Logger
	sf       singleflight.Group

	mu          sync.Mutex
	subscribers map[chan IdentityEvent]struct{}
	flights     map[string]*identityFlight
}

// identityFlight tracks provider lookups in progress for one key. Invalidate
// bumps gen so lookups that started earlier do not repopulate the store.
type identityFlight struct {
	gen    uint64
	active int
}

func NewIdentityCache(store IdentityStore, provider IdentityProvider, ttl time.Duration, log zerolog.Logger) *IdentityCache {
	return &IdentityCache{
		store:       store,
		provider:    provider,
		ttl:         ttl,
		log:         log,
		subscribers: make(map[chan IdentityEvent]struct{}),
		flights:     make(map[string]*identityFlight),
	}
}

// Current resolves the identity behind token.
func (c *IdentityCache) Current(ctx context.Context, token string) (domain.Identity, error) {
	if token == "" {
		return domain.Identity{}, domain.ErrNoIdentity
	}
	key := tokenKey(token)

	if id, ok, err := c.store.Load(ctx, key); err == nil && ok {
		return id, nil
	} else if err != nil {
		c.log.Warn().Err(err).Msg("identity store lookup failed")
	}

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		gen := c.beginFlight(key)
		id, err := c.provider.CurrentUser(ctx, token)
		if err != nil {
			c.endFlight(key, gen)
			return domain.Identity{}, err
		}
		saved := false
		if !c.flightStale(key, gen) {
			if err := c.store.Save(ctx, key, id, c.ttl); err != nil {
				c.log.Warn().Err(err).Msg("identity store save failed")
			} else {
				saved = true
			}
		}
		if c.endFlight(key, gen) {
			// signed out while the provider answered
			if saved {
				if err := c.store.Delete(ctx, key); err != nil {
					c.log.Warn().Err(err).Msg("identity store delete failed")
				}
			}
			return domain.Identity{}, domain.ErrNoIdentity
		}
		c.publish(IdentityEvent{UserID: id.ID, Identity: &id})
		return id, nil
	})
	if err != nil {
		return domain.Identity{}, err
	}
	return result.(domain.Identity), nil
}

// Remember stores an identity obtained from a fresh sign-in.
func (c *IdentityCache) Remember(ctx context.Context, token string, id domain.Identity) {
	if err := c.store.Save(ctx, tokenKey(token), id, c.ttl); err != nil {
		c.log.Warn().Err(err).Msg("identity store save failed")
	}
	c.publish(IdentityEvent{UserID: id.ID, Identity: &id})
}

// Invalidate forgets token, typically on sign-out.
func (c *IdentityCache) Invalidate(ctx context.Context, token string) {
	if token == "" {
		return
	}
	key := tokenKey(token)
	c.mu.Lock()
	if f, ok := c.flights[key]; ok {
		f.gen++
	}
	c.mu.Unlock()
	id, ok, _ := c.store.Load(ctx, key)
	if err := c.store.Delete(ctx, key); err != nil {
		c.log.Warn().Err(err).Msg("identity store delete failed")
	}
	c.sf.Forget(key)
	ev := IdentityEvent{SignedOut: true}
	if ok {
		ev.UserID = id.ID
	}
	c.publish(ev)
}

func (c *IdentityCache) beginFlight(key string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	f, ok := c.flights[key]
	if !ok {
		f = &identityFlight{}
		c.flights[key] = f
	}
	f.active++
	return f.gen
}

func (c *IdentityCache) flightStale(key string, gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	f, ok := c.flights[key]
	return !ok || f.gen != gen
}

// endFlight reports whether key was invalidated since the flight began.
func (c *IdentityCache) endFlight(key string, gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	f, ok := c.flights[key]
	if !ok {
		return true
	}
	stale := f.gen != gen
	if f.active--; f.active == 0 {
		delete(c.flights, key)
	}
	return stale
}

// Subscribe returns a channel of identity changes. The caller must invoke cancel.
func (c *IdentityCache) Subscribe() (<-chan IdentityEvent, func()) {
	ch := make(chan IdentityEvent, 8)
	c.mu.Lock()
	c.subscribers[ch] = struct{}{}
	c.mu.Unlock()

	cancel := func() {
		c.mu.Lock()
		if _, ok := c.subscribers[ch]; ok {
			delete(c.subscribers, ch)
			close(ch)
		}
		c.mu.Unlock()
	}
	return ch, cancel
}

func (c *IdentityCache) publish(ev IdentityEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for ch := range c.subscribers {
		select {
		case ch <- ev:
		default:
			c.log.Warn().Str("user", ev.UserID).Msg("identity subscriber is full, dropping event")
		}
	}
}

// IsNoIdentity reports whether err means "nobody is logged in".
func IsNoIdentity(err error) bool {
	return errors.Is(err, domain.ErrNoIdentity)
}

func tokenKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

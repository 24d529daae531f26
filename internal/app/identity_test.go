package app_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"web3-quiz-service/internal/app"
	"web3-quiz-service/internal/domain"
	"web3-quiz-service/internal/infra/memory"
)

func newTestCache(p app.IdentityProvider) *app.IdentityCache {
	return app.NewIdentityCache(memory.NewIdentityStore(), p, time.Minute, zerolog.Nop())
}

func TestIdentityCacheResolvesOnce(t *testing.T) {
	ctx := context.Background()
	provider := newFakeIdentityProvider()
	provider.users["tok"] = domain.Identity{ID: "U001", Email: "a@b.c"}
	cache := newTestCache(provider)

	for i := 0; i < 3; i++ {
		id, err := cache.Current(ctx, "tok")
		if err != nil || id.ID != "U001" {
			t.Fatalf("unexpected identity %+v (err %v)", id, err)
		}
	}
	if n := provider.lookupCount(); n != 1 {
		t.Fatalf("expected one provider lookup, got %d", n)
	}
}

func TestIdentityCacheNoIdentity(t *testing.T) {
	cache := newTestCache(newFakeIdentityProvider())
	if _, err := cache.Current(context.Background(), ""); !app.IsNoIdentity(err) {
		t.Fatalf("expected no identity for empty token, got %v", err)
	}
	if _, err := cache.Current(context.Background(), "unknown"); !app.IsNoIdentity(err) {
		t.Fatalf("expected no identity for unknown token, got %v", err)
	}
}

type blockingProvider struct {
	*fakeIdentityProvider
	release chan struct{}
	entered chan struct{}
}

func (p *blockingProvider) CurrentUser(ctx context.Context, token string) (domain.Identity, error) {
	select {
	case p.entered <- struct{}{}:
	default:
	}
	<-p.release
	return p.fakeIdentityProvider.CurrentUser(ctx, token)
}

func TestIdentityCacheSharesConcurrentLookups(t *testing.T) {
	inner := newFakeIdentityProvider()
	inner.users["tok"] = domain.Identity{ID: "U001"}
	provider := &blockingProvider{fakeIdentityProvider: inner, release: make(chan struct{})}
	cache := newTestCache(provider)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := cache.Current(context.Background(), "tok"); err != nil {
				t.Errorf("current failed: %v", err)
			}
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(provider.release)
	wg.Wait()

	if n := inner.lookupCount(); n != 1 {
		t.Fatalf("expected concurrent lookups to share one call, got %d", n)
	}
}

func TestIdentityCacheInvalidateDuringLookupIsNotCached(t *testing.T) {
	ctx := context.Background()
	inner := newFakeIdentityProvider()
	inner.users["tok"] = domain.Identity{ID: "U001"}
	provider := &blockingProvider{
		fakeIdentityProvider: inner,
		release:              make(chan struct{}),
		entered:              make(chan struct{}, 1),
	}
	cache := newTestCache(provider)

	errc := make(chan error, 1)
	go func() {
		_, err := cache.Current(ctx, "tok")
		errc <- err
	}()
	<-provider.entered
	cache.Invalidate(ctx, "tok")
	close(provider.release)

	if err := <-errc; !errors.Is(err, domain.ErrNoIdentity) {
		t.Fatalf("expected signed-out lookup to report no identity, got %v", err)
	}
	if id, err := cache.Current(ctx, "tok"); err != nil || id.ID != "U001" {
		t.Fatalf("unexpected identity %+v (err %v)", id, err)
	}
	if n := inner.lookupCount(); n != 2 {
		t.Fatalf("signed-out identity must not be served from the store, got %d lookups", n)
	}
}

func TestIdentityCacheRememberInvalidateAndSubscribe(t *testing.T) {
	ctx := context.Background()
	provider := newFakeIdentityProvider()
	cache := newTestCache(provider)
	events, cancel := cache.Subscribe()
	defer cancel()

	cache.Remember(ctx, "fresh", domain.Identity{ID: "U002"})
	if ev := <-events; ev.UserID != "U002" || ev.SignedOut {
		t.Fatalf("unexpected sign-in event %+v", ev)
	}
	if id, err := cache.Current(ctx, "fresh"); err != nil || id.ID != "U002" {
		t.Fatalf("remembered identity not served: %+v %v", id, err)
	}
	if provider.lookupCount() != 0 {
		t.Fatalf("remembered identity must not hit the provider")
	}

	cache.Invalidate(ctx, "fresh")
	if ev := <-events; !ev.SignedOut || ev.UserID != "U002" {
		t.Fatalf("unexpected sign-out event %+v", ev)
	}
	if _, err := cache.Current(ctx, "fresh"); !app.IsNoIdentity(err) {
		t.Fatalf("expected identity gone after invalidate, got %v", err)
	}
}

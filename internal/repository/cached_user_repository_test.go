package repository

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/ticketdesk/cookie-auth/internal/domain"
)

type countingRepo struct {
	*MemoryUserRepository
	lookups     int
	credentials int
}

func (c *countingRepo) GetCredentials(ctx context.Context, username string) (*domain.User, error) {
	c.credentials++
	return c.MemoryUserRepository.GetCredentials(ctx, username)
}

func (c *countingRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	c.lookups++
	return c.MemoryUserRepository.GetByUsername(ctx, username)
}

func newCache(t *testing.T, ttl time.Duration) (*miniredis.Miniredis, *countingRepo, UserRepository) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	base := &countingRepo{MemoryUserRepository: NewMemoryUserRepository()}
	return mr, base, NewCachedUserRepository(base, client, ttl, nil)
}

func seed(t *testing.T, repo UserRepository, username string) *domain.User {
	t.Helper()
	user := &domain.User{Username: username, Email: username + "@example.com", PasswordHash: "hash", Roles: []domain.Role{domain.RoleUser}}
	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("create %s: %v", username, err)
	}
	return user
}

func TestCachedGetByUsernameReadsThrough(t *testing.T) {
	mr, base, repo := newCache(t, time.Minute)
	created := seed(t, repo, "alice")

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		got, err := repo.GetByUsername(ctx, "alice")
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got.ID != created.ID || !got.HasAnyRole(domain.RoleUser) {
			t.Fatalf("unexpected user %+v", got)
		}
	}
	if base.lookups != 1 {
		t.Fatalf("expected one backend lookup, got %d", base.lookups)
	}
	if !mr.Exists(cacheKey("alice")) {
		t.Fatal("expected cache entry")
	}
	if ttl := mr.TTL(cacheKey("alice")); ttl != time.Minute {
		t.Fatalf("expected ttl 1m, got %s", ttl)
	}
}

func TestCachedEntryOmitsPasswordHash(t *testing.T) {
	mr, base, repo := newCache(t, time.Minute)
	seed(t, repo, "frank")

	ctx := context.Background()
	if _, err := repo.GetByUsername(ctx, "frank"); err != nil {
		t.Fatalf("get: %v", err)
	}
	raw, err := mr.Get(cacheKey("frank"))
	if err != nil {
		t.Fatalf("read cache: %v", err)
	}
	if strings.Contains(raw, "hash") || strings.Contains(raw, "password") {
		t.Fatalf("cache entry leaks credentials: %s", raw)
	}

	cached, err := repo.GetByUsername(ctx, "frank")
	if err != nil || cached.PasswordHash != "" {
		t.Fatalf("expected cached user without hash, got %+v %v", cached, err)
	}

	for i := 0; i < 2; i++ {
		creds, err := repo.GetCredentials(ctx, "frank")
		if err != nil || creds.PasswordHash != "hash" {
			t.Fatalf("get credentials: %+v %v", creds, err)
		}
	}
	if base.credentials != 2 {
		t.Fatalf("credentials must bypass the cache, got %d backend reads", base.credentials)
	}
}

func TestCachedEntryExpires(t *testing.T) {
	mr, base, repo := newCache(t, time.Minute)
	seed(t, repo, "bob")

	ctx := context.Background()
	if _, err := repo.GetByUsername(ctx, "bob"); err != nil {
		t.Fatalf("get: %v", err)
	}
	mr.FastForward(2 * time.Minute)
	if _, err := repo.GetByUsername(ctx, "bob"); err != nil {
		t.Fatalf("get: %v", err)
	}
	if base.lookups != 2 {
		t.Fatalf("expected expiry to force a second lookup, got %d", base.lookups)
	}
}

func TestCachedMissIsNotCached(t *testing.T) {
	mr, _, repo := newCache(t, time.Minute)

	_, err := repo.GetByUsername(context.Background(), "ghost")
	if !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	if mr.Exists(cacheKey("ghost")) {
		t.Fatal("negative lookups must not be cached")
	}
}

func TestCachedCreateInvalidatesStaleEntry(t *testing.T) {
	mr, _, repo := newCache(t, time.Minute)

	stale, _ := json.Marshal(domain.User{ID: "stale", Username: "carol"})
	if err := mr.Set(cacheKey("carol"), string(stale)); err != nil {
		t.Fatalf("seed cache: %v", err)
	}
	created := seed(t, repo, "carol")

	got, err := repo.GetByUsername(context.Background(), "carol")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != created.ID {
		t.Fatalf("expected fresh user %s, got %s", created.ID, got.ID)
	}
}

func TestCachedFallsBackWhenRedisDown(t *testing.T) {
	mr, base, repo := newCache(t, time.Minute)
	seed(t, repo, "dave")
	mr.Close()

	got, err := repo.GetByUsername(context.Background(), "dave")
	if err != nil {
		t.Fatalf("expected fallback to backend, got %v", err)
	}
	if got.Username != "dave" || base.lookups != 1 {
		t.Fatalf("unexpected result %+v after %d lookups", got, base.lookups)
	}
}

func TestCachedCorruptEntryIsDropped(t *testing.T) {
	mr, base, repo := newCache(t, time.Minute)
	seed(t, repo, "erin")
	if err := mr.Set(cacheKey("erin"), "{not json"); err != nil {
		t.Fatalf("seed cache: %v", err)
	}

	if _, err := repo.GetByUsername(context.Background(), "erin"); err != nil {
		t.Fatalf("get: %v", err)
	}
	if base.lookups != 1 {
		t.Fatalf("expected backend lookup after corrupt entry, got %d", base.lookups)
	}
}

func TestNewCachedUserRepositoryDisabled(t *testing.T) {
	base := NewMemoryUserRepository()
	if got := NewCachedUserRepository(base, nil, time.Minute, nil); got != UserRepository(base) {
		t.Fatal("expected nil client to disable caching")
	}
}

package goCred_test

import (
	"context"
	"encoding/hex"
	"errors"
	"testing"

	goCred "github.com/MrEthical07/goCred"
	"github.com/MrEthical07/goCred/password"
	"github.com/MrEthical07/goCred/store/redisstore"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

func newRedisStore(t *testing.T) *redisstore.Store {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return redisstore.New(rdb, "it")
}

func TestEngineMigratesUserTableOnRedis(t *testing.T) {
	ctx := context.Background()
	store := newRedisStore(t)

	cfg := goCred.DefaultConfig()
	cfg.Password.Iterations = 2000
	cfg.Legacy.DotPairIterations = 100
	legacy := password.LegacyParams{Digest: cfg.Legacy.DotPairDigest, Iterations: cfg.Legacy.DotPairIterations}

	engine, err := goCred.New().WithConfig(cfg).WithUserProvider(store).Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer engine.Close()

	bc, _ := bcrypt.GenerateFromPassword([]byte("pw-bcrypt"), bcrypt.MinCost)
	saltFirst, _ := password.EncodeDotPair("pw-salt-first", "1a2b3c4d", 32, legacy)
	hashFirst := hex.EncodeToString(password.DeriveLegacy("pw-hash-first", "cafe", 16, legacy)) + ".cafe"
	current, _ := engine.HashPassword("pw-current")

	seed := []struct {
		username, email, stored, plain string
	}{
		{"bob", "bob@example.com", string(bc), "pw-bcrypt"},
		{"carol", "carol@example.com", saltFirst, "pw-salt-first"},
		{"dave", "", hashFirst, "pw-hash-first"},
		{"erin", "erin@example.com", current, "pw-current"},
	}
	for _, s := range seed {
		if _, err := store.Create(ctx, redisstore.NewUser{Username: s.username, Email: s.email, PasswordHash: s.stored}); err != nil {
			t.Fatalf("Create %s: %v", s.username, err)
		}
	}

	for _, s := range seed {
		identifier := s.username
		if s.email != "" {
			identifier = s.email
		}
		res, err := engine.Authenticate(ctx, identifier, s.plain)
		if err != nil {
			t.Fatalf("Authenticate %s: %v", identifier, err)
		}
		wantMigration := goCred.MigrationApplied
		if s.username == "erin" {
			wantMigration = goCred.MigrationNotNeeded
		}
		if res.Migration != wantMigration {
			t.Fatalf("%s: expected %s, got %s", s.username, wantMigration, res.Migration)
		}
	}

	err = store.ForEach(ctx, func(u goCred.UserRecord) error {
		if engine.NeedsMigration(u.PasswordHash) {
			t.Fatalf("user %s still holds a legacy credential", u.Username)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("ForEach: %v", err)
	}

	if _, err := engine.Authenticate(ctx, "bob", "pw-bcrypt"); err != nil {
		t.Fatalf("login after migration: %v", err)
	}
}

func TestEngineRedisOutageIsLookupFailure(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer rdb.Close()
	store := redisstore.New(rdb, "it")

	cfg := goCred.DefaultConfig()
	cfg.Password.Iterations = 2000
	engine, err := goCred.New().WithConfig(cfg).WithUserProvider(store).Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer engine.Close()

	mr.Close()

	_, err = engine.Authenticate(context.Background(), "alice", "pw")
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, goCred.ErrUserLookupFailed) || !errors.Is(err, redisstore.ErrRedisUnavailable) {
		t.Fatalf("expected wrapped lookup failure, got %v", err)
	}
}

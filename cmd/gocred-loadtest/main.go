package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"flag"
	"fmt"
	"log/slog"
	mrand "math/rand"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	goCred "github.com/MrEthical07/goCred"
	"github.com/MrEthical07/goCred/password"
	"github.com/MrEthical07/goCred/store/pgstore"
	"github.com/MrEthical07/goCred/store/redisstore"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

// userTable is the seeding and auditing surface shared by both stores.
type userTable interface {
	goCred.UserProvider
	create(ctx context.Context, username, email, passwordHash string) error
	ForEach(ctx context.Context, fn func(goCred.UserRecord) error) error
}

type redisTable struct{ *redisstore.Store }

func (t redisTable) create(ctx context.Context, username, email, passwordHash string) error {
	_, err := t.Create(ctx, redisstore.NewUser{Username: username, Email: email, PasswordHash: passwordHash})
	return err
}

type pgTable struct{ *pgstore.Store }

func (t pgTable) create(ctx context.Context, username, email, passwordHash string) error {
	_, err := t.Create(ctx, pgstore.NewUser{Username: username, Email: email, PasswordHash: passwordHash})
	return err
}

type seededUser struct {
	identifier string
	plain      string
	form       goCred.CredentialForm
}

func main() {
	var (
		users       = flag.Int("users", 2000, "number of users to seed")
		concurrency = flag.Int("concurrency", 64, "number of concurrent workers")
		ops         = flag.Int("ops", 20000, "authenticate calls to issue")
		wrongRatio  = flag.Float64("wrong-ratio", 0.1, "fraction of calls using a wrong password")
		iterations  = flag.Uint("iterations", 10000, "canonical PBKDF2 iterations for new credentials")
		slots       = flag.Int("derivations", 0, "max concurrent key derivations (0 = GOMAXPROCS)")
		redisAddr   = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
		pgDSN       = flag.String("pg-dsn", "", "postgres DSN; when set, users are stored in postgres instead of redis")
		prefix      = flag.String("prefix", "gcload", "redis key prefix")
		verbose     = flag.Bool("v", false, "log engine warnings to stderr")
	)
	flag.Parse()

	if *users <= 0 || *concurrency <= 0 || *ops <= 0 {
		fmt.Fprintln(os.Stderr, "users, concurrency, and ops must be > 0")
		os.Exit(2)
	}

	ctx := context.Background()

	table, cleanup, err := openTable(ctx, *pgDSN, *redisAddr, *prefix)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open store: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	cfg := goCred.DefaultConfig()
	cfg.Password.Iterations = uint32(*iterations)
	cfg.Security.MaxConcurrentDerivations = *slots
	cfg.Metrics.Enabled = true
	cfg.Metrics.EnableLatencyHistograms = true

	builder := goCred.New().WithConfig(cfg).WithUserProvider(table)
	if *verbose {
		builder = builder.WithLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))
	}
	engine, err := builder.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "build engine: %v\n", err)
		os.Exit(1)
	}
	defer engine.Close()

	for _, w := range cfg.Lint().AtLeast(goCred.LintWarn) {
		fmt.Printf("config %s: %s\n", w.Severity, w.Message)
	}

	fmt.Printf("seeding %d users...\n", *users)
	startSeed := time.Now()
	seeded, err := seed(ctx, table, *users, password.LegacyParams{
		Digest:     cfg.Legacy.DotPairDigest,
		Iterations: cfg.Legacy.DotPairIterations,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "seed failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("seeded in %s\n", time.Since(startSeed).Round(time.Millisecond))

	stats, migrated := runLoginPhase(ctx, engine, seeded, *ops, *concurrency, *wrongRatio)

	// Log every user in once so the final sweep can expect a fully canonical table.
	for _, u := range seeded {
		res, err := engine.Authenticate(ctx, u.identifier, u.plain)
		if err != nil {
			fmt.Fprintf(os.Stderr, "final login for %s failed: %v\n", u.identifier, err)
			os.Exit(1)
		}
		if res.Migration == goCred.MigrationApplied {
			migrated[res.Form]++
		}
	}

	remaining := 0
	err = table.ForEach(ctx, func(u goCred.UserRecord) error {
		if engine.NeedsMigration(u.PasswordHash) {
			remaining++
		}
		return nil
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "sweep failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("---- results ----")
	printStats("authenticate", stats)
	for _, form := range []goCred.CredentialForm{goCred.FormLegacyLibrary, goCred.FormLegacyDotPair, goCred.FormCanonical} {
		fmt.Printf("migrated %s: %d\n", form, migrated[form])
	}
	snap := engine.MetricsSnapshot()
	fmt.Printf("counters: success=%d failure=%d migration_failed=%d\n",
		snap.Counters[goCred.MetricAuthSuccess],
		snap.Counters[goCred.MetricAuthFailure],
		snap.Counters[goCred.MetricMigrationFailed],
	)
	fmt.Printf("non-canonical credentials remaining: %d\n", remaining)
	if remaining != 0 {
		os.Exit(1)
	}
}

func openTable(ctx context.Context, dsn, redisAddr, prefix string) (userTable, func(), error) {
	if dsn != "" {
		db, err := pgstore.Open(ctx, dsn)
		if err != nil {
			return nil, nil, err
		}
		fmt.Println("using postgres")
		return pgTable{pgstore.New(db)}, func() { _ = db.Close() }, nil
	}

	addr := redisAddr
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}

	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			return nil, nil, fmt.Errorf("start miniredis: %w", err)
		}
		client := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{mr.Addr()}})
		fmt.Printf("using miniredis at %s\n", mr.Addr())
		return redisTable{redisstore.New(client, prefix)}, func() {
			_ = client.Close()
			mr.Close()
		}, nil
	}

	client := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{addr}})
	store := redisstore.New(client, prefix)
	if err := store.Ping(ctx); err != nil {
		_ = client.Close()
		return nil, nil, err
	}
	fmt.Printf("using redis at %s\n", addr)
	return redisTable{store}, func() { _ = client.Close() }, nil
}

// seed writes users round-robin across bcrypt, both dot-pair orientations and a weak
// canonical encoding.
func seed(ctx context.Context, table userTable, n int, legacy password.LegacyParams) ([]seededUser, error) {
	weak, err := password.NewHasher(password.Config{
		Algorithm:  password.AlgorithmPBKDF2SHA256,
		Iterations: 1000,
		KeyLength:  32,
		SaltLength: 16,
		Legacy:     legacy,
	})
	if err != nil {
		return nil, err
	}

	out := make([]seededUser, 0, n)
	for i := 0; i < n; i++ {
		username := fmt.Sprintf("user%06d", i)
		plain := fmt.Sprintf("pw-%d-%s", i, randomHex(4))

		var (
			stored string
			form   goCred.CredentialForm
		)
		switch i % 4 {
		case 0:
			b, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.MinCost)
			if err != nil {
				return nil, err
			}
			stored, form = string(b), goCred.FormLegacyLibrary
		case 1:
			stored, err = password.EncodeDotPair(plain, randomHex(8), 32, legacy)
			if err != nil {
				return nil, err
			}
			form = goCred.FormLegacyDotPair
		case 2:
			salt := randomHex(8)
			stored = hex.EncodeToString(password.DeriveLegacy(plain, salt, 32, legacy)) + "." + salt
			form = goCred.FormLegacyDotPair
		default:
			stored, err = weak.Hash(plain)
			if err != nil {
				return nil, err
			}
			form = goCred.FormCanonical
		}

		email := ""
		identifier := username
		if i%2 == 0 {
			email = username + "@example.com"
			identifier = email
		}
		if err := table.create(ctx, username, email, stored); err != nil {
			return nil, err
		}
		out = append(out, seededUser{identifier: identifier, plain: plain, form: form})
	}
	return out, nil
}

func runLoginPhase(ctx context.Context, engine *goCred.Engine, users []seededUser, ops, concurrency int, wrongRatio float64) (phaseStats, map[goCred.CredentialForm]int) {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		migrated  = map[goCred.CredentialForm]int{}
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := mrand.New(mrand.NewSource(time.Now().UnixNano() + int64(worker)*7919))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				u := users[r.Intn(len(users))]
				plain := u.plain
				wrong := r.Float64() < wrongRatio
				if wrong {
					plain += "-wrong"
				}

				t0 := time.Now()
				res, err := engine.Authenticate(ctx, u.identifier, plain)
				d := time.Since(t0)
				if (err != nil) != wrong {
					atomic.AddInt64(&failures, 1)
				}

				mu.Lock()
				latencies = append(latencies, d)
				if res != nil && res.Migration == goCred.MigrationApplied {
					migrated[res.Form]++
				}
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	total := time.Since(start)
	return computeStats(total, latencies, failures), migrated
}

type phaseStats struct {
	total    time.Duration
	ops      int
	// calls whose outcome disagreed with the password supplied
	failures int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
		opsPerS:  float64(len(samples)) / total.Seconds(),
	}
}

func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	idx := (len(samples) - 1) * p / 100
	return samples[idx]
}

func printStats(name string, s phaseStats) {
	fmt.Printf("%s: ops=%d unexpected=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.failures,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}

func randomHex(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b)
}

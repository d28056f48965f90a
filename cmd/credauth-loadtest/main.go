package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	credauth "github.com/hexfray/credauth"
	"github.com/hexfray/credauth/password"
	"github.com/hexfray/credauth/session"
	"github.com/hexfray/credauth/userstore"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func main() {
	var (
		users       = flag.Int("users", 10000, "number of users to seed")
		concurrency = flag.Int("concurrency", 128, "number of concurrent workers")
		ops         = flag.Int("ops", 50000, "operations per phase (sign-in + session)")
		wrongRate   = flag.Int("wrong-rate", 10, "percent of sign-ins using a wrong password")
		redisAddr   = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
	)
	flag.Parse()

	if *users <= 0 || *concurrency <= 0 || *ops <= 0 || *wrongRate < 0 || *wrongRate > 100 {
		fmt.Fprintln(os.Stderr, "users, concurrency, and ops must be > 0; wrong-rate must be 0..100")
		os.Exit(2)
	}

	ctx := context.Background()

	addr := *redisAddr
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}

	var (
		cleanup func()
		client  redis.UniversalClient
	)
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start miniredis: %v\n", err)
			os.Exit(1)
		}
		addr = mr.Addr()
		client = redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs: []string{addr},
		})
		cleanup = func() {
			_ = client.Close()
			mr.Close()
		}
		fmt.Printf("using miniredis at %s\n", addr)
	} else {
		client = redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs: []string{addr},
		})
		cleanup = func() { _ = client.Close() }
		fmt.Printf("using redis at %s\n", addr)
	}
	defer cleanup()

	// Low-cost argon2 parameters: this tool measures store and engine
	// overhead, not KDF hardness.
	cfg := credauth.DefaultConfig()
	cfg.Password = credauth.PasswordConfig{
		Memory:      8 * 1024,
		Time:        1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	}
	cfg.Audit.Enabled = false

	store, err := userstore.NewRedis(client, userstore.RedisConfig{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "user store: %v\n", err)
		os.Exit(1)
	}

	hasher, err := password.New(password.Config{
		Memory:      cfg.Password.Memory,
		Time:        cfg.Password.Time,
		Parallelism: cfg.Password.Parallelism,
		SaltLength:  cfg.Password.SaltLength,
		KeyLength:   cfg.Password.KeyLength,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "argon2 init: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("seeding %d users...\n", *users)
	startSeed := time.Now()
	emails := make([]string, *users)
	// One digest for everyone keeps seeding cheap; each record still
	// gets its own email and id.
	seedHash, err := hasher.Hash("load-test-password")
	if err != nil {
		fmt.Fprintf(os.Stderr, "argon2 hash: %v\n", err)
		os.Exit(1)
	}
	for i := 0; i < *users; i++ {
		email := fmt.Sprintf("user-%d@load.test", i)
		emails[i] = email
		if _, err := store.Insert(ctx, credauth.UserRecord{
			Email:        email,
			Name:         fmt.Sprintf("User %d", i),
			Provider:     credauth.ProviderCredentials,
			PasswordHash: seedHash,
		}); err != nil {
			fmt.Fprintf(os.Stderr, "seed failed: %v\n", err)
			os.Exit(1)
		}
	}
	fmt.Printf("seeded in %s\n", time.Since(startSeed).Round(time.Millisecond))

	engine, err := credauth.New().
		WithConfig(cfg).
		WithRedis(client).
		WithUserStore(store).
		Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "engine build: %v\n", err)
		os.Exit(1)
	}
	defer engine.Close()

	sessions, err := session.NewStore(client, session.Config{TTL: 24 * time.Hour})
	if err != nil {
		fmt.Fprintf(os.Stderr, "session store: %v\n", err)
		os.Exit(1)
	}

	signInStats := runSignInPhase(ctx, engine, emails, *ops, *concurrency, *wrongRate)
	sessionStats := runSessionPhase(ctx, sessions, *ops, *concurrency)

	fmt.Println("---- results ----")
	printStats("sign-in", signInStats)
	printStats("session", sessionStats)

	snap := engine.MetricsSnapshot()
	fmt.Println("---- engine metrics ----")
	fmt.Printf("sign_in_success=%d sign_in_failure=%d rate_limited=%d store_failure=%d\n",
		snap.Counters[credauth.MetricSignInSuccess],
		snap.Counters[credauth.MetricSignInFailure],
		snap.Counters[credauth.MetricSignInRateLimited],
		snap.Counters[credauth.MetricStoreFailure],
	)
}

func runSignInPhase(ctx context.Context, engine *credauth.Engine, emails []string, ops, concurrency, wrongRate int) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*7919))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				email := emails[r.Intn(len(emails))]
				plaintext := "load-test-password"
				expectFailure := r.Intn(100) < wrongRate
				if expectFailure {
					plaintext = "not-the-password"
				}

				t0 := time.Now()
				_, err := engine.SignIn(ctx, email, plaintext)
				d := time.Since(t0)
				if (err != nil) != expectFailure {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	total := time.Since(start)
	return computeStats(total, latencies, failures)
}

func runSessionPhase(ctx context.Context, store *session.Store, ops, concurrency int) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				userID := fmt.Sprintf("u-%d-%d", worker, i)

				t0 := time.Now()
				sess, err := store.Create(ctx, userID, "credentials")
				if err == nil {
					_, err = store.Get(ctx, sess.ID)
				}
				d := time.Since(t0)
				if err != nil {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	total := time.Since(start)
	return computeStats(total, latencies, failures)
}

type phaseStats struct {
	total    time.Duration
	ops      int
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
	fmt.Printf("%s: ops=%d failures=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
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

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

	"github.com/MrEthical07/goCareer/capability"
	"github.com/MrEthical07/goCareer/guard"
	"github.com/MrEthical07/goCareer/session"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

var (
	routes = []string{"/dashboard", "/jobs", "/formations/12", "/profile", "/manage-jobs", "/manage-formations", "/admin", "/login"}
	roles  = []string{"user", "content_creator", "admin"}
)

type sessionState struct {
	store *session.Store
	guard *guard.Guard
	role  int
	mu    sync.Mutex
}

func main() {
	var (
		sessions    = flag.Int("sessions", 10000, "number of sessions to seed")
		concurrency = flag.Int("concurrency", 256, "number of concurrent workers")
		ops         = flag.Int("ops", 200000, "operations per phase (evaluate + role churn)")
		redisAddr   = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
		prefix      = flag.String("prefix", "gclt", "session key prefix")
	)
	flag.Parse()

	if *sessions <= 0 || *concurrency <= 0 || *ops <= 0 {
		fmt.Fprintln(os.Stderr, "sessions, concurrency, and ops must be > 0")
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

	rm, err := capability.Default()
	if err != nil {
		fmt.Fprintf(os.Stderr, "roles: %v\n", err)
		os.Exit(1)
	}

	states := make([]sessionState, *sessions)
	fmt.Printf("seeding %d sessions...\n", *sessions)
	startSeed := time.Now()
	for i := range states {
		backend := session.NewRedisBackend(client, fmt.Sprintf("%s:%d", *prefix, i), 24*time.Hour)
		store := session.NewStore(backend)
		g, err := guard.New(store, rm, guard.DefaultPolicy())
		if err != nil {
			fmt.Fprintf(os.Stderr, "guard: %v\n", err)
			os.Exit(1)
		}
		role := i % len(roles)
		if err := store.SetSession(ctx, fmt.Sprintf("tok-%d", i), identityFor(i, roles[role])); err != nil {
			fmt.Fprintf(os.Stderr, "seed failed: %v\n", err)
			os.Exit(1)
		}
		states[i].store = store
		states[i].guard = g
		states[i].role = role
	}
	fmt.Printf("seeded in %s\n", time.Since(startSeed).Round(time.Millisecond))

	evaluateStats := runPhase(*ops, *concurrency, 7919, evaluateOp(ctx, states))
	churnStats := runPhase(*ops, *concurrency, 6151, churnOp(ctx, states))

	fmt.Println("---- results ----")
	printStats("evaluate", evaluateStats)
	printStats("role-churn", churnStats)
}

// opFunc runs one operation and reports its latency and whether it held.
type opFunc func(r *rand.Rand, worker, i int) (time.Duration, bool)

func runPhase(ops, concurrency int, seed int64, op opFunc) phaseStats {
	var (
		wg       sync.WaitGroup
		cursor   atomic.Int64
		failures atomic.Int64
		samples  = make([][]time.Duration, concurrency)
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*seed))
			for {
				i := int(cursor.Add(1)) - 1
				if i >= ops {
					return
				}
				d, ok := op(r, worker, i)
				if !ok {
					failures.Add(1)
				}
				samples[worker] = append(samples[worker], d)
			}
		}(w)
	}
	wg.Wait()
	total := time.Since(start)

	latencies := make([]time.Duration, 0, ops)
	for _, s := range samples {
		latencies = append(latencies, s...)
	}
	return computeStats(total, latencies, failures.Load())
}

// evaluateOp measures a navigation decision against a stored session. Every
// seeded session holds a known role, so any non-authorized state is a failure.
func evaluateOp(ctx context.Context, states []sessionState) opFunc {
	return func(r *rand.Rand, _, _ int) (time.Duration, bool) {
		idx := r.Intn(len(states))
		t0 := time.Now()
		d := states[idx].guard.Evaluate(ctx, routes[r.Intn(len(routes))])
		return time.Since(t0), d.State == guard.StateAuthorized
	}
}

// churnOp rewrites a session's role and checks that the next navigation to the
// admin area observes it.
func churnOp(ctx context.Context, states []sessionState) opFunc {
	return func(r *rand.Rand, _, _ int) (time.Duration, bool) {
		idx := r.Intn(len(states))
		state := &states[idx]

		state.mu.Lock()
		defer state.mu.Unlock()

		next := (state.role + 1) % len(roles)
		t0 := time.Now()
		if err := state.store.ReplaceIdentity(ctx, fmt.Sprintf("tok-%d", idx), identityFor(idx, roles[next])); err != nil {
			return time.Since(t0), false
		}
		d := state.guard.Evaluate(ctx, "/admin")
		elapsed := time.Since(t0)
		if d.Allowed() != (roles[next] == "admin") {
			return elapsed, false
		}
		state.role = next
		return elapsed, true
	}
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
	fmt.Printf("%-10s ops=%d failures=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		name+":", s.ops, s.failures, s.total.Round(time.Millisecond), s.opsPerS,
		s.p50.Round(time.Microsecond), s.p95.Round(time.Microsecond), s.p99.Round(time.Microsecond))
}

func identityFor(i int, role string) session.Identity {
	return session.Identity{
		ID:         int64(i + 1),
		Nom:        "Load",
		Prenom:     fmt.Sprintf("User%d", i),
		Email:      fmt.Sprintf("user%d@loadtest.local", i),
		Competence: []string{"go"},
		Interests:  []string{"backend"},
		Role:       role,
	}
}

// Command authrail-loadtest hammers the authorization gate against a local
// miniredis-backed store and reports throughput and engine metrics.
//
// Usage:
//
//	go run ./cmd/authrail-loadtest -workers 16 -duration 10s -users 100
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/authrail/authrail"
	"github.com/authrail/authrail/permission"
	"github.com/authrail/authrail/redisstore"
	"github.com/authrail/authrail/route"
)

type loadUsers int

func (u loadUsers) GetUserByID(_ context.Context, userID string) (authrail.UserRecord, error) {
	return authrail.UserRecord{UserID: userID, Email: userID + "@example.com"}, nil
}

func main() {
	workers := flag.Int("workers", 8, "concurrent workers")
	duration := flag.Duration("duration", 5*time.Second, "run duration")
	userCount := flag.Int("users", 50, "distinct users to rotate through")
	flag.Parse()

	mr, err := miniredis.Run()
	if err != nil {
		log.Fatal(err)
	}
	defer mr.Close()
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	registry, err := route.NewRegistry(
		route.Entry{Method: "GET", Pattern: "/health", Requirement: permission.Public()},
		route.Entry{Method: "GET", Pattern: "/projects", Requirement: permission.Require("projects:read:all")},
		route.Entry{Method: "POST", Pattern: "/projects", Requirement: permission.Require("projects:create:all")},
		route.Entry{Method: "GET", Pattern: "/reports/*", Requirement: permission.RequireAny("reports:read:all")},
	)
	if err != nil {
		log.Fatal("registry:", err)
	}

	cfg := authrail.Config{}
	cfg.Token.SigningMethod = "hs256"
	cfg.Token.PrivateKey = []byte("loadtest-secret-loadtest-secret!")
	cfg.Metrics.Enabled = true
	cfg.Metrics.EnableLatencyHistograms = true

	engine, err := authrail.New().
		WithConfig(cfg).
		WithStore(redisstore.New(rdb, "ar")).
		WithUserProvider(loadUsers(0)).
		WithRegistry(registry).
		WithSeedRoles(authrail.SeedRole{
			Name:        "Editor",
			Permissions: []string{"projects:read:all", "projects:create:all"},
		}).
		Build()
	if err != nil {
		log.Fatal("engine build:", err)
	}
	defer engine.Close()

	ctx := context.Background()
	editor, err := engine.GetRoleByName(ctx, "", "Editor")
	if err != nil {
		log.Fatal("seed lookup:", err)
	}

	// Half the users get the Editor role; the rest exercise the deny path.
	tokens := make([]string, *userCount)
	for i := 0; i < *userCount; i++ {
		userID := fmt.Sprintf("user-%d", i)
		if i%2 == 0 {
			if _, err := engine.AssignRole(ctx, authrail.AssignRoleInput{
				UserID: userID, RoleID: editor.ID, GrantedBy: "loadtest",
			}); err != nil {
				log.Fatal("assign:", err)
			}
		}
		token, err := engine.IssueSessionToken(ctx, userID, "")
		if err != nil {
			log.Fatal("issue:", err)
		}
		tokens[i] = token
	}

	probes := []struct{ method, path string }{
		{"GET", "/health"},
		{"GET", "/projects"},
		{"POST", "/projects"},
		{"GET", "/reports/weekly"},
		{"GET", "/not-registered"},
	}

	var total, allowed atomic.Uint64
	deadline := time.Now().Add(*duration)

	var wg sync.WaitGroup
	wg.Add(*workers)
	for w := 0; w < *workers; w++ {
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for time.Now().Before(deadline) {
				probe := probes[rng.Intn(len(probes))]
				token := tokens[rng.Intn(len(tokens))]
				dec := engine.Authorize(ctx, probe.method, probe.path, token, "")
				total.Add(1)
				if dec.Allowed {
					allowed.Add(1)
				}
			}
		}(int64(w) + 1)
	}
	wg.Wait()

	elapsed := *duration
	fmt.Printf("decisions: %d (%.0f/s), allowed: %d\n",
		total.Load(), float64(total.Load())/elapsed.Seconds(), allowed.Load())

	snap := engine.MetricsSnapshot()
	fmt.Printf("allowed=%d denied=%d forbidden=%d unauthenticated=%d unregistered=%d resolves=%d\n",
		snap.Counters[authrail.MetricDecisionAllowed],
		snap.Counters[authrail.MetricDecisionDenied],
		snap.Counters[authrail.MetricForbidden],
		snap.Counters[authrail.MetricUnauthenticated],
		snap.Counters[authrail.MetricRouteNotRegistered],
		snap.Counters[authrail.MetricResolveSuccess])

	if buckets, ok := snap.Histograms[authrail.MetricResolveLatency]; ok {
		bounds := []string{"<=5ms", "<=10ms", "<=25ms", "<=50ms", "<=100ms", "<=250ms", "<=500ms", ">500ms"}
		fmt.Println("resolve latency:")
		for i, count := range buckets {
			fmt.Printf("  %-8s %d\n", bounds[i], count)
		}
	}
}

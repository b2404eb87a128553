package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/hackgods/clinical-tracker/internal/catalog"
	"github.com/hackgods/clinical-tracker/internal/nudge"
)

type SimConfig struct {
	APIBaseURL string
	Duration   time.Duration
	Workers    int
	Users      int
	LogRatio   float64
	EditRatio  float64
	NudgeRatio float64
	ReadRatio  float64
}

type userPool struct {
	Users   []uuid.UUID
	mu      sync.RWMutex
	entries map[uuid.UUID][]uuid.UUID // entry IDs created per user
}

func (p *userPool) AddEntry(userID, id uuid.UUID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.entries[userID] = append(p.entries[userID], id)
}

func (p *userPool) RandomEntry(rng *rand.Rand, userID uuid.UUID) (uuid.UUID, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	ids := p.entries[userID]
	if len(ids) == 0 {
		return uuid.Nil, false
	}
	return ids[rng.Intn(len(ids))], true
}

type OperationMetrics struct {
	Total     int64
	Success   int64
	Conflict  int64
	Error     int64
	Latencies []time.Duration
	mu        sync.Mutex
}

func (om *OperationMetrics) Record(latency time.Duration, success bool, conflict bool) {
	atomic.AddInt64(&om.Total, 1)
	if success {
		atomic.AddInt64(&om.Success, 1)
	} else if conflict {
		atomic.AddInt64(&om.Conflict, 1)
	} else {
		atomic.AddInt64(&om.Error, 1)
	}

	om.mu.Lock()
	om.Latencies = append(om.Latencies, latency)
	om.mu.Unlock()
}

func (om *OperationMetrics) Stats() (avg, lo, hi, p50, p95 time.Duration) {
	om.mu.Lock()
	defer om.mu.Unlock()

	if len(om.Latencies) == 0 {
		return 0, 0, 0, 0, 0
	}

	latencies := make([]time.Duration, len(om.Latencies))
	copy(latencies, om.Latencies)

	sort.Slice(latencies, func(i, j int) bool {
		return latencies[i] < latencies[j]
	})

	var sum time.Duration
	for _, l := range latencies {
		sum += l
	}

	avg = sum / time.Duration(len(latencies))
	lo = latencies[0]
	hi = latencies[len(latencies)-1]
	p50 = latencies[percentileIndex(len(latencies), 50)]
	p95 = latencies[percentileIndex(len(latencies), 95)]

	return avg, lo, hi, p50, p95
}

func percentileIndex(n, pct int) int {
	idx := n * pct / 100
	if idx >= n {
		idx = n - 1
	}
	return idx
}

type Metrics struct {
	LogShift  OperationMetrics
	EditShift OperationMetrics
	Nudge     OperationMetrics
	ReadViews OperationMetrics
}

type Simulator struct {
	config  SimConfig
	pool    *userPool
	cats    catalog.Catalogs
	client  *http.Client
	metrics Metrics
}

func simulateCmd() *cobra.Command {
	cfg := SimConfig{}
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Drive a running tracker API with concurrent shift logging",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateSimConfig(cfg); err != nil {
				return err
			}
			normalizeRatios(&cfg)

			users := make([]uuid.UUID, cfg.Users)
			for i := range users {
				users[i] = uuid.New()
			}

			sim := &Simulator{
				config: cfg,
				pool:   &userPool{Users: users, entries: make(map[uuid.UUID][]uuid.UUID)},
				cats:   catalog.Default(),
				client: &http.Client{Timeout: 10 * time.Second},
			}
			sim.Run(cmd.Context())
			sim.PrintReport()
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&cfg.APIBaseURL, "base-url", "http://localhost:8080", "tracker API base URL")
	f.DurationVar(&cfg.Duration, "duration", 30*time.Second, "how long to run")
	f.IntVar(&cfg.Workers, "workers", 10, "concurrent workers")
	f.IntVar(&cfg.Users, "users", 50, "distinct simulated users")
	f.Float64Var(&cfg.LogRatio, "log-ratio", 0.4, "share of operations that log a shift")
	f.Float64Var(&cfg.EditRatio, "edit-ratio", 0.1, "share of operations that edit a shift")
	f.Float64Var(&cfg.NudgeRatio, "nudge-ratio", 0.2, "share of operations that answer the catch-up nudge")
	f.Float64Var(&cfg.ReadRatio, "read-ratio", 0.3, "share of operations that read stats or acuity")
	return cmd
}

func validateSimConfig(cfg SimConfig) error {
	if cfg.Workers <= 0 {
		return fmt.Errorf("--workers must be > 0")
	}
	if cfg.Users <= 0 {
		return fmt.Errorf("--users must be > 0")
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("--duration must be > 0")
	}
	return nil
}

func normalizeRatios(cfg *SimConfig) {
	total := cfg.LogRatio + cfg.EditRatio + cfg.NudgeRatio + cfg.ReadRatio
	if total > 0 {
		cfg.LogRatio /= total
		cfg.EditRatio /= total
		cfg.NudgeRatio /= total
		cfg.ReadRatio /= total
	}
}

func (s *Simulator) Run(parent context.Context) {
	ctx, cancel := context.WithTimeout(parent, s.config.Duration)
	defer cancel()

	fmt.Printf("starting simulation for %s with %d workers over %d users\n",
		s.config.Duration, s.config.Workers, s.config.Users)

	var wg sync.WaitGroup
	for i := 0; i < s.config.Workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			s.worker(ctx, workerID)
		}(i)
	}

	wg.Wait()
	fmt.Println("simulation complete")
}

func (s *Simulator) worker(ctx context.Context, workerID int) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano() + int64(workerID)))

	for {
		select {
		case <-ctx.Done():
			return
		default:
			userID := s.pool.Users[rng.Intn(len(s.pool.Users))]
			r := rng.Float64()
			switch {
			case r < s.config.LogRatio:
				s.doLogShift(ctx, rng, userID)
			case r < s.config.LogRatio+s.config.EditRatio:
				s.doEditShift(ctx, rng, userID)
			case r < s.config.LogRatio+s.config.EditRatio+s.config.NudgeRatio:
				s.doNudge(ctx, rng, userID)
			default:
				s.doRead(ctx, rng, userID)
			}
		}
	}
}

func (s *Simulator) randomBody(rng *rand.Rand) map[string]any {
	pick := func(t *catalog.Taxonomy, n int) []map[string]string {
		items := t.Items()
		out := make([]map[string]string, 0, n)
		for i := 0; i < n && len(items) > 0; i++ {
			out = append(out, map[string]string{
				"id":              items[rng.Intn(len(items))].ID,
				"confidenceLevel": seedConfidence[rng.Intn(len(seedConfidence))],
			})
		}
		return out
	}
	pops := s.cats.Populations.Items()

	return map[string]any{
		"shiftDate":          time.Now().AddDate(0, 0, -rng.Intn(30)).Format(time.DateOnly),
		"patientPopulations": []string{pops[rng.Intn(len(pops))].ID},
		"medications":        pick(s.cats.Medications, 1+rng.Intn(4)),
		"devices":            pick(s.cats.Devices, rng.Intn(3)),
		"procedures":         pick(s.cats.Procedures, rng.Intn(3)),
		"notes":              seedNotes[rng.Intn(len(seedNotes))],
	}
}

func (s *Simulator) do(ctx context.Context, method, path string, body any) (*http.Response, time.Duration, error) {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, s.config.APIBaseURL+path, &buf)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := s.client.Do(req)
	return resp, time.Since(start), err
}

func (s *Simulator) doLogShift(ctx context.Context, rng *rand.Rand, userID uuid.UUID) {
	resp, latency, err := s.do(ctx, http.MethodPost, "/users/"+userID.String()+"/entries", s.randomBody(rng))

	success := false
	if err == nil {
		defer resp.Body.Close()
		if resp.StatusCode == http.StatusCreated {
			success = true
			var created struct {
				Entry struct {
					ID uuid.UUID `json:"id"`
				} `json:"entry"`
			}
			if json.NewDecoder(resp.Body).Decode(&created) == nil && created.Entry.ID != uuid.Nil {
				s.pool.AddEntry(userID, created.Entry.ID)
			}
		}
	}

	s.metrics.LogShift.Record(latency, success, false)
}

func (s *Simulator) doEditShift(ctx context.Context, rng *rand.Rand, userID uuid.UUID) {
	entryID, ok := s.pool.RandomEntry(rng, userID)
	if !ok {
		return
	}

	resp, latency, err := s.do(ctx, http.MethodPut,
		fmt.Sprintf("/users/%s/entries/%s", userID, entryID), s.randomBody(rng))

	success := false
	if err == nil {
		defer resp.Body.Close()
		success = resp.StatusCode == http.StatusOK
	}

	s.metrics.EditShift.Record(latency, success, false)
}

func (s *Simulator) doNudge(ctx context.Context, rng *rand.Rand, userID uuid.UUID) {
	base := fmt.Sprintf("/users/%s/nudges/%s", userID, nudge.CatchUpID)

	var (
		resp    *http.Response
		latency time.Duration
		err     error
	)
	switch rng.Intn(3) {
	case 0:
		resp, latency, err = s.do(ctx, http.MethodGet, base, nil)
	case 1:
		resp, latency, err = s.do(ctx, http.MethodPost, base+"/dismiss", nil)
	default:
		resp, latency, err = s.do(ctx, http.MethodPost, base+"/snooze", map[string]int{"days": 1 + rng.Intn(7)})
	}

	success := false
	conflict := false
	if err == nil {
		defer resp.Body.Close()
		if resp.StatusCode == http.StatusOK {
			success = true
		} else if resp.StatusCode == http.StatusConflict {
			conflict = true
		}
	}

	s.metrics.Nudge.Record(latency, success, conflict)
}

func (s *Simulator) doRead(ctx context.Context, rng *rand.Rand, userID uuid.UUID) {
	views := []string{"/entries", "/stats", "/stats/breakdown", "/acuity", "/rewards"}
	resp, latency, err := s.do(ctx, http.MethodGet, "/users/"+userID.String()+views[rng.Intn(len(views))], nil)

	success := false
	if err == nil {
		defer resp.Body.Close()
		success = resp.StatusCode == http.StatusOK
	}

	s.metrics.ReadViews.Record(latency, success, false)
}

func (s *Simulator) PrintReport() {
	fmt.Println("\n" + strings.Repeat("=", 80))
	fmt.Println("SIMULATION REPORT")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("Duration: %s\n", s.config.Duration)
	fmt.Printf("Workers: %d\n", s.config.Workers)
	fmt.Printf("Users: %d\n", s.config.Users)
	fmt.Println()

	printOperationReport("Log shift", &s.metrics.LogShift)
	printOperationReport("Edit shift", &s.metrics.EditShift)
	printOperationReport("Nudge", &s.metrics.Nudge)
	printOperationReport("Read views", &s.metrics.ReadViews)
}

func printOperationReport(name string, om *OperationMetrics) {
	total := atomic.LoadInt64(&om.Total)
	if total == 0 {
		return
	}

	success := atomic.LoadInt64(&om.Success)
	conflict := atomic.LoadInt64(&om.Conflict)
	failed := atomic.LoadInt64(&om.Error)

	avg, lo, hi, p50, p95 := om.Stats()

	fmt.Printf("%s:\n", name)
	fmt.Printf("  Total: %d\n", total)
	fmt.Printf("  Success: %d (%.1f%%)\n", success, float64(success)/float64(total)*100)
	if conflict > 0 {
		fmt.Printf("  Conflicts: %d (%.1f%%)\n", conflict, float64(conflict)/float64(total)*100)
	}
	if failed > 0 {
		fmt.Printf("  Errors: %d (%.1f%%)\n", failed, float64(failed)/float64(total)*100)
	}
	fmt.Printf("  Latency: avg=%s min=%s max=%s p50=%s p95=%s\n",
		avg.Round(time.Millisecond), lo.Round(time.Millisecond), hi.Round(time.Millisecond),
		p50.Round(time.Millisecond), p95.Round(time.Millisecond))
	fmt.Println()
}

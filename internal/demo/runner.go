package demo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/okian/pinlog/pkg/logger"
)

// Outcomes of one plan.
const (
	resultCreated   = "created"
	resultDuplicate = "duplicate"
	resultRejected  = "rejected"
	resultConflict  = "conflict"
	resultFailed    = "failed"
)

type mapResponse struct {
	Ready  bool `json:"ready"`
	Center struct {
		Lat float64 `json:"lat"`
		Lng float64 `json:"lng"`
	} `json:"center"`
}

type createdResponse struct {
	Status  string  `json:"status"`
	Workout Workout `json:"workout"`
}

// Run executes the scripted session against cfg.BaseURL.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	stats := &Stats{StartTime: time.Now()}
	log := logger.Get().Named("demo")
	client := newHTTPClient(cfg.BaseURL, cfg.Timeout)

	log.Info(ctx, "starting pinlog demo",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("workouts", cfg.Workouts),
		logger.Int("invalid", cfg.Invalid),
		logger.Int("workers", cfg.Workers),
	)

	if status, err := client.do(ctx, http.MethodGet, "/healthz", nil, nil, nil); err != nil || status != http.StatusOK {
		return stats, fmt.Errorf("service health check failed: status %d: %w", status, err)
	}

	if cfg.Reset {
		if status, err := client.do(ctx, http.MethodPost, "/reset", nil, nil, nil); err != nil || status != http.StatusOK {
			return stats, fmt.Errorf("reset failed: status %d: %w", status, err)
		}
	}

	var view mapResponse
	if _, err := client.do(ctx, http.MethodGet, "/map", nil, nil, &view); err != nil {
		return stats, fmt.Errorf("reading map: %w", err)
	}
	if !view.Ready {
		return stats, errors.New("map is not ready; is geolocation off?")
	}

	var before listResponse
	if _, err := client.do(ctx, http.MethodGet, "/workouts", nil, nil, &before); err != nil {
		return stats, fmt.Errorf("listing workouts: %w", err)
	}

	plans := Generate(cfg, view.Center.Lat, view.Center.Lng)
	stats.Planned = len(plans)
	created := submitAll(ctx, cfg, client, plans, stats)

	if err := replayFirst(ctx, client, plans, stats); err != nil {
		return stats, err
	}

	if err := verify(ctx, client, len(before.Workouts), created, stats); err != nil {
		return stats, err
	}

	if len(created) > 0 {
		path := "/workouts/" + created[0].ID + "/select"
		if status, err := client.do(ctx, http.MethodPost, path, nil, nil, nil); err != nil || status != http.StatusOK {
			return stats, fmt.Errorf("select failed: status %d: %w", status, err)
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, log, stats)
	return stats, nil
}

// submitAll runs plans across cfg.Workers clients and returns the created workouts.
func submitAll(ctx context.Context, cfg *Config, client *HTTPClient, plans []Plan, stats *Stats) []Workout {
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}

	var (
		mu      sync.Mutex
		created []Workout
		wg      sync.WaitGroup
	)
	planCh := make(chan Plan, workers*2)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for plan := range planCh {
				result, w := submitPlan(ctx, cfg, client, plan)

				mu.Lock()
				switch result {
				case resultCreated:
					stats.Created++
					created = append(created, w)
				case resultDuplicate:
					stats.Duplicates++
				case resultRejected:
					stats.Rejected++
				case resultConflict:
					stats.Conflicts++
				default:
					stats.Failed++
				}
				mu.Unlock()
			}
		}()
	}

	go func() {
		defer close(planCh)
		for _, p := range plans {
			select {
			case <-ctx.Done():
				return
			case planCh <- p:
			}
		}
	}()
	wg.Wait()
	return created
}

// submitPlan clicks and submits. When another client closes the form in
// between, it clicks again, up to submitAttempts times.
func submitPlan(ctx context.Context, cfg *Config, client *HTTPClient, plan Plan) (string, Workout) {
	log := logger.Get().Named("demo")
	headers := map[string]string{"Idempotency-Key": plan.Key}

	for attempt := 0; attempt < submitAttempts; attempt++ {
		click := map[string]float64{"lat": plan.Lat, "lng": plan.Lng}
		if status, err := client.do(ctx, http.MethodPost, "/map/click", click, nil, nil); err != nil || status != http.StatusOK {
			return resultFailed, Workout{}
		}

		var created createdResponse
		status, err := client.do(ctx, http.MethodPost, "/workouts", plan.Submission, headers, &created)
		if err != nil {
			return resultFailed, Workout{}
		}
		if cfg.Verbose {
			log.Debug(ctx, "submitted",
				logger.String("type", plan.Submission.Type),
				logger.Int("status", status),
				logger.Int("attempt", attempt),
			)
		}

		switch status {
		case http.StatusCreated:
			return resultCreated, created.Workout
		case http.StatusOK:
			return resultDuplicate, Workout{}
		case http.StatusUnprocessableEntity:
			return resultRejected, Workout{}
		case http.StatusConflict:
			continue
		default:
			return resultFailed, Workout{}
		}
	}
	return resultConflict, Workout{}
}

// replayFirst resends the first valid plan with its key and expects a duplicate.
func replayFirst(ctx context.Context, client *HTTPClient, plans []Plan, stats *Stats) error {
	for _, p := range plans {
		if !p.Valid {
			continue
		}
		var ack struct {
			Status string `json:"status"`
		}
		status, err := client.do(ctx, http.MethodPost, "/workouts", p.Submission,
			map[string]string{"Idempotency-Key": p.Key}, &ack)
		if err != nil {
			return fmt.Errorf("replaying submission: %w", err)
		}
		if status != http.StatusOK || ack.Status != "duplicate" {
			return fmt.Errorf("replayed idempotency key was not a duplicate: status %d", status)
		}
		stats.Duplicates++
		return nil
	}
	return nil
}

func displayFinalStats(ctx context.Context, log logger.Logger, stats *Stats) {
	log.Info(ctx, "final statistics",
		logger.Int("planned", stats.Planned),
		logger.Int("created", stats.Created),
		logger.Int("duplicates", stats.Duplicates),
		logger.Int("rejected", stats.Rejected),
		logger.Int("conflicts", stats.Conflicts),
		logger.Int("failed", stats.Failed),
		logger.Int("listed", stats.Listed),
		logger.Duration("duration", stats.Duration),
	)
}

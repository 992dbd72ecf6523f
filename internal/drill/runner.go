package drill

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/qte/pkg/logger"
)

// Run executes a complete drill and returns its report. A non-nil error means
// the service could not be reached or its counters disagree with the plan.
func Run(ctx context.Context, config *Config) (*Report, error) {
	log := logger.Named("drill")
	report := &Report{StartTime: time.Now()}

	log.Info(ctx, "starting qte drill",
		logger.String("baseURL", config.BaseURL),
		logger.Int("prompts", config.Prompts),
		logger.Int("owners", config.Owners),
		logger.Int("workers", config.Workers),
		logger.Duration("promptDuration", config.PromptDuration),
	)

	client := newHTTPClient(config.BaseURL, config.Timeout)

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, client); err != nil {
		return nil, fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Baseline counters
	if err := fetchStats(ctx, client, &report.Before); err != nil {
		return nil, err
	}

	// Step 3: Plan and play prompts concurrently
	prompts := plan(config.Prompts, config.Owners)
	report.Planned = count(prompts)
	play(ctx, log, client, config, prompts, report)

	// Step 4: Let the misses time out
	log.Info(ctx, "waiting for unanswered prompts to time out")
	select {
	case <-ctx.Done():
		return report, ctx.Err()
	case <-time.After(config.PromptDuration + SettleDelay):
	}

	// Step 5: Verify counters
	if err := fetchStats(ctx, client, &report.After); err != nil {
		return report, err
	}
	report.Duration = time.Since(report.StartTime)
	displayFinalStats(config, report)

	if err := verifyResults(report); err != nil {
		return report, fmt.Errorf("result verification failed: %w", err)
	}
	log.Info(ctx, "drill completed successfully")
	return report, nil
}

func checkServiceHealth(ctx context.Context, client *HTTPClient) error {
	status, err := client.Do(ctx, http.MethodGet, "/healthz", nil, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	if status != StatusOK {
		return fmt.Errorf("service health check failed with status: %d", status)
	}
	return nil
}

func fetchStats(ctx context.Context, client *HTTPClient, out *ServiceStats) error {
	status, err := client.Do(ctx, http.MethodGet, "/stats", nil, out)
	if err != nil {
		return fmt.Errorf("stats retrieval failed: %w", err)
	}
	if status != StatusOK {
		return fmt.Errorf("stats retrieval failed with status: %d", status)
	}
	return nil
}

// play fans prompts out to a worker pool.
func play(ctx context.Context, log logger.Logger, client *HTTPClient, config *Config, prompts []Prompt, report *Report) {
	workers := config.Workers
	if workers < 1 {
		workers = 1
	}
	var started, failed, duplicates atomic.Int64

	promptChan := make(chan Prompt, workers*workerBacklog)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for p := range promptChan {
				dup, err := playOne(ctx, client, config, p)
				if err != nil {
					failed.Add(1)
					log.Warn(ctx, "prompt failed", logger.String("prompt", p.Identifier), logger.Error(err))
					continue
				}
				started.Add(1)
				if dup {
					duplicates.Add(1)
				}
				if config.Verbose {
					log.Info(ctx, "prompt played",
						logger.String("prompt", p.Identifier),
						logger.String("owner", p.Owner),
						logger.String("action", p.Action.String()),
					)
				}
			}
		}()
	}

	go func() {
		defer close(promptChan)
		for _, p := range prompts {
			select {
			case <-ctx.Done():
				return
			case promptChan <- p:
			}
		}
	}()
	wg.Wait()

	report.Started = int(started.Load())
	report.Failed = int(failed.Load())
	report.Duplicates = int(duplicates.Load())
}

// playOne starts p and answers it. It reports whether a duplicate press was acknowledged.
func playOne(ctx context.Context, client *HTTPClient, config *Config, p Prompt) (bool, error) {
	var ev eventResponse
	status, err := client.Do(ctx, http.MethodPost, "/events", startRequest{
		Identifier: p.Identifier,
		Owner:      p.Owner,
		Priority:   p.Priority,
		Duration:   config.PromptDuration.Seconds(),
		TargetKey:  p.Key,
	}, &ev)
	if err != nil {
		return false, err
	}
	if status != StatusCreated {
		return false, fmt.Errorf("start returned status %d", status)
	}

	switch p.Action {
	case ActionHit:
		return false, press(ctx, client, p, false)
	case ActionHitTwice:
		if err := press(ctx, client, p, false); err != nil {
			return false, err
		}
		return true, press(ctx, client, p, true)
	case ActionCancel:
		status, err := client.Do(ctx, http.MethodDelete, "/events/"+ev.ID, nil, nil)
		if err != nil {
			return false, err
		}
		if status != StatusNoContent {
			return false, fmt.Errorf("cancel returned status %d", status)
		}
	}
	return false, nil
}

func press(ctx context.Context, client *HTTPClient, p Prompt, wantDuplicate bool) error {
	var ack inputResponse
	status, err := client.Do(ctx, http.MethodPost, "/input", inputRequest{Key: p.Key, PressID: p.PressID}, &ack)
	if err != nil {
		return err
	}
	switch {
	case status != StatusOK:
		return fmt.Errorf("input returned status %d", status)
	case ack.Duplicate != wantDuplicate:
		return fmt.Errorf("input duplicate=%t, want %t", ack.Duplicate, wantDuplicate)
	case !wantDuplicate && !ack.Consumed:
		return fmt.Errorf("press %s was not consumed", p.Key)
	}
	return nil
}

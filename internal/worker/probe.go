package worker

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/imeilookup/imeilookup/internal/device"
	"github.com/imeilookup/imeilookup/internal/lookup"
)

// ProbeJob looks up known identifiers against each configured provider.
// Probes go through the adapters' resilience clients, so their outcomes
// feed the provider health registry used by the status endpoint.
type ProbeJob struct {
	config   ProbeConfig
	adapters map[device.Provider]lookup.Adapter
	logger   zerolog.Logger

	metrics *ProbeMetrics
}

// ProbeMetrics tracks probe job statistics.
type ProbeMetrics struct {
	mu sync.RWMutex

	TotalRuns    int64
	Successful   int64
	Failed       int64
	Skipped      int64
	LastRunAt    time.Time
	LastDuration time.Duration
}

// ProbeJobConfig holds configuration for creating a ProbeJob.
type ProbeJobConfig struct {
	Config   ProbeConfig
	Adapters []lookup.Adapter
	Logger   zerolog.Logger
}

// NewProbeJob creates a new probe job.
func NewProbeJob(cfg ProbeJobConfig) *ProbeJob {
	adapters := make(map[device.Provider]lookup.Adapter, len(cfg.Adapters))
	for _, a := range cfg.Adapters {
		adapters[a.Provider()] = a
	}

	return &ProbeJob{
		config:   cfg.Config.withDefaults(),
		adapters: adapters,
		logger:   cfg.Logger,
		metrics:  &ProbeMetrics{},
	}
}

// ProbeResult contains the result of one probe run.
type ProbeResult struct {
	StartTime  time.Time
	EndTime    time.Time
	Duration   time.Duration
	Total      int
	Successful int
	Failed     int
	Skipped    int
	Found      int
	Errors     []ProbeError
}

// ProbeError records a failed probe.
type ProbeError struct {
	Provider device.Provider
	Error    string
}

type probeOutcome struct {
	target  ProbeTarget
	skipped bool
	found   bool
	err     error
}

// Run probes every target, restricted to provider when it is non-empty.
// Targets for providers without a configured adapter are skipped.
func (j *ProbeJob) Run(ctx context.Context, provider device.Provider) *ProbeResult {
	startTime := time.Now()

	targets := make([]ProbeTarget, 0, len(j.config.Targets))
	for _, t := range j.config.Targets {
		if provider == "" || t.Provider == provider {
			targets = append(targets, t)
		}
	}

	result := &ProbeResult{StartTime: startTime, Total: len(targets)}

	j.logger.Info().
		Int("targets", result.Total).
		Int("concurrency", j.config.Concurrency).
		Msg("starting provider probe job")

	targetsChan := make(chan ProbeTarget, len(targets))
	outcomes := make(chan probeOutcome, len(targets))

	var wg sync.WaitGroup
	for i := 0; i < j.config.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			j.probeWorker(ctx, targetsChan, outcomes)
		}()
	}

	for _, t := range targets {
		targetsChan <- t
	}
	close(targetsChan)

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	for o := range outcomes {
		switch {
		case o.skipped:
			result.Skipped++
		case o.err != nil:
			result.Failed++
			result.Errors = append(result.Errors, ProbeError{Provider: o.target.Provider, Error: o.err.Error()})
		default:
			result.Successful++
			if o.found {
				result.Found++
			}
		}
	}

	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(startTime)

	j.updateMetrics(result)

	j.logger.Info().
		Dur("duration", result.Duration).
		Int("successful", result.Successful).
		Int("failed", result.Failed).
		Int("skipped", result.Skipped).
		Int("found", result.Found).
		Msg("provider probe job completed")

	return result
}

func (j *ProbeJob) probeWorker(ctx context.Context, targets <-chan ProbeTarget, outcomes chan<- probeOutcome) {
	for t := range targets {
		select {
		case <-ctx.Done():
			outcomes <- probeOutcome{target: t, err: ctx.Err()}
		default:
			outcomes <- j.probe(ctx, t)
		}
	}
}

func (j *ProbeJob) probe(ctx context.Context, t ProbeTarget) probeOutcome {
	adapter, ok := j.adapters[t.Provider]
	if !ok {
		return probeOutcome{target: t, skipped: true}
	}

	probeCtx, cancel := context.WithTimeout(ctx, j.config.Timeout)
	defer cancel()

	payload, err := adapter.FetchRaw(probeCtx, t.Identifier)
	if err != nil {
		j.logger.Warn().Err(err).
			Str("provider", t.Provider.String()).
			Msg("provider probe failed")
		return probeOutcome{target: t, err: err}
	}

	found := !payload.IsEmpty() && !adapter.Normalize(payload).IsEmpty()
	return probeOutcome{target: t, found: found}
}

func (j *ProbeJob) updateMetrics(result *ProbeResult) {
	j.metrics.mu.Lock()
	defer j.metrics.mu.Unlock()

	j.metrics.TotalRuns++
	j.metrics.Successful += int64(result.Successful)
	j.metrics.Failed += int64(result.Failed)
	j.metrics.Skipped += int64(result.Skipped)
	j.metrics.LastRunAt = result.EndTime
	j.metrics.LastDuration = result.Duration
}

// MetricsSnapshot returns a snapshot of the current metrics as a map.
func (j *ProbeJob) MetricsSnapshot() map[string]interface{} {
	j.metrics.mu.RLock()
	defer j.metrics.mu.RUnlock()

	return map[string]interface{}{
		"total_runs":    j.metrics.TotalRuns,
		"successful":    j.metrics.Successful,
		"failed":        j.metrics.Failed,
		"skipped":       j.metrics.Skipped,
		"last_run_at":   j.metrics.LastRunAt,
		"last_duration": j.metrics.LastDuration.String(),
	}
}

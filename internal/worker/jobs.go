package worker

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/imeilookup/imeilookup/internal/device"
	"github.com/imeilookup/imeilookup/internal/notes"
)

// Job types accepted on the subscription.
const (
	JobNotesStats    = "notes_stats"
	JobProviderProbe = "provider_probe"
)

var (
	// ErrUnknownJob is returned for a job type the worker does not handle.
	ErrUnknownJob = errors.New("unknown job type")

	// ErrInvalidJob is returned for a message whose parameters cannot be used.
	ErrInvalidJob = errors.New("invalid job message")

	// ErrJobNotConfigured is returned when the job's dependencies are missing.
	ErrJobNotConfigured = errors.New("job not configured")
)

// JobMessage is the payload of a worker Pub/Sub message.
type JobMessage struct {
	JobType  string `json:"job_type"`
	Provider string `json:"provider,omitempty"`
	Station  string `json:"station,omitempty"`
	DateFrom string `json:"date_from,omitempty"`
	DateTo   string `json:"date_to,omitempty"`
}

// JobsConfig holds the dependencies of the job runner.
type JobsConfig struct {
	Notes  *notes.Service
	Probe  *ProbeJob
	Logger zerolog.Logger
}

// Jobs runs worker jobs independently of their transport.
type Jobs struct {
	notes  *notes.Service
	probe  *ProbeJob
	logger zerolog.Logger
}

// NewJobs creates a new job runner.
func NewJobs(cfg JobsConfig) *Jobs {
	return &Jobs{
		notes:  cfg.Notes,
		probe:  cfg.Probe,
		logger: cfg.Logger,
	}
}

// Handle runs the job described by msg.
func (j *Jobs) Handle(ctx context.Context, msg JobMessage) error {
	provider, err := parseProvider(msg.Provider)
	if err != nil {
		return err
	}

	switch msg.JobType {
	case JobNotesStats:
		_, err := j.NotesStats(ctx, notes.Filters{
			Provider: provider,
			Station:  msg.Station,
			DateFrom: msg.DateFrom,
			DateTo:   msg.DateTo,
		})
		return err
	case JobProviderProbe:
		return j.ProviderProbe(ctx, provider)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownJob, msg.JobType)
	}
}

// NotesStats computes and logs the notes statistics report.
func (j *Jobs) NotesStats(ctx context.Context, filters notes.Filters) (notes.Stats, error) {
	if j.notes == nil {
		return notes.Stats{}, fmt.Errorf("%w: %s", ErrJobNotConfigured, JobNotesStats)
	}

	stats := j.notes.Stats(ctx, filters)

	event := j.logger.Info().
		Int("total", stats.Total).
		Int("with_notes", stats.WithNotes).
		Int("with_history", stats.WithHistory)
	for name, count := range stats.ByProvider {
		event = event.Int("provider_"+name, count)
	}
	event.Int("stations", len(stats.ByStation)).Msg("notes stats report")

	return stats, nil
}

// ProviderProbe runs the probe job and fails when more probes failed
// than succeeded.
func (j *Jobs) ProviderProbe(ctx context.Context, provider device.Provider) error {
	if j.probe == nil {
		return fmt.Errorf("%w: %s", ErrJobNotConfigured, JobProviderProbe)
	}

	result := j.probe.Run(ctx, provider)
	if result.Failed > result.Successful {
		return fmt.Errorf("too many probe failures: %d/%d", result.Failed, result.Total)
	}
	return nil
}

func parseProvider(s string) (device.Provider, error) {
	if s == "" {
		return "", nil
	}
	p, ok := device.ParseProvider(s)
	if !ok {
		return "", fmt.Errorf("%w: provider %q", ErrInvalidJob, s)
	}
	return p, nil
}

// retryable reports whether a failed job should be redelivered.
func retryable(err error) bool {
	return !errors.Is(err, ErrUnknownJob) &&
		!errors.Is(err, ErrInvalidJob) &&
		!errors.Is(err, ErrJobNotConfigured)
}

package notes

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/imeilookup/imeilookup/internal/device"
	"github.com/imeilookup/imeilookup/internal/station"
)

// ServiceConfig holds configuration for the notes service.
type ServiceConfig struct {
	Repository Repository
	Logger     zerolog.Logger

	// Now overrides the clock used for updatedDate and history fallbacks.
	Now func() time.Time
}

// Service reads and writes notes. Store failures are logged and reduced to
// empty results or a false success flag; they are never returned.
type Service struct {
	repo   Repository
	logger zerolog.Logger
	now    func() time.Time
}

// NewService creates a new notes service.
func NewService(cfg ServiceConfig) *Service {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		repo:   cfg.Repository,
		logger: cfg.Logger,
		now:    now,
	}
}

func (s *Service) today() string {
	return s.now().UTC().Format(DateLayout)
}

func validKey(key Key) bool {
	_, ok := device.ParseProvider(key.Provider.String())
	return ok && key.IMEI != ""
}

// Save stores text as the current note for key, attributed to st.
//
// With appendHistory the previous note, when it is non-empty and differs from
// text, is pushed to the end of the history and the whole document is
// rewritten. Without it only the note and station fields are merged.
func (s *Service) Save(ctx context.Context, key Key, text string, appendHistory bool, st station.Config) bool {
	if !validKey(key) {
		return false
	}

	st = st.Normalize()
	today := s.today()

	if !appendHistory {
		err := s.repo.Merge(ctx, key, Update{
			CurrentNote: text,
			UpdatedDate: today,
			Station:     st.StationName,
			UserName:    st.UserName,
			Location:    st.Location,
		})
		if err != nil {
			s.logger.Error().Err(err).Str("key", key.String()).Msg("failed to save note")
			return false
		}
		return true
	}

	existing, err := s.repo.Get(ctx, key)
	switch {
	case errors.Is(err, ErrNoteNotFound):
		existing = &NoteData{}
	case err != nil:
		s.logger.Error().Err(err).Str("key", key.String()).Msg("failed to read note before save")
		return false
	}

	history := existing.History
	if history == nil {
		history = []HistoryEntry{}
	}
	if existing.CurrentNote != "" && existing.CurrentNote != text {
		history = append(history, HistoryEntry{
			Note:      existing.CurrentNote,
			Date:      orDefault(existing.UpdatedDate, today),
			Station:   orDefault(existing.Station, st.StationName),
			Timestamp: orNow(existing.UpdatedAt, s.now),
		})
	}

	err = s.repo.Put(ctx, key, NoteData{
		CurrentNote: text,
		UpdatedDate: today,
		Station:     st.StationName,
		UserName:    st.UserName,
		Location:    st.Location,
		History:     history,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("key", key.String()).Msg("failed to save note")
		return false
	}
	return true
}

// Load returns the current note, or "" when there is none.
func (s *Service) Load(ctx context.Context, key Key) string {
	data := s.get(ctx, key)
	if data == nil {
		return ""
	}
	return data.CurrentNote
}

// LoadHistory returns the stored history with the current note, if any,
// prepended as an entry marked IsCurrent.
func (s *Service) LoadHistory(ctx context.Context, key Key) []HistoryEntry {
	data := s.get(ctx, key)
	if data == nil {
		return []HistoryEntry{}
	}

	history := data.History
	if history == nil {
		history = []HistoryEntry{}
	}
	if data.CurrentNote == "" {
		return history
	}

	current := HistoryEntry{
		Note:      data.CurrentNote,
		Date:      orDefault(data.UpdatedDate, s.today()),
		Station:   orDefault(data.Station, station.DefaultStationName),
		Timestamp: orNow(data.UpdatedAt, s.now),
		IsCurrent: true,
	}
	return append([]HistoryEntry{current}, history...)
}

// Details returns the full document, or nil when there is none.
func (s *Service) Details(ctx context.Context, key Key) *NoteData {
	data := s.get(ctx, key)
	if data != nil && data.History == nil {
		data.History = []HistoryEntry{}
	}
	return data
}

func (s *Service) get(ctx context.Context, key Key) *NoteData {
	if !validKey(key) {
		return nil
	}
	data, err := s.repo.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrNoteNotFound) {
			s.logger.Error().Err(err).Str("key", key.String()).Msg("failed to load note")
		}
		return nil
	}
	return data
}

func (s *Service) scan(ctx context.Context) []Document {
	docs, err := s.repo.Scan(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to scan notes")
		return nil
	}
	return docs
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func orNow(t time.Time, now func() time.Time) time.Time {
	if t.IsZero() {
		return now().UTC()
	}
	return t
}

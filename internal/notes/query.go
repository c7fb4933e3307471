package notes

import (
	"context"
	"sort"
	"strings"

	"github.com/imeilookup/imeilookup/internal/device"
)

// Matches reports whether a document satisfies every set filter.
// Date bounds compare YYYY-MM-DD strings, so a document without an
// updatedDate never satisfies a bound.
func (f Filters) Matches(doc Document) bool {
	if f.Provider != "" && doc.Key.Provider != f.Provider {
		return false
	}
	if f.Station != "" && doc.Data.Station != f.Station {
		return false
	}
	if f.UserName != "" && doc.Data.UserName != f.UserName {
		return false
	}
	if f.DateFrom != "" && (doc.Data.UpdatedDate == "" || doc.Data.UpdatedDate < f.DateFrom) {
		return false
	}
	if f.DateTo != "" && (doc.Data.UpdatedDate == "" || doc.Data.UpdatedDate > f.DateTo) {
		return false
	}
	return true
}

// ListAll scans every note, applies filters and returns summaries, newest
// updatedDate first with undated documents last, truncated to filters.Limit.
func (s *Service) ListAll(ctx context.Context, filters Filters) []Summary {
	summaries := make([]Summary, 0)
	for _, doc := range s.scan(ctx) {
		if !filters.Matches(doc) {
			continue
		}
		summaries = append(summaries, summarize(doc))
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		a, b := summaries[i].UpdatedDate, summaries[j].UpdatedDate
		if a == "" || b == "" {
			return a != "" && b == ""
		}
		return a > b
	})

	if filters.Limit > 0 && len(summaries) > filters.Limit {
		summaries = summaries[:filters.Limit]
	}
	return summaries
}

// SearchByText returns documents whose current note or any history note
// contains text, case-insensitively. Empty text matches nothing.
func (s *Service) SearchByText(ctx context.Context, text string, filters Filters) []SearchResult {
	results := make([]SearchResult, 0)
	needle := strings.ToLower(text)
	if needle == "" {
		return results
	}

	for _, doc := range s.scan(ctx) {
		if !filters.Matches(doc) || !containsText(doc.Data, needle) {
			continue
		}
		data := doc.Data
		if data.History == nil {
			data.History = []HistoryEntry{}
		}
		results = append(results, SearchResult{
			IMEI:     doc.Key.IMEI,
			Provider: doc.Key.Provider,
			Data:     data,
		})
		if filters.Limit > 0 && len(results) == filters.Limit {
			break
		}
	}
	return results
}

// Stats counts the documents matching filters. Limit is ignored.
func (s *Service) Stats(ctx context.Context, filters Filters) Stats {
	filters.Limit = 0

	stats := Stats{
		ByProvider: make(map[string]int),
		ByStation:  make(map[string]int),
	}
	for _, p := range device.Providers() {
		stats.ByProvider[p.String()] = 0
	}

	for _, summary := range s.ListAll(ctx, filters) {
		stats.Total++
		stats.ByProvider[summary.Provider.String()]++
		stats.ByStation[summary.Station]++
		if summary.HasNote {
			stats.WithNotes++
		}
		if summary.HistoryCount > 0 {
			stats.WithHistory++
		}
	}
	return stats
}

func summarize(doc Document) Summary {
	return Summary{
		IMEI:         doc.Key.IMEI,
		Provider:     doc.Key.Provider,
		Station:      orDefault(doc.Data.Station, "Unknown"),
		UserName:     doc.Data.UserName,
		UpdatedDate:  doc.Data.UpdatedDate,
		HasNote:      doc.Data.CurrentNote != "",
		HistoryCount: len(doc.Data.History),
	}
}

func containsText(data NoteData, needle string) bool {
	if strings.Contains(strings.ToLower(data.CurrentNote), needle) {
		return true
	}
	for _, entry := range data.History {
		if strings.Contains(strings.ToLower(entry.Note), needle) {
			return true
		}
	}
	return false
}

// Package notes stores technician notes per device, with the history of earlier notes.
package notes

import (
	"errors"
	"fmt"
	"time"

	"github.com/imeilookup/imeilookup/internal/device"
)

// DateLayout is the calendar-day format of updatedDate and history dates.
const DateLayout = "2006-01-02"

// ErrNoteNotFound is returned by repositories when no document exists for a key.
var ErrNoteNotFound = errors.New("note not found")

// Key addresses one note document.
type Key struct {
	Provider device.Provider
	IMEI     string
}

func (k Key) String() string {
	return k.Provider.String() + "/" + k.IMEI
}

// HistoryEntry is a superseded note.
type HistoryEntry struct {
	Note      string    `json:"note" firestore:"note"`
	Date      string    `json:"date" firestore:"date"`
	Station   string    `json:"station" firestore:"station"`
	Timestamp time.Time `json:"timestamp,omitzero" firestore:"timestamp"`

	// IsCurrent marks the synthesized entry for the live note. Never stored.
	IsCurrent bool `json:"isCurrent,omitempty" firestore:"-"`
}

// NoteData is the stored note document.
type NoteData struct {
	CurrentNote string         `json:"currentNote" firestore:"currentNote"`
	UpdatedDate string         `json:"updatedDate" firestore:"updatedDate"`
	Station     string         `json:"station" firestore:"station"`
	UserName    string         `json:"userName" firestore:"userName"`
	Location    string         `json:"location" firestore:"location"`
	UpdatedAt   time.Time      `json:"updatedAt,omitzero" firestore:"updatedAt"`
	History     []HistoryEntry `json:"history" firestore:"history"`
}

// Update is the set of fields written by a save that leaves history untouched.
type Update struct {
	CurrentNote string
	UpdatedDate string
	Station     string
	UserName    string
	Location    string
}

// Document is a note together with its key, as returned by a full scan.
type Document struct {
	Key  Key
	Data NoteData
}

// Filters narrows list, search and stats queries.
// Every non-empty field is an exact-match predicate; date bounds are inclusive.
type Filters struct {
	Provider device.Provider
	Station  string
	DateFrom string
	DateTo   string
	UserName string
	Limit    int
}

// Summary is the list-view projection of a note document.
type Summary struct {
	IMEI         string          `json:"imei"`
	Provider     device.Provider `json:"provider"`
	Station      string          `json:"station"`
	UserName     string          `json:"userName"`
	UpdatedDate  string          `json:"updatedDate"`
	HasNote      bool            `json:"hasNote"`
	HistoryCount int             `json:"historyCount"`
}

// SearchResult is a document matching a text search.
type SearchResult struct {
	IMEI     string          `json:"imei"`
	Provider device.Provider `json:"provider"`
	Data     NoteData        `json:"data"`
}

// Stats aggregates the documents matching a filter.
type Stats struct {
	Total       int            `json:"total"`
	ByProvider  map[string]int `json:"byProvider"`
	ByStation   map[string]int `json:"byStation"`
	WithNotes   int            `json:"withNotes"`
	WithHistory int            `json:"withHistory"`
}

// StoreError wraps a failure of the underlying document store.
type StoreError struct {
	Op  string
	Key Key
	Err error
}

func (e *StoreError) Error() string {
	if e.Key.IMEI == "" {
		return fmt.Sprintf("notes %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("notes %s %s: %v", e.Op, e.Key, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

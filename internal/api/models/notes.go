package models

import "github.com/imeilookup/imeilookup/internal/notes"

// SaveNoteRequest is the body of PUT /api/notes/{provider}/{imei}.
type SaveNoteRequest struct {
	Note          string `json:"note"`
	AppendHistory bool   `json:"appendHistory"`
}

// SaveNoteResponse reports whether the note was stored.
type SaveNoteResponse struct {
	Success bool `json:"success"`
}

// NoteResponse carries the current note text, "" when there is none.
type NoteResponse struct {
	Note string `json:"note"`
}

// NoteHistoryResponse lists the current note followed by earlier notes.
type NoteHistoryResponse struct {
	History []notes.HistoryEntry `json:"history"`
}

// NoteListResponse is the result of a filtered listing.
type NoteListResponse struct {
	Items []notes.Summary `json:"items"`
}

// NoteSearchResponse is the result of a text search.
type NoteSearchResponse struct {
	Query   string               `json:"query"`
	Results []notes.SearchResult `json:"results"`
}

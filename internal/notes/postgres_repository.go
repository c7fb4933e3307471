package notes

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/imeilookup/imeilookup/internal/device"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
// History is kept as a JSONB array.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL notes repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// EnsureSchema creates the notes table when it is missing.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS notes (
			provider     TEXT        NOT NULL,
			imei         TEXT        NOT NULL,
			current_note TEXT        NOT NULL DEFAULT '',
			updated_date TEXT        NOT NULL DEFAULT '',
			station      TEXT        NOT NULL DEFAULT '',
			user_name    TEXT        NOT NULL DEFAULT '',
			location     TEXT        NOT NULL DEFAULT '',
			updated_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
			history      JSONB       NOT NULL DEFAULT '[]'::jsonb,
			PRIMARY KEY (provider, imei)
		)
	`

	if _, err := r.pool.Exec(ctx, query); err != nil {
		return &StoreError{Op: "ensure schema", Err: err}
	}
	return nil
}

// Get retrieves a document.
func (r *PostgresRepository) Get(ctx context.Context, key Key) (*NoteData, error) {
	query := `
		SELECT current_note, updated_date, station, user_name, location, updated_at, history
		FROM notes
		WHERE provider = $1 AND imei = $2
	`

	var (
		data        NoteData
		historyJSON []byte
	)

	err := r.pool.QueryRow(ctx, query, key.Provider.String(), key.IMEI).Scan(
		&data.CurrentNote,
		&data.UpdatedDate,
		&data.Station,
		&data.UserName,
		&data.Location,
		&data.UpdatedAt,
		&historyJSON,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoteNotFound
		}
		return nil, &StoreError{Op: "get", Key: key, Err: err}
	}

	data.History = historyFromJSON(historyJSON)
	return &data, nil
}

// Put overwrites a document.
func (r *PostgresRepository) Put(ctx context.Context, key Key, data NoteData) error {
	query := `
		INSERT INTO notes (provider, imei, current_note, updated_date, station, user_name, location, updated_at, history)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now(), $8)
		ON CONFLICT (provider, imei) DO UPDATE SET
			current_note = EXCLUDED.current_note,
			updated_date = EXCLUDED.updated_date,
			station = EXCLUDED.station,
			user_name = EXCLUDED.user_name,
			location = EXCLUDED.location,
			updated_at = EXCLUDED.updated_at,
			history = EXCLUDED.history
	`

	history := data.History
	if history == nil {
		history = []HistoryEntry{}
	}
	historyJSON, err := json.Marshal(history)
	if err != nil {
		return &StoreError{Op: "put", Key: key, Err: err}
	}

	_, err = r.pool.Exec(ctx, query,
		key.Provider.String(), key.IMEI,
		data.CurrentNote, data.UpdatedDate, data.Station, data.UserName, data.Location,
		historyJSON,
	)
	if err != nil {
		return &StoreError{Op: "put", Key: key, Err: err}
	}
	return nil
}

// Merge updates the note fields, leaving history untouched.
func (r *PostgresRepository) Merge(ctx context.Context, key Key, update Update) error {
	query := `
		INSERT INTO notes (provider, imei, current_note, updated_date, station, user_name, location, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now())
		ON CONFLICT (provider, imei) DO UPDATE SET
			current_note = EXCLUDED.current_note,
			updated_date = EXCLUDED.updated_date,
			station = EXCLUDED.station,
			user_name = EXCLUDED.user_name,
			location = EXCLUDED.location,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.pool.Exec(ctx, query,
		key.Provider.String(), key.IMEI,
		update.CurrentNote, update.UpdatedDate, update.Station, update.UserName, update.Location,
	)
	if err != nil {
		return &StoreError{Op: "merge", Key: key, Err: err}
	}
	return nil
}

// Scan returns every document ordered by provider, then IMEI.
func (r *PostgresRepository) Scan(ctx context.Context) ([]Document, error) {
	query := `
		SELECT provider, imei, current_note, updated_date, station, user_name, location, updated_at, history
		FROM notes
		ORDER BY provider, imei
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, &StoreError{Op: "scan", Err: err}
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var (
			doc         Document
			provider    string
			updatedAt   time.Time
			historyJSON []byte
		)

		err := rows.Scan(
			&provider,
			&doc.Key.IMEI,
			&doc.Data.CurrentNote,
			&doc.Data.UpdatedDate,
			&doc.Data.Station,
			&doc.Data.UserName,
			&doc.Data.Location,
			&updatedAt,
			&historyJSON,
		)
		if err != nil {
			return nil, &StoreError{Op: "scan", Err: err}
		}

		doc.Key.Provider = device.Provider(provider)
		doc.Data.UpdatedAt = updatedAt
		doc.Data.History = historyFromJSON(historyJSON)
		docs = append(docs, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, &StoreError{Op: "scan", Err: err}
	}

	return docs, nil
}

// historyFromJSON accepts both the array form and imported keyed maps.
func historyFromJSON(raw []byte) []HistoryEntry {
	if len(raw) == 0 {
		return []HistoryEntry{}
	}
	v, err := device.DecodeValue(raw)
	if err != nil {
		return []HistoryEntry{}
	}
	return decodeHistory(v)
}

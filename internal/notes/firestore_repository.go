package notes

import (
	"context"
	"errors"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/imeilookup/imeilookup/internal/device"
)

// Firestore layout: notes/{provider}/imei/{imei}.
const (
	rootCollection = "notes"
	imeiCollection = "imei"
)

// FirestoreRepository is a Cloud Firestore implementation of Repository.
type FirestoreRepository struct {
	client *firestore.Client
}

// NewFirestoreRepository creates a Firestore-backed notes repository.
func NewFirestoreRepository(client *firestore.Client) *FirestoreRepository {
	return &FirestoreRepository{client: client}
}

func (r *FirestoreRepository) doc(key Key) *firestore.DocumentRef {
	return r.client.Collection(rootCollection).Doc(key.Provider.String()).Collection(imeiCollection).Doc(key.IMEI)
}

// Get retrieves a document.
func (r *FirestoreRepository) Get(ctx context.Context, key Key) (*NoteData, error) {
	snap, err := r.doc(key).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrNoteNotFound
		}
		return nil, &StoreError{Op: "get", Key: key, Err: err}
	}
	if !snap.Exists() {
		return nil, ErrNoteNotFound
	}

	data := noteFromFields(snap.Data())
	return &data, nil
}

// Put overwrites a document with a server-assigned updatedAt.
func (r *FirestoreRepository) Put(ctx context.Context, key Key, data NoteData) error {
	fields := map[string]interface{}{
		"currentNote": data.CurrentNote,
		"updatedAt":   firestore.ServerTimestamp,
		"updatedDate": data.UpdatedDate,
		"station":     data.Station,
		"userName":    data.UserName,
		"location":    data.Location,
		"history":     firestoreHistory(data.History),
	}

	if _, err := r.doc(key).Set(ctx, fields); err != nil {
		return &StoreError{Op: "put", Key: key, Err: err}
	}
	return nil
}

// Merge updates the note fields, leaving history as stored.
func (r *FirestoreRepository) Merge(ctx context.Context, key Key, update Update) error {
	fields := map[string]interface{}{
		"currentNote": update.CurrentNote,
		"updatedAt":   firestore.ServerTimestamp,
		"updatedDate": update.UpdatedDate,
		"station":     update.Station,
		"userName":    update.UserName,
		"location":    update.Location,
	}

	if _, err := r.doc(key).Set(ctx, fields, firestore.MergeAll); err != nil {
		return &StoreError{Op: "merge", Key: key, Err: err}
	}
	return nil
}

// Scan reads the imei collection group, which spans every provider.
func (r *FirestoreRepository) Scan(ctx context.Context) ([]Document, error) {
	iter := r.client.CollectionGroup(imeiCollection).Documents(ctx)
	defer iter.Stop()

	var docs []Document
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, &StoreError{Op: "scan", Err: err}
		}

		provider, ok := providerOf(snap.Ref)
		if !ok {
			continue
		}

		docs = append(docs, Document{
			Key:  Key{Provider: provider, IMEI: snap.Ref.ID},
			Data: noteFromFields(snap.Data()),
		})
	}
	return docs, nil
}

// providerOf extracts {provider} from notes/{provider}/imei/{imei}.
// Documents of other imei collections or unknown providers are skipped.
func providerOf(ref *firestore.DocumentRef) (device.Provider, bool) {
	if ref == nil || ref.Parent == nil {
		return "", false
	}
	providerDoc := ref.Parent.Parent
	if providerDoc == nil || providerDoc.Parent == nil || providerDoc.Parent.ID != rootCollection {
		return "", false
	}
	return device.ParseProvider(providerDoc.ID)
}

func noteFromFields(fields map[string]interface{}) NoteData {
	rec := device.Record(fields)
	return NoteData{
		CurrentNote: rec.Lookup("currentNote"),
		UpdatedDate: rec.Lookup("updatedDate"),
		Station:     rec.Lookup("station"),
		UserName:    rec.Lookup("userName"),
		Location:    rec.Lookup("location"),
		UpdatedAt:   decodeTimestamp(fields["updatedAt"]),
		History:     decodeHistory(fields["history"]),
	}
}

func firestoreHistory(entries []HistoryEntry) []map[string]interface{} {
	out := encodeHistory(entries)
	for _, e := range out {
		if ts, ok := e["timestamp"].(time.Time); ok && ts.IsZero() {
			e["timestamp"] = nil
		}
	}
	return out
}

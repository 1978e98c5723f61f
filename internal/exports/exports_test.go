package exports_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/JaimeStill/labeler/internal/evidences"
	"github.com/JaimeStill/labeler/internal/exports"
	"github.com/JaimeStill/labeler/internal/relations"
	"github.com/JaimeStill/labeler/pkg/lifecycle"
	"github.com/JaimeStill/labeler/pkg/storage"
)

type memStore struct {
	mu        sync.Mutex
	blobs     map[string][]byte
	types     map[string]string
	uploadErr error
}

func newMemStore() *memStore {
	return &memStore{blobs: map[string][]byte{}, types: map[string]string{}}
}

func (s *memStore) Start(*lifecycle.Coordinator) error { return nil }

func (s *memStore) Upload(_ context.Context, key string, r io.Reader, contentType string) error {
	if s.uploadErr != nil {
		return s.uploadErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[key] = data
	s.types[key] = contentType
	return nil
}

func (s *memStore) Download(_ context.Context, key string) (*storage.BlobResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.blobs[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &storage.BlobResult{Body: io.NopCloser(bytes.NewReader(data)), ContentType: s.types[key], ContentLength: int64(len(data))}, nil
}

func (s *memStore) Find(_ context.Context, key string) (*storage.BlobMeta, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.blobs[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &storage.BlobMeta{Key: key, ContentType: s.types[key], ContentLength: int64(len(data))}, nil
}

func (s *memStore) List(context.Context, string, string, int32) (*storage.BlobList, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := &storage.BlobList{}
	for key, data := range s.blobs {
		list.Blobs = append(list.Blobs, storage.BlobMeta{Key: key, ContentLength: int64(len(data))})
	}
	return list, nil
}

func (s *memStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, key)
	return nil
}

type mockRelations struct {
	rels []relations.Relation
}

func (m mockRelations) All(context.Context) ([]relations.Relation, error) {
	return m.rels, nil
}

func (m mockRelations) Find(_ context.Context, id int64) (*relations.Relation, error) {
	for _, r := range m.rels {
		if r.ID == id {
			return &r, nil
		}
	}
	return nil, relations.ErrNotFound
}

type mockEvidences struct {
	byRelation map[int64][]evidences.Evidence
	err        error
}

func (m mockEvidences) EachLabeled(_ context.Context, relationID int64, fn func(evidences.Evidence) error) error {
	if m.err != nil {
		return m.err
	}
	for _, e := range m.byRelation[relationID] {
		if err := fn(e); err != nil {
			return err
		}
	}
	return nil
}

func strPtr(s string) *string { return &s }

var when = time.Date(2024, 3, 9, 14, 5, 0, 0, time.UTC)

func fixtures() (mockRelations, mockEvidences) {
	rels := mockRelations{rels: []relations.Relation{
		{ID: 3, Name: "born_in", LeftEntityKind: "person", RightEntityKind: "location"},
		{ID: 4, Name: "works_for", LeftEntityKind: "person", RightEntityKind: "organization"},
	}}
	evs := mockEvidences{byRelation: map[int64][]evidences.Evidence{
		3: {
			{ID: 5, RelationID: 3, SegmentID: 10, DocumentID: 2, LeftEOID: 31, LeftAlias: "John Smith", RightEOID: 32, RightAlias: "Paris",
				Label: strPtr(evidences.YesRelation), Judge: strPtr("alice"), ModificationDate: when},
			{ID: 9, RelationID: 3, SegmentID: 11, DocumentID: 2, LeftEOID: 33, LeftAlias: "He", RightEOID: 34, RightAlias: "Rome",
				Label: strPtr(evidences.NoRelation), ModificationDate: when},
		},
	}}
	return rels, evs
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func readRecords(t *testing.T, data []byte) []exports.Record {
	t.Helper()
	var out []exports.Record
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		var r exports.Record
		if err := json.Unmarshal(sc.Bytes(), &r); err != nil {
			t.Fatalf("decode line %q: %v", sc.Text(), err)
		}
		out = append(out, r)
	}
	return out
}

func TestExport(t *testing.T) {
	rels, evs := fixtures()
	store := newMemStore()
	sys := exports.New(rels, evs, store, discard(), 2)

	exp, err := sys.Export(context.Background(), 3)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	if exp.Records != 2 || exp.RelationID != 3 || exp.Relation != "born_in" {
		t.Errorf("export = %+v", exp)
	}
	if !strings.HasPrefix(exp.Key, "exports/relation-3/") || !strings.HasSuffix(exp.Key, ".jsonl") {
		t.Errorf("key = %q", exp.Key)
	}
	if store.types[exp.Key] != exports.ContentType {
		t.Errorf("content type = %q", store.types[exp.Key])
	}
	if exp.Size != int64(len(store.blobs[exp.Key])) {
		t.Errorf("size = %d, want %d", exp.Size, len(store.blobs[exp.Key]))
	}

	records := readRecords(t, store.blobs[exp.Key])
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2", len(records))
	}

	want := exports.Record{
		Relation: "born_in", RelationID: 3, EvidenceID: 5, DocumentID: 2, SegmentID: 10,
		LeftEOID: 31, LeftAlias: "John Smith", RightEOID: 32, RightAlias: "Paris",
		Label: "YESRELATION", Judge: "alice", ModificationDate: when,
	}
	if !records[0].ModificationDate.Equal(when) {
		t.Errorf("record 0 modification date = %v, want %v", records[0].ModificationDate, when)
	}
	want.ModificationDate = records[0].ModificationDate
	if records[0] != want {
		t.Errorf("record 0 = %+v, want %+v", records[0], want)
	}
	if records[1].Judge != "" || records[1].Label != "NORELATION" {
		t.Errorf("record 1 = %+v", records[1])
	}
}

func TestExportEmptyRelation(t *testing.T) {
	rels, evs := fixtures()
	store := newMemStore()

	exp, err := exports.New(rels, evs, store, discard(), 1).Export(context.Background(), 4)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if exp.Records != 0 || exp.Size != 0 {
		t.Errorf("records = %d, size = %d; want 0", exp.Records, exp.Size)
	}
	if data, ok := store.blobs[exp.Key]; !ok || len(data) != 0 {
		t.Errorf("blob = %q, %v; want empty blob", data, ok)
	}
}

func TestExportErrors(t *testing.T) {
	errStream := errors.New("stream failed")
	errUpload := errors.New("upload failed")

	tests := []struct {
		name       string
		relationID int64
		streamErr  error
		uploadErr  error
		want       error
	}{
		{"unknown relation", 99, nil, nil, relations.ErrNotFound},
		{"stream failure", 3, errStream, nil, errStream},
		{"upload failure", 3, nil, errUpload, errUpload},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rels, evs := fixtures()
			evs.err = tt.streamErr
			store := newMemStore()
			store.uploadErr = tt.uploadErr

			_, err := exports.New(rels, evs, store, discard(), 1).Export(context.Background(), tt.relationID)
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestExportAll(t *testing.T) {
	rels, evs := fixtures()
	store := newMemStore()

	exps, err := exports.New(rels, evs, store, discard(), 2).ExportAll(context.Background())
	if err != nil {
		t.Fatalf("ExportAll: %v", err)
	}

	if len(exps) != 2 {
		t.Fatalf("exports = %d, want 2", len(exps))
	}
	if exps[0].RelationID != 3 || exps[0].Records != 2 {
		t.Errorf("export 0 = %+v", exps[0])
	}
	if exps[1].RelationID != 4 || exps[1].Records != 0 {
		t.Errorf("export 1 = %+v", exps[1])
	}
	if len(store.blobs) != 2 {
		t.Errorf("blobs = %d, want 2", len(store.blobs))
	}
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"relation not found", relations.ErrNotFound, http.StatusNotFound},
		{"invalid id", exports.ErrInvalidID, http.StatusBadRequest},
		{"invalid key", storage.ErrInvalidKey, http.StatusBadRequest},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exports.MapHTTPStatus(tt.err); got != tt.want {
				t.Errorf("MapHTTPStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}

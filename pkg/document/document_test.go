package document

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	rerrors "github.com/matzehuels/rundown/pkg/errors"
	"github.com/matzehuels/rundown/pkg/observability"
	"github.com/matzehuels/rundown/pkg/rundown"
	"github.com/matzehuels/rundown/pkg/store"
)

func TestDecodeLegacyDocument(t *testing.T) {
	// Written before groups, blocks and lanes existed.
	legacy := `{
		"id": "p1",
		"name": "Morning Show",
		"beats": [
			{"id": "b1", "title": "Open", "typeId": "opening", "order": 1, "position": {"x": 100, "y": 100}}
		]
	}`
	p, err := Decode([]byte(legacy))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if p.BeatGroups == nil || p.Blocks == nil || p.Lanes == nil {
		t.Errorf("missing arrays not defaulted: %+v", p)
	}
	if len(p.BeatTypes) != len(rundown.DefaultBeatTypes()) {
		t.Errorf("beat types = %d", len(p.BeatTypes))
	}
	if len(p.Beats) != 1 || p.Beats[0].Title != "Open" {
		t.Errorf("beats = %+v", p.Beats)
	}
}

func TestDecodeNullArrays(t *testing.T) {
	doc := `{
		"id": "p1", "name": "x",
		"beats": null,
		"beatGroups": [{"id": "g1", "beatIds": null, "position": {"x": 0, "y": 0}}],
		"blocks": null,
		"lanes": []
	}`
	p, err := Decode([]byte(doc))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if p.Beats == nil || p.Blocks == nil || p.BeatGroups[0].BeatIDs == nil {
		t.Errorf("null arrays not defaulted: %+v", p)
	}
}

func TestDecodeInvalid(t *testing.T) {
	tests := []struct {
		name  string
		doc   string
		field string
	}{
		{"not json", `{"id":`, ""},
		{"missing id", `{"name": "x"}`, "id"},
		{"empty beat id", `{"id": "p", "name": "x", "beats": [{"id": ""}]}`, "beats.0.id"},
		{"bad position", `{"id": "p", "name": "x", "blocks": [{"id": "b", "position": {"x": "left", "y": 0}}]}`, "blocks.0.position.x"},
		{"negative duration", `{"id": "p", "name": "x", "beats": [{"id": "b", "duration": -1}]}`, "beats.0.duration"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.doc))
			if !rerrors.Is(err, rerrors.ErrCodeInvalidDocument) {
				t.Fatalf("err = %v, want INVALID_DOCUMENT", err)
			}
			if tt.field == "" {
				return
			}
			var ve *ValidationErrors
			if !errors.As(err, &ve) {
				t.Fatalf("err does not wrap ValidationErrors: %v", err)
			}
			found := false
			for _, fe := range ve.Errors {
				if strings.Contains(fe.Field+" "+fe.Message, tt.field) {
					found = true
				}
			}
			if !found {
				t.Errorf("no error on %s in %v", tt.field, ve)
			}
		})
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	e := rundown.NewEngine()

	p := e.NewProject("Evening News")
	p, b1 := e.CreateBeat(p, "news")
	p, b2 := e.CreateBeat(p, "weather")
	g := e.CreateBeatGroup(p, "Top", []string{b1, b2})
	p = e.AddBeatGroup(p, g)

	if err := Save(ctx, s, DefaultKey, p); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(ctx, s, DefaultKey)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.ID != p.ID || len(got.Beats) != 2 {
		t.Fatalf("loaded %+v", got)
	}
	if !reflect.DeepEqual(got.BeatGroups[0].BeatIDs, []string{b1, b2}) {
		t.Errorf("group members = %v", got.BeatGroups[0].BeatIDs)
	}
	if !got.UpdatedAt.Equal(p.UpdatedAt) {
		t.Errorf("UpdatedAt = %v, want %v", got.UpdatedAt, p.UpdatedAt)
	}
	if v := rundown.CheckInvariants(got); len(v) != 0 {
		t.Errorf("loaded project inconsistent: %v", v)
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(context.Background(), store.NewMemoryStore(), DefaultKey)
	if !rerrors.Is(err, rerrors.ErrCodeNotFound) {
		t.Errorf("err = %v, want NOT_FOUND", err)
	}
}

func TestInvalidKey(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	if err := Save(ctx, s, "", rundown.Project{}); !rerrors.Is(err, rerrors.ErrCodeInvalidKey) {
		t.Errorf("Save err = %v", err)
	}
	if _, err := Load(ctx, s, "a/b"); !rerrors.Is(err, rerrors.ErrCodeInvalidKey) {
		t.Errorf("Load err = %v", err)
	}
}

type failingStore struct{}

func (failingStore) Set(context.Context, string, []byte) error { return errors.New("disk full") }
func (failingStore) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("disk gone")
}
func (failingStore) Delete(context.Context, string) error { return nil }
func (failingStore) Close() error                         { return nil }

func TestStorageFailuresSurface(t *testing.T) {
	ctx := context.Background()
	s := failingStore{}

	err := Save(ctx, s, DefaultKey, rundown.NewEngine().NewProject("x"))
	if !rerrors.Is(err, rerrors.ErrCodeStorage) {
		t.Errorf("Save err = %v, want STORAGE_ERROR", err)
	}
	_, err = Load(ctx, s, DefaultKey)
	if !rerrors.Is(err, rerrors.ErrCodeStorage) {
		t.Errorf("Load err = %v, want STORAGE_ERROR", err)
	}
}

type recordingHooks struct {
	observability.NoopStoreHooks
	loads, saves []string
}

func (h *recordingHooks) OnLoad(_ context.Context, backend, key string, _ int, _ time.Duration, _ error) {
	h.loads = append(h.loads, backend+":"+key)
}

func (h *recordingHooks) OnSave(_ context.Context, backend, key string, _ int, _ time.Duration, _ error) {
	h.saves = append(h.saves, backend+":"+key)
}

func TestStoreHooks(t *testing.T) {
	h := &recordingHooks{}
	observability.SetStoreHooks(h)
	defer observability.Reset()

	ctx := context.Background()
	s := store.NewMemoryStore()
	_ = Save(ctx, s, "show", rundown.NewEngine().NewProject("x"))
	_, _ = Load(ctx, s, "show")

	if !reflect.DeepEqual(h.saves, []string{"memory:show"}) || !reflect.DeepEqual(h.loads, []string{"memory:show"}) {
		t.Errorf("hooks saw saves=%v loads=%v", h.saves, h.loads)
	}
}

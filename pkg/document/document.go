// Package document persists whole rundown projects through a [store.Store].
//
// A project is serialized as one JSON document and written under a single
// key (DefaultKey unless the caller picks another). Every save replaces the
// whole document. Loading validates the JSON against an embedded schema and
// fills in arrays that older documents may lack, so the editing core always
// receives a fully populated project.
//
// # Usage
//
//	p, err := document.Load(ctx, s, document.DefaultKey)
//	if errors.Is(err, errors.ErrCodeNotFound) {
//	    p = engine.NewProject("Untitled")
//	}
//	// ... edit p ...
//	err = document.Save(ctx, s, document.DefaultKey, p)
//
// Save failures are returned to the caller as STORAGE_ERROR and never
// retried here.
package document

import (
	"context"
	"encoding/json"
	"slices"
	"time"

	rerrors "github.com/matzehuels/rundown/pkg/errors"
	"github.com/matzehuels/rundown/pkg/observability"
	"github.com/matzehuels/rundown/pkg/rundown"
	"github.com/matzehuels/rundown/pkg/store"
)

// DefaultKey is the well-known key a project is stored under.
const DefaultKey = "rundown-project"

// Decode validates data and unmarshals it into a project with all arrays
// populated.
func Decode(data []byte) (rundown.Project, error) {
	if err := Validate(data); err != nil {
		return rundown.Project{}, err
	}
	var p rundown.Project
	if err := json.Unmarshal(data, &p); err != nil {
		return rundown.Project{}, rerrors.Wrap(rerrors.ErrCodeInvalidDocument, err, "decode project")
	}
	return Normalize(p), nil
}

// Encode serializes p as indented JSON.
func Encode(p rundown.Project) ([]byte, error) {
	data, err := json.MarshalIndent(Normalize(p), "", "  ")
	if err != nil {
		return nil, rerrors.Wrap(rerrors.ErrCodeInternal, err, "encode project")
	}
	return data, nil
}

// Normalize replaces nil arrays with empty ones and installs the default
// beat type catalog when a document carries none. The input is not modified.
func Normalize(p rundown.Project) rundown.Project {
	p.Beats = orEmpty(p.Beats)
	if len(p.BeatTypes) == 0 {
		p.BeatTypes = rundown.DefaultBeatTypes()
	}

	p.BeatGroups = orEmpty(slices.Clone(p.BeatGroups))
	for i := range p.BeatGroups {
		p.BeatGroups[i].BeatIDs = orEmpty(p.BeatGroups[i].BeatIDs)
	}
	p.Blocks = orEmpty(slices.Clone(p.Blocks))
	for i := range p.Blocks {
		p.Blocks[i].GroupIDs = orEmpty(p.Blocks[i].GroupIDs)
	}
	p.Lanes = orEmpty(slices.Clone(p.Lanes))
	for i := range p.Lanes {
		p.Lanes[i].BlockIDs = orEmpty(p.Lanes[i].BlockIDs)
	}
	return p
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// Load reads and decodes the project stored under key. A missing key is a
// NOT_FOUND error.
func Load(ctx context.Context, s store.Store, key string) (rundown.Project, error) {
	if err := rerrors.ValidateKey(key); err != nil {
		return rundown.Project{}, err
	}
	start := time.Now()
	data, ok, err := s.Get(ctx, key)
	observability.Store().OnLoad(ctx, string(store.BackendOf(s)), key, len(data), time.Since(start), err)
	if err != nil {
		if rerrors.GetCode(err) == "" {
			err = rerrors.Wrap(rerrors.ErrCodeStorage, err, "load %s", key)
		}
		return rundown.Project{}, err
	}
	if !ok {
		return rundown.Project{}, rerrors.New(rerrors.ErrCodeNotFound, "no project stored under %q", key)
	}
	return Decode(data)
}

// Save encodes p and replaces whatever is stored under key.
func Save(ctx context.Context, s store.Store, key string, p rundown.Project) error {
	if err := rerrors.ValidateKey(key); err != nil {
		return err
	}
	data, err := Encode(p)
	if err != nil {
		return err
	}
	start := time.Now()
	err = s.Set(ctx, key, data)
	observability.Store().OnSave(ctx, string(store.BackendOf(s)), key, len(data), time.Since(start), err)
	if err != nil && rerrors.GetCode(err) == "" {
		return rerrors.Wrap(rerrors.ErrCodeStorage, err, "save %s", key)
	}
	return err
}

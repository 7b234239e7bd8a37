package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/matzehuels/rundown/pkg/buildinfo"
	"github.com/matzehuels/rundown/pkg/document"
	"github.com/matzehuels/rundown/pkg/editor"
	rerrors "github.com/matzehuels/rundown/pkg/errors"
	"github.com/matzehuels/rundown/pkg/fountain"
	"github.com/matzehuels/rundown/pkg/render"
)

// =============================================================================
// Health
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

// =============================================================================
// Project
// =============================================================================

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	p, err := s.ed.Load(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	data, err := document.Encode(p)
	if err != nil {
		respondError(w, err)
		return
	}
	respondBytes(w, "application/json", data)
}

func (s *Server) handlePutProject(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		respondError(w, err)
		return
	}
	p, err := document.Decode(body)
	if err != nil {
		respondError(w, err)
		return
	}
	p, err = s.ed.Replace(r.Context(), p)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

// =============================================================================
// Commands
// =============================================================================

// handleCommands accepts a single command object or an array of commands.
// An array is applied as one batch.
func (s *Server) handleCommands(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		respondError(w, err)
		return
	}
	cmds, err := decodeCommands(body)
	if err != nil {
		respondError(w, err)
		return
	}
	res, err := s.ed.Apply(r.Context(), cmds...)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

func decodeCommands(body []byte) ([]editor.Command, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, rerrors.New(rerrors.ErrCodeInvalidInput, "request body is empty")
	}

	var cmds []editor.Command
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &cmds); err != nil {
			return nil, rerrors.Wrap(rerrors.ErrCodeInvalidInput, err, "decode commands")
		}
	} else {
		var c editor.Command
		if err := json.Unmarshal(trimmed, &c); err != nil {
			return nil, rerrors.Wrap(rerrors.ErrCodeInvalidInput, err, "decode command")
		}
		cmds = append(cmds, c)
	}
	if len(cmds) == 0 {
		return nil, rerrors.New(rerrors.ErrCodeInvalidInput, "no commands given")
	}
	return cmds, nil
}

// =============================================================================
// Interchange
// =============================================================================

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	p, err := s.ed.Load(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondBytes(w, "text/plain; charset=utf-8", []byte(fountain.String(p)))
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		respondError(w, err)
		return
	}
	p, err := fountain.Parse(string(body), s.ed.Engine())
	if err != nil {
		respondError(w, err)
		return
	}
	p, err = s.ed.Replace(r.Context(), p)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

// =============================================================================
// Rendering
// =============================================================================

func (s *Server) handleScript(w http.ResponseWriter, r *http.Request) {
	p, err := s.ed.Load(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondBytes(w, "text/markdown; charset=utf-8", []byte(render.Markdown(p)))
}

func (s *Server) handleDOT(w http.ResponseWriter, r *http.Request) {
	dot, err := s.dot(r)
	if err != nil {
		respondError(w, err)
		return
	}
	respondBytes(w, "text/vnd.graphviz; charset=utf-8", []byte(dot))
}

func (s *Server) handleSVG(w http.ResponseWriter, r *http.Request) {
	dot, err := s.dot(r)
	if err != nil {
		respondError(w, err)
		return
	}
	svg, err := s.opts.Render(r.Context(), dot)
	if err != nil {
		respondError(w, rerrors.Wrap(rerrors.ErrCodeInternal, err, "render svg"))
		return
	}
	respondBytes(w, "image/svg+xml", svg)
}

func (s *Server) dot(r *http.Request) (string, error) {
	q := r.URL.Query()
	opts := render.Options{
		Detailed: flag(q, "detailed"),
		Canvas:   flag(q, "canvas"),
	}
	p, err := s.ed.Load(r.Context())
	if err != nil {
		return "", err
	}
	return render.ToDOT(p, opts), nil
}

// =============================================================================
// Helpers
// =============================================================================

func readBody(r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, rerrors.New(rerrors.ErrCodeInvalidInput, "request body exceeds %d bytes", tooLarge.Limit)
		}
		return nil, rerrors.Wrap(rerrors.ErrCodeNetwork, err, "read request body")
	}
	return body, nil
}

// flag parses a boolean query parameter; a bare "?detailed" counts as true.
func flag(q url.Values, key string) bool {
	if !q.Has(key) {
		return false
	}
	v := q.Get(key)
	if v == "" {
		return true
	}
	b, err := strconv.ParseBool(v)
	return err == nil && b
}

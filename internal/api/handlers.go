package api

import (
	stderrors "errors"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/procsheet/pkg/buildinfo"
	"github.com/matzehuels/procsheet/pkg/diagram"
	"github.com/matzehuels/procsheet/pkg/errors"
	"github.com/matzehuels/procsheet/pkg/pipeline"
	"github.com/matzehuels/procsheet/pkg/store"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
		"commit":  buildinfo.Commit,
	})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	d, err := s.readDiagram(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.export(w, r, d)
}

func (s *Server) handleExportDiagram(w http.ResponseWriter, r *http.Request) {
	d, err := pipeline.LoadRecord(r.Context(), s.Store, chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.export(w, r, d)
}

func (s *Server) export(w http.ResponseWriter, r *http.Request, d *diagram.Diagram) {
	opts, err := s.options(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.Runner.Execute(r.Context(), d, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeWorkbook(w, res.Export, res.CacheInfo.LayoutHit)
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	d, err := s.readDiagram(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	opts, err := s.options(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	laid, err := s.Runner.Layout(r.Context(), d, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, laid)
}

func (s *Server) handleLint(w http.ResponseWriter, r *http.Request) {
	d, err := s.readDiagram(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	findings := diagram.Lint(d)
	if findings == nil {
		findings = []diagram.Finding{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"findings": findings})
}

func (s *Server) handleListDiagrams(w http.ResponseWriter, r *http.Request) {
	list, err := s.Store.List(r.Context(), store.Filter{Project: r.URL.Query().Get("project")})
	if err != nil {
		s.writeError(w, r, storeError(err, "list diagrams"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"diagrams": list})
}

func (s *Server) handlePutDiagram(w http.ResponseWriter, r *http.Request) {
	d, err := s.readDiagram(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if d.ID != "" {
		if err := errors.ValidateDiagramID(d.ID); err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	stored, err := s.Store.Put(r.Context(), d)
	if err != nil {
		s.writeError(w, r, storeError(err, "store diagram"))
		return
	}
	w.Header().Set("Location", "/api/v1/diagrams/"+stored.ID)
	writeJSON(w, http.StatusCreated, stored)
}

func (s *Server) handleGetDiagram(w http.ResponseWriter, r *http.Request) {
	d, err := pipeline.LoadRecord(r.Context(), s.Store, chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleDeleteDiagram(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := errors.ValidateDiagramID(id); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.Store.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, storeError(err, "diagram %s", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// readDiagram decodes the request body as JSON or YAML.
func (s *Server) readDiagram(w http.ResponseWriter, r *http.Request) (*diagram.Diagram, error) {
	format := diagram.FormatJSON
	if ct := r.Header.Get("Content-Type"); ct != "" {
		mt, _, err := mime.ParseMediaType(ct)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeUnsupported, err, "content type %q", ct)
		}
		switch mt {
		case "application/json":
		case "application/yaml", "application/x-yaml", "text/yaml":
			format = diagram.FormatYAML
		default:
			return nil, errors.New(errors.ErrCodeUnsupported, "content type %q (want application/json or application/yaml)", mt)
		}
	}

	limit := s.MaxBodyBytes
	if limit <= 0 {
		limit = DefaultMaxBodyBytes
	}
	d, err := pipeline.LoadReader(http.MaxBytesReader(w, r.Body, limit), format)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "request body exceeds %d bytes", limit)
		}
		return nil, err
	}
	return d, nil
}

// options applies query overrides to the server's pipeline defaults.
func (s *Server) options(r *http.Request) (pipeline.Options, error) {
	opts := s.Options
	q := r.URL.Query()
	if mode := q.Get("layout"); mode != "" {
		opts.LayoutMode = pipeline.LayoutMode(mode)
		if !pipeline.ValidLayoutModes[opts.LayoutMode] {
			return opts, errors.New(errors.ErrCodeInvalidInput, "layout must be auto, always or never, got %q", mode)
		}
	}
	if v := q.Get("refresh"); v != "" {
		refresh, err := strconv.ParseBool(v)
		if err != nil {
			return opts, errors.New(errors.ErrCodeInvalidInput, "refresh must be a boolean, got %q", v)
		}
		opts.Refresh = refresh
	}
	return opts, nil
}

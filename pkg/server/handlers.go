package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/matzehuels/mosaic/pkg/dataset"
	"github.com/matzehuels/mosaic/pkg/errors"
	"github.com/matzehuels/mosaic/pkg/mosaic"
	"github.com/matzehuels/mosaic/pkg/observability"
	"github.com/matzehuels/mosaic/pkg/pipeline"
)

// Request bodies.
type (
	subCategoryRequest struct {
		ID   string `json:"id,omitempty"`
		Name string `json:"name,omitempty"`
		Fill string `json:"fill,omitempty"`
	}
	categoryRequest struct {
		Name  string  `json:"name"`
		Value float64 `json:"value"`
	}
	valueRequest struct {
		Value *float64 `json:"value"`
	}
)

// handleHealth reports liveness, plus the entry count of in-process caches.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{"status": "ok"}
	if sized, ok := s.runner.Cache.(interface{ Len() int }); ok {
		body["cache_entries"] = sized.Len()
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	charts, err := s.store.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"charts": charts})
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var def mosaic.Definition
	if demo := r.URL.Query().Get("demo"); demo != "" {
		d, ok := dataset.Builtin(demo)
		if !ok {
			writeError(w, errNotFound("unknown demo %q", demo))
			return
		}
		def = d
	} else if err := decodeBody(w, r, &def); err != nil {
		writeError(w, err)
		return
	}

	if err := dataset.Validate(def); err != nil {
		writeError(w, err)
		return
	}
	if _, err := def.Build(); err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidDataset, err, "%v", err))
		return
	}

	rec, err := s.store.Create(r.Context(), def)
	if err != nil {
		writeError(w, err)
		return
	}
	s.logger.Debug("chart created", "id", rec.ID, "title", def.Title)
	w.Header().Set("Location", "/charts/"+rec.ID)
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.Get(r.Context(), param(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := param(r, "id")
	if err := s.store.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	observability.Server().OnChartMutated(r.Context(), id, "delete")
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAddSubCategory(w http.ResponseWriter, r *http.Request) {
	var req subCategoryRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	s.mutate(w, r, "add_subcategory", func(c *mosaic.Chart) error {
		id := req.ID
		if id == "" {
			id = unusedSubID(c)
		} else if _, ok := c.SubCategory(id); ok {
			return errors.New(errors.ErrCodeConflict, "subcategory %q already exists", id)
		}
		sub := c.AddSubCategoryWithID(id, req.Fill)
		if req.Name != "" {
			sub.SetName(req.Name)
		}
		return nil
	})
}

func (s *Server) handleAddCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	s.mutate(w, r, "add_category", func(c *mosaic.Chart) error {
		if _, ok := c.Category(req.Name); ok {
			return errors.New(errors.ErrCodeConflict, "category %q already exists", req.Name)
		}
		c.AddCategory(req.Name).SetValue(req.Value)
		return nil
	})
}

func (s *Server) handleSetCategoryValue(w http.ResponseWriter, r *http.Request) {
	v, err := decodeValue(w, r)
	if err != nil {
		writeError(w, err)
		return
	}
	name := param(r, "name")
	s.mutate(w, r, "set_category_value", func(c *mosaic.Chart) error {
		cat, ok := c.Category(name)
		if !ok {
			return errNotFound("category %q not found", name)
		}
		cat.SetValue(v)
		return nil
	})
}

func (s *Server) handleSetSubCategoryValue(w http.ResponseWriter, r *http.Request) {
	v, err := decodeValue(w, r)
	if err != nil {
		writeError(w, err)
		return
	}
	name, subID := param(r, "name"), param(r, "sub")
	s.mutate(w, r, "set_subcategory_value", func(c *mosaic.Chart) error {
		cat, ok := c.Category(name)
		if !ok {
			return errNotFound("category %q not found", name)
		}
		sub, ok := c.SubCategory(subID)
		if !ok {
			return errNotFound("subcategory %q not found", subID)
		}
		cat.SetSubCategoryValue(sub, v)
		return nil
	})
}

func (s *Server) handleAddYCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	s.mutate(w, r, "add_ycategory", func(c *mosaic.Chart) error {
		if _, ok := c.YCategory(req.Name); ok {
			return errors.New(errors.ErrCodeConflict, "y-category %q already exists", req.Name)
		}
		c.AddYCategory(req.Name, req.Value)
		return nil
	})
}

func (s *Server) handleSetYCategoryValue(w http.ResponseWriter, r *http.Request) {
	v, err := decodeValue(w, r)
	if err != nil {
		writeError(w, err)
		return
	}
	name := param(r, "name")
	s.mutate(w, r, "set_ycategory_value", func(c *mosaic.Chart) error {
		y, ok := c.YCategory(name)
		if !ok {
			return errNotFound("y-category %q not found", name)
		}
		y.SetValue(v)
		return nil
	})
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.Get(r.Context(), param(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	opts, err := layoutOptions(r)
	if err != nil {
		writeError(w, err)
		return
	}
	l, err := s.runner.Layout(r.Context(), rec.Definition, opts)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	format := param(r, "format")
	if err := pipeline.ValidateFormat(format); err != nil {
		writeError(w, err)
		return
	}
	rec, err := s.store.Get(r.Context(), param(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	opts, err := renderOptions(r)
	if err != nil {
		writeError(w, err)
		return
	}
	opts.Formats = []string{format}

	l, err := s.runner.Layout(r.Context(), rec.Definition, opts)
	if err != nil {
		writeError(w, err)
		return
	}
	artifacts, err := s.runner.Render(r.Context(), l, opts)
	if err != nil {
		writeError(w, err)
		return
	}
	data := artifacts[format]
	w.Header().Set("Content-Type", contentType(format))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// mutate replays the stored definition into a chart, applies op and writes
// the resulting definition back.
func (s *Server) mutate(w http.ResponseWriter, r *http.Request, name string, op func(*mosaic.Chart) error) {
	ctx := r.Context()
	id := param(r, "id")
	rec, err := s.store.Update(ctx, id, func(def *mosaic.Definition) error {
		c, err := def.Build()
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidDataset, err, "stored chart is invalid")
		}
		if err := op(c); err != nil {
			return err
		}
		if err := c.Err(); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidValue, err, "%v", err)
		}
		next := c.Definition()
		if err := dataset.Validate(next); err != nil {
			return err
		}
		*def = next
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	s.logger.Debug("chart mutated", "id", id, "op", name, "version", rec.Version)
	observability.Server().OnChartMutated(ctx, id, name)
	writeJSON(w, http.StatusOK, rec)
}

func decodeValue(w http.ResponseWriter, r *http.Request) (float64, error) {
	var req valueRequest
	if err := decodeBody(w, r, &req); err != nil {
		return 0, err
	}
	if req.Value == nil {
		return 0, errInvalid("missing field \"value\"")
	}
	return *req.Value, nil
}

// unusedSubID returns the first "subN" id not taken in c.
func unusedSubID(c *mosaic.Chart) string {
	for n := len(c.SubCategories()) + 1; ; n++ {
		id := fmt.Sprintf("sub%d", n)
		if _, ok := c.SubCategory(id); !ok {
			return id
		}
	}
}

func layoutOptions(r *http.Request) (pipeline.Options, error) {
	var opts pipeline.Options
	var err error
	opts.VizType = r.URL.Query().Get("viz")
	if opts.Width, err = queryFloat(r, "width"); err != nil {
		return opts, err
	}
	if opts.Height, err = queryFloat(r, "height"); err != nil {
		return opts, err
	}
	return opts, nil
}

func renderOptions(r *http.Request) (pipeline.Options, error) {
	opts, err := layoutOptions(r)
	if err != nil {
		return opts, err
	}
	opts.Style = r.URL.Query().Get("style")
	if opts.Legend, err = queryBool(r, "legend"); err != nil {
		return opts, err
	}
	if opts.Seed, err = queryUint(r, "seed"); err != nil {
		return opts, err
	}
	if opts.Scale, err = queryFloat(r, "scale"); err != nil {
		return opts, err
	}
	return opts, nil
}

package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/mosaic/pkg/cache"
	"github.com/matzehuels/mosaic/pkg/mosaic"
	"github.com/matzehuels/mosaic/pkg/observability"
	"github.com/matzehuels/mosaic/pkg/pipeline"
	"github.com/matzehuels/mosaic/pkg/store"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	runner := pipeline.NewRunner(cache.NewMemoryCache(0), nil, nil)
	st := store.NewMemoryStore()
	t.Cleanup(func() {
		runner.Close()
		st.Close()
	})
	return New(st, runner, nil)
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func wantError(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, status, rec.Body.String())
	}
	body := decode[errorBody](t, rec)
	if string(body.Code) != code {
		t.Errorf("code = %q, want %q", body.Code, code)
	}
	if body.Message == "" {
		t.Error("empty error message")
	}
}

func createDemo(t *testing.T, s *Server) store.Record {
	t.Helper()
	rec := do(t, s, http.MethodPost, "/charts?demo=caffeine", "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("create demo: %d %s", rec.Code, rec.Body.String())
	}
	return decode[store.Record](t, rec)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("healthz = %d %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	rec = do(t, s, http.MethodGet, "/charts/"+createDemo(t, s).ID+"/layout", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("layout = %d %s", rec.Code, rec.Body.String())
	}
	health := decode[map[string]any](t, do(t, s, http.MethodGet, "/healthz", ""))
	if n, ok := health["cache_entries"].(float64); !ok || n != 1 {
		t.Errorf("cache_entries = %v, want 1 after one layout", health["cache_entries"])
	}
}

func TestCreateAndGet(t *testing.T) {
	s := newTestServer(t)
	body := `{"title":"Survey","subcategories":[{"id":"yes","fill":"#00ff00"}],` +
		`"categories":[{"name":"A","value":3,"values":[{"sub":"yes","value":1}]}]}`

	rec := do(t, s, http.MethodPost, "/charts", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", rec.Code, rec.Body.String())
	}
	created := decode[store.Record](t, rec)
	if !store.ValidID(created.ID) || created.Version != 1 {
		t.Errorf("created = %+v", created)
	}
	if loc := rec.Header().Get("Location"); loc != "/charts/"+created.ID {
		t.Errorf("Location = %q", loc)
	}

	rec = do(t, s, http.MethodGet, "/charts/"+created.ID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get: %d %s", rec.Code, rec.Body.String())
	}
	got := decode[store.Record](t, rec)
	if got.Definition.Title != "Survey" || len(got.Definition.Categories) != 1 {
		t.Errorf("definition = %+v", got.Definition)
	}
}

func TestCreateErrors(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		body   string
		status int
		code   string
	}{
		{"unknown field", "/charts", `{"titel":"x"}`, http.StatusBadRequest, "INVALID_INPUT"},
		{"malformed", "/charts", `{`, http.StatusBadRequest, "INVALID_INPUT"},
		{"trailing data", "/charts", `{} {}`, http.StatusBadRequest, "INVALID_INPUT"},
		{"duplicate category", "/charts", `{"categories":[{"name":"a","value":1},{"name":"a","value":2}]}`, http.StatusBadRequest, "INVALID_DATASET"},
		{"negative value", "/charts", `{"categories":[{"name":"a","value":-1}]}`, http.StatusBadRequest, "INVALID_VALUE"},
		{"unknown demo", "/charts?demo=nope", "", http.StatusNotFound, "NOT_FOUND"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)
			wantError(t, do(t, s, http.MethodPost, tt.path, tt.body), tt.status, tt.code)
		})
	}
}

func TestListAndDelete(t *testing.T) {
	s := newTestServer(t)
	a := createDemo(t, s)
	createDemo(t, s)

	rec := do(t, s, http.MethodGet, "/charts", "")
	list := decode[struct {
		Charts []store.Summary `json:"charts"`
	}](t, rec)
	if len(list.Charts) != 2 || list.Charts[0].Title != "Controlled Group Testing" {
		t.Fatalf("list = %+v", list)
	}

	rec = do(t, s, http.MethodDelete, "/charts/"+a.ID, "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete: %d", rec.Code)
	}
	wantError(t, do(t, s, http.MethodGet, "/charts/"+a.ID, ""), http.StatusNotFound, "CHART_NOT_FOUND")
	wantError(t, do(t, s, http.MethodDelete, "/charts/"+a.ID, ""), http.StatusNotFound, "CHART_NOT_FOUND")
}

func TestCategoryNameEscaping(t *testing.T) {
	s := newTestServer(t)
	base := "/charts/" + createDemo(t, s).ID

	tests := []struct {
		name string
		path string
	}{
		{"a%41", "a%2541"},
		{"x/y", "x%2Fy"},
		{"two words", "two%20words"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, _ := json.Marshal(map[string]any{"name": tt.name, "value": 5})
			if rec := do(t, s, http.MethodPost, base+"/categories", string(body)); rec.Code != http.StatusOK {
				t.Fatalf("add %q: %d %s", tt.name, rec.Code, rec.Body.String())
			}
			rec := do(t, s, http.MethodPut, base+"/categories/"+tt.path, `{"value":7}`)
			if rec.Code != http.StatusOK {
				t.Fatalf("set %s: %d %s", tt.path, rec.Code, rec.Body.String())
			}
			def := decode[store.Record](t, rec).Definition
			last := def.Categories[len(def.Categories)-1]
			if last.Name != tt.name || last.Value != 7 {
				t.Errorf("category = %q %v, want %q 7", last.Name, last.Value, tt.name)
			}
		})
	}
}

func TestMutations(t *testing.T) {
	s := newTestServer(t)
	chart := createDemo(t, s)
	base := "/charts/" + chart.ID

	steps := []struct {
		name   string
		method string
		path   string
		body   string
		status int
		code   string
		check  func(t *testing.T, def mosaic.Definition)
	}{
		{
			name: "set category value", method: http.MethodPut,
			path: base + "/categories/Placebo%20product", body: `{"value":60}`, status: http.StatusOK,
			check: func(t *testing.T, def mosaic.Definition) {
				if def.Categories[2].Value != 60 {
					t.Errorf("Placebo value = %v", def.Categories[2].Value)
				}
			},
		},
		{
			name: "set subcategory value", method: http.MethodPut,
			path: base + "/categories/Decaffeinated/values/exhaust", body: `{"value":30}`, status: http.StatusOK,
			check: func(t *testing.T, def mosaic.Definition) {
				v := def.Categories[1].Values[0]
				if v.SubCategory != "exhaust" || v.Value != 30 {
					t.Errorf("Decaffeinated/exhaust = %+v", v)
				}
			},
		},
		{
			name: "add generated subcategory", method: http.MethodPost,
			path: base + "/subcategories", body: `{"name":"Jittery","fill":"#0000ff"}`, status: http.StatusOK,
			check: func(t *testing.T, def mosaic.Definition) {
				s := def.SubCategories[3]
				if s.ID != "sub4" || s.Name != "Jittery" || s.Fill != "#0000ff" {
					t.Errorf("new subcategory = %+v", s)
				}
			},
		},
		{
			name: "add named subcategory", method: http.MethodPost,
			path: base + "/subcategories", body: `{"id":"sleepy"}`, status: http.StatusOK,
			check: func(t *testing.T, def mosaic.Definition) {
				if def.SubCategories[4].ID != "sleepy" {
					t.Errorf("new subcategory = %+v", def.SubCategories[4])
				}
			},
		},
		{
			name: "add category", method: http.MethodPost,
			path: base + "/categories", body: `{"name":"Tea","value":10}`, status: http.StatusOK,
			check: func(t *testing.T, def mosaic.Definition) {
				if len(def.Categories) != 4 || def.Categories[3].Name != "Tea" {
					t.Errorf("categories = %+v", def.Categories)
				}
			},
		},
		{
			name: "add y-category", method: http.MethodPost,
			path: base + "/ycategories", body: `{"name":"Half","value":50}`, status: http.StatusOK,
			check: func(t *testing.T, def mosaic.Definition) {
				if len(def.YCategories) != 4 {
					t.Errorf("ycategories = %+v", def.YCategories)
				}
			},
		},
		{
			name: "set y-category value", method: http.MethodPut,
			path: base + "/ycategories/Half", body: `{"value":55}`, status: http.StatusOK,
			check: func(t *testing.T, def mosaic.Definition) {
				if def.YCategories[3].Value != 55 {
					t.Errorf("Half = %v", def.YCategories[3].Value)
				}
			},
		},
		{name: "duplicate subcategory", method: http.MethodPost, path: base + "/subcategories", body: `{"id":"exhaust"}`, status: http.StatusConflict, code: "CONFLICT"},
		{name: "duplicate category", method: http.MethodPost, path: base + "/categories", body: `{"name":"Tea","value":1}`, status: http.StatusConflict, code: "CONFLICT"},
		{name: "invalid fill", method: http.MethodPost, path: base + "/subcategories", body: `{"fill":"nope"}`, status: http.StatusBadRequest, code: "INVALID_VALUE"},
		{name: "negative value", method: http.MethodPut, path: base + "/categories/Tea", body: `{"value":-1}`, status: http.StatusBadRequest, code: "INVALID_VALUE"},
		{name: "missing value", method: http.MethodPut, path: base + "/categories/Tea", body: `{}`, status: http.StatusBadRequest, code: "INVALID_INPUT"},
		{name: "empty category name", method: http.MethodPost, path: base + "/categories", body: `{"name":" ","value":1}`, status: http.StatusBadRequest, code: "INVALID_DATASET"},
		{name: "unknown category", method: http.MethodPut, path: base + "/categories/Coffee", body: `{"value":1}`, status: http.StatusNotFound, code: "NOT_FOUND"},
		{name: "unknown subcategory", method: http.MethodPut, path: base + "/categories/Tea/values/nope", body: `{"value":1}`, status: http.StatusNotFound, code: "NOT_FOUND"},
		{name: "unknown y-category", method: http.MethodPut, path: base + "/ycategories/Nope", body: `{"value":1}`, status: http.StatusNotFound, code: "NOT_FOUND"},
		{name: "unknown chart", method: http.MethodPut, path: "/charts/missing/categories/Tea", body: `{"value":1}`, status: http.StatusNotFound, code: "CHART_NOT_FOUND"},
	}

	version := chart.Version
	for _, step := range steps {
		rec := do(t, s, step.method, step.path, step.body)
		if step.code != "" {
			t.Run(step.name, func(t *testing.T) { wantError(t, rec, step.status, step.code) })
			continue
		}
		if rec.Code != step.status {
			t.Fatalf("%s: status %d, body %s", step.name, rec.Code, rec.Body.String())
		}
		got := decode[store.Record](t, rec)
		version++
		if got.Version != version {
			t.Errorf("%s: version = %d, want %d", step.name, got.Version, version)
		}
		t.Run(step.name, func(t *testing.T) { step.check(t, got.Definition) })
	}

	final := decode[store.Record](t, do(t, s, http.MethodGet, base, ""))
	if final.Version != version {
		t.Errorf("failed mutations were stored: version %d, want %d", final.Version, version)
	}
}

func TestLayout(t *testing.T) {
	s := newTestServer(t)
	chart := createDemo(t, s)

	rec := do(t, s, http.MethodGet, "/charts/"+chart.ID+"/layout?width=400&height=300", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("layout: %d %s", rec.Code, rec.Body.String())
	}
	l := decode[mosaic.Layout](t, rec)
	if len(l.Rects) != 9 || l.Frame.Width != 400 || l.Frame.Height != 300 {
		t.Errorf("layout = %d rects, frame %+v", len(l.Rects), l.Frame)
	}

	tree := decode[mosaic.Layout](t, do(t, s, http.MethodGet, "/charts/"+chart.ID+"/layout?viz=tree", ""))
	if !tree.IsTree() || tree.DOT == "" {
		t.Errorf("tree layout = %+v", tree)
	}

	wantError(t, do(t, s, http.MethodGet, "/charts/"+chart.ID+"/layout?width=wide", ""), http.StatusBadRequest, "INVALID_INPUT")
	wantError(t, do(t, s, http.MethodGet, "/charts/"+chart.ID+"/layout?viz=pie", ""), http.StatusBadRequest, "INVALID_VIZ_TYPE")
}

func TestRender(t *testing.T) {
	s := newTestServer(t)
	chart := createDemo(t, s)

	tests := []struct {
		path        string
		contentType string
		prefix      string
	}{
		{"/render/svg", "image/svg+xml", "<svg"},
		{"/render/svg?style=handdrawn&seed=7&legend=true", "image/svg+xml", "<svg"},
		{"/render/png?scale=1", "image/png", "\x89PNG"},
		{"/render/json", "application/json", "{"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := do(t, s, http.MethodGet, "/charts/"+chart.ID+tt.path, "")
			if rec.Code != http.StatusOK {
				t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
			}
			if ct := rec.Header().Get("Content-Type"); ct != tt.contentType {
				t.Errorf("Content-Type = %q, want %q", ct, tt.contentType)
			}
			if !strings.HasPrefix(strings.TrimSpace(rec.Body.String()), tt.prefix) {
				t.Errorf("body starts with %.20q", rec.Body.String())
			}
		})
	}

	wantError(t, do(t, s, http.MethodGet, "/charts/"+chart.ID+"/render/gif", ""), http.StatusBadRequest, "INVALID_FORMAT")
	wantError(t, do(t, s, http.MethodGet, "/charts/"+chart.ID+"/render/svg?style=neon", ""), http.StatusBadRequest, "INVALID_STYLE")
	wantError(t, do(t, s, http.MethodGet, "/charts/"+chart.ID+"/render/svg?legend=maybe", ""), http.StatusBadRequest, "INVALID_INPUT")
}

func TestUnknownRoute(t *testing.T) {
	s := newTestServer(t)
	wantError(t, do(t, s, http.MethodGet, "/nope", ""), http.StatusNotFound, "NOT_FOUND")
	wantError(t, do(t, s, http.MethodPatch, "/charts", ""), http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED")
}

type recordingHooks struct {
	observability.NoopServerHooks
	mu      sync.Mutex
	served  []string
	mutated []string
}

func (h *recordingHooks) OnServe(_ context.Context, method, route string, _ int, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.served = append(h.served, method+" "+route)
}

func (h *recordingHooks) OnChartMutated(_ context.Context, _ string, op string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.mutated = append(h.mutated, op)
}

func TestServerHooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetServerHooks(hooks)
	t.Cleanup(observability.Reset)

	s := newTestServer(t)
	chart := createDemo(t, s)
	do(t, s, http.MethodPut, "/charts/"+chart.ID+"/categories/Decaffeinated", `{"value":1}`)
	do(t, s, http.MethodPut, "/charts/"+chart.ID+"/categories/Decaffeinated", `{"value":-1}`)

	hooks.mu.Lock()
	defer hooks.mu.Unlock()
	if len(hooks.mutated) != 1 || hooks.mutated[0] != "set_category_value" {
		t.Errorf("mutations = %v", hooks.mutated)
	}
	if len(hooks.served) != 3 {
		t.Fatalf("served = %v", hooks.served)
	}
	if want := "PUT /charts/{id}/categories/{name}"; hooks.served[1] != want {
		t.Errorf("route = %q, want %q", hooks.served[1], want)
	}
}

func TestListenAndServeShutdown(t *testing.T) {
	s := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx, "127.0.0.1:0") }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("ListenAndServe = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"axiomarium/internal/service"
)

// newTestMux wires the handler onto routes the way the server does, so
// path parameters resolve in tests.
func newTestMux(t *testing.T) (*http.ServeMux, *service.TheoryService) {
	t.Helper()
	svc := service.NewTheoryService(nil, nil, nil)
	h := NewTheoryHandler(svc)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/sorts", h.DeclareSort)
	mux.HandleFunc("POST /api/relations", h.DeclareRelation)
	mux.HandleFunc("POST /api/relations/{name}/equivalence", h.ComposeEquivalence)
	mux.HandleFunc("POST /api/compounds", h.DeclareCompound)
	mux.HandleFunc("POST /api/axioms", h.RegisterAxiom)
	mux.HandleFunc("POST /api/theorems", h.RegisterTheorem)
	mux.HandleFunc("GET /api/declarations", h.ListDeclarations)
	mux.HandleFunc("GET /api/declarations/{name}", h.GetDeclaration)
	mux.HandleFunc("GET /api/declarations/{name}/closure", h.GetClosure)
	mux.HandleFunc("GET /api/stats", h.GetStats)
	mux.HandleFunc("GET /api/export/{format}", h.Export)
	return mux, svc
}

func doJSON(t *testing.T, mux *http.ServeMux, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestDeclareSortEndpoint(t *testing.T) {
	mux, _ := newTestMux(t)

	rec := doJSON(t, mux, http.MethodPost, "/api/sorts", `{"name": "Point"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}

	t.Run("duplicate name conflicts", func(t *testing.T) {
		rec := doJSON(t, mux, http.MethodPost, "/api/sorts", `{"name": "Point"}`)
		if rec.Code != http.StatusConflict {
			t.Errorf("status = %d, want 409", rec.Code)
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		rec := doJSON(t, mux, http.MethodPost, "/api/sorts", `{`)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})
}

func TestDeclareRelationEndpoint(t *testing.T) {
	mux, _ := newTestMux(t)
	doJSON(t, mux, http.MethodPost, "/api/sorts", `{"name": "Point"}`)

	rec := doJSON(t, mux, http.MethodPost, "/api/relations",
		`{"name": "B", "args": ["Point", "Point", "Point"]}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}

	t.Run("unknown sort is unprocessable", func(t *testing.T) {
		rec := doJSON(t, mux, http.MethodPost, "/api/relations",
			`{"name": "On", "args": ["Point", "Foo"]}`)
		if rec.Code != http.StatusUnprocessableEntity {
			t.Errorf("status = %d, want 422: %s", rec.Code, rec.Body.String())
		}

		var resp ErrorResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(resp.Details, "Foo") {
			t.Errorf("error does not name the offending sort: %+v", resp)
		}
	})
}

func TestRegisterTheoremEndpoint(t *testing.T) {
	mux, _ := newTestMux(t)
	doJSON(t, mux, http.MethodPost, "/api/sorts", `{"name": "Point"}`)
	doJSON(t, mux, http.MethodPost, "/api/relations",
		`{"name": "B", "args": ["Point", "Point", "Point"]}`)
	doJSON(t, mux, http.MethodPost, "/api/axioms", `{
		"name": "between_identity",
		"statement": {
			"vars": [{"name": "x", "type": "Point"}, {"name": "y", "type": "Point"}],
			"hypotheses": [{"relation": "B", "args": ["x", "y", "x"]}],
			"conclusions": [{"relation": "eq", "args": ["x", "y"]}]
		}
	}`)

	theorem := `{
		"name": "%s",
		"statement": {
			"vars": [{"name": "x", "type": "Point"}, {"name": "y", "type": "Point"}, {"name": "z", "type": "Point"}],
			"hypotheses": [{"relation": "B", "args": ["x", "y", "z"]}],
			"conclusions": [{"relation": "B", "args": ["z", "y", "x"]}]
		},
		"proof": %s
	}`

	t.Run("complete proof", func(t *testing.T) {
		body := strings.Replace(theorem, "%s", "between_symmetry", 1)
		body = strings.Replace(body, "%s", `{"steps": [{"cites": "between_identity"}]}`, 1)
		rec := doJSON(t, mux, http.MethodPost, "/api/theorems", body)
		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
		}

		var resp TheoremResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatal(err)
		}
		if resp.Warning != "" {
			t.Errorf("unexpected warning: %q", resp.Warning)
		}
	})

	t.Run("gapped proof registers with a warning", func(t *testing.T) {
		body := strings.Replace(theorem, "%s", "admitted", 1)
		body = strings.Replace(body, "%s", `{"incomplete": true}`, 1)
		rec := doJSON(t, mux, http.MethodPost, "/api/theorems", body)
		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
		}

		var resp TheoremResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatal(err)
		}
		if resp.Warning == "" {
			t.Error("gapped registration carries no warning")
		}
		if resp.Declaration == nil || resp.Declaration.State != "flagged" {
			t.Errorf("declaration = %+v, want flagged", resp.Declaration)
		}
	})

	t.Run("empty unadmitted proof is unprocessable", func(t *testing.T) {
		body := strings.Replace(theorem, "%s", "stepless", 1)
		body = strings.Replace(body, "%s", `{}`, 1)
		rec := doJSON(t, mux, http.MethodPost, "/api/theorems", body)
		if rec.Code != http.StatusUnprocessableEntity {
			t.Errorf("status = %d, want 422: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("unknown citation is unprocessable", func(t *testing.T) {
		body := strings.Replace(theorem, "%s", "bogus", 1)
		body = strings.Replace(body, "%s", `{"steps": [{"cites": "five_segment"}]}`, 1)
		rec := doJSON(t, mux, http.MethodPost, "/api/theorems", body)
		if rec.Code != http.StatusUnprocessableEntity {
			t.Errorf("status = %d, want 422: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("self-citation conflicts", func(t *testing.T) {
		body := strings.Replace(theorem, "%s", "ouroboros", 1)
		body = strings.Replace(body, "%s", `{"steps": [{"cites": "ouroboros"}]}`, 1)
		rec := doJSON(t, mux, http.MethodPost, "/api/theorems", body)
		if rec.Code != http.StatusConflict {
			t.Errorf("status = %d, want 409: %s", rec.Code, rec.Body.String())
		}
	})
}

func TestQueryEndpoints(t *testing.T) {
	mux, _ := newTestMux(t)
	doJSON(t, mux, http.MethodPost, "/api/sorts", `{"name": "Point"}`)

	t.Run("get declaration", func(t *testing.T) {
		rec := doJSON(t, mux, http.MethodGet, "/api/declarations/Point", "")
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
	})

	t.Run("missing declaration", func(t *testing.T) {
		rec := doJSON(t, mux, http.MethodGet, "/api/declarations/Ghost", "")
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})

	t.Run("missing closure", func(t *testing.T) {
		rec := doJSON(t, mux, http.MethodGet, "/api/declarations/Ghost/closure", "")
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})

	t.Run("list with kind filter", func(t *testing.T) {
		rec := doJSON(t, mux, http.MethodGet, "/api/declarations?kind=sort", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		var decls []json.RawMessage
		if err := json.Unmarshal(rec.Body.Bytes(), &decls); err != nil {
			t.Fatal(err)
		}
		if len(decls) != 1 {
			t.Errorf("got %d declarations, want 1", len(decls))
		}
	})

	t.Run("stats", func(t *testing.T) {
		rec := doJSON(t, mux, http.MethodGet, "/api/stats", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}

		var stats map[string]json.RawMessage
		if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
			t.Fatal(err)
		}
		if string(stats["verified"]) != "1" {
			t.Errorf("verified = %s, want 1", stats["verified"])
		}
		// Only the terminal states are reported.
		if _, ok := stats["declared"]; ok {
			t.Error("stats report the transient declared state")
		}
	})
}

func TestExportEndpoint(t *testing.T) {
	mux, _ := newTestMux(t)
	doJSON(t, mux, http.MethodPost, "/api/sorts", `{"name": "Point"}`)

	rec := doJSON(t, mux, http.MethodGet, "/api/export/markdown", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/markdown" {
		t.Errorf("Content-Type = %q, want text/markdown", ct)
	}

	t.Run("unknown format", func(t *testing.T) {
		rec := doJSON(t, mux, http.MethodGet, "/api/export/xml", "")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})
}

func TestMiddleware(t *testing.T) {
	t.Run("recover converts panics", func(t *testing.T) {
		h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("boom")
		}), Recover)

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Code != http.StatusInternalServerError {
			t.Errorf("status = %d, want 500", rec.Code)
		}
	})

	t.Run("cors preflight", func(t *testing.T) {
		h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("preflight reached the inner handler")
		}), CORS)

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/sorts", nil))
		if rec.Code != http.StatusNoContent {
			t.Errorf("status = %d, want 204", rec.Code)
		}
		if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
			t.Error("missing CORS header")
		}
	})
}

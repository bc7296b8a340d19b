package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/tracemap-backend-go/internal/app"
	"github.com/jengzang/tracemap-backend-go/internal/config"
	"github.com/jengzang/tracemap-backend-go/internal/database"
	"github.com/jengzang/tracemap-backend-go/internal/middleware"
	"github.com/jengzang/tracemap-backend-go/internal/render"
	"github.com/jengzang/tracemap-backend-go/internal/source"
)

const secret = "test-secret"

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newTestRouter(t *testing.T) (*gin.Engine, *config.Config) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	cfg := &config.Config{
		JWTSecret:        secret,
		DataDir:          dir,
		TargetsFile:      filepath.Join(dir, "targets.txt"),
		SegmentDedup:     "route",
		FetchConcurrency: 2,
	}

	db, err := database.Open(database.Config{Path: database.MemoryPath})
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	svc, err := app.NewGlobeService(cfg, db, render.NewRecorder(100))
	if err != nil {
		t.Fatalf("NewGlobeService: %v", err)
	}
	return SetupRouter(cfg, svc, middleware.NewRateLimiter(0, time.Minute)), cfg
}

func do(t *testing.T, r http.Handler, method, path, body string, auth bool) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if auth {
		token, err := middleware.IssueToken(secret, "test", time.Hour)
		if err != nil {
			t.Fatal(err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
			t.Fatalf("%s %s: invalid JSON %q", method, path, w.Body.String())
		}
	}
	return w, env
}

func TestHealth(t *testing.T) {
	r, _ := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "ok") {
		t.Errorf("health = %d %s", w.Code, w.Body.String())
	}
}

func TestProcessRouteRequiresToken(t *testing.T) {
	r, _ := newTestRouter(t)
	w, _ := do(t, r, http.MethodPost, "/api/v1/routes/r1", "hop,lat,lon\n1,1,1\n", false)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestRouteLifecycle(t *testing.T) {
	r, _ := newTestRouter(t)

	body := "hop,protocol,probe_index,ip,latitude,longitude\n1,icmp,0,10.0.0.1,1,1\n2,icmp,0,10.0.0.2,2,2\n"
	w, env := do(t, r, http.MethodPost, "/api/v1/routes/r1", body, true)
	if w.Code != http.StatusCreated {
		t.Fatalf("process status = %d: %s", w.Code, w.Body.String())
	}
	var result struct {
		Status   string `json:"status"`
		Segments []any  `json:"segments"`
	}
	if err := json.Unmarshal(env.Data, &result); err != nil {
		t.Fatal(err)
	}
	if result.Status != "processed" || len(result.Segments) != 1 {
		t.Errorf("result = %+v", result)
	}

	w, env = do(t, r, http.MethodGet, "/api/v1/points?role=end", "", false)
	if w.Code != http.StatusOK {
		t.Fatalf("points status = %d", w.Code)
	}
	var points struct {
		Data []struct {
			ID int64 `json:"id"`
		} `json:"data"`
		Total int `json:"total"`
	}
	if err := json.Unmarshal(env.Data, &points); err != nil {
		t.Fatal(err)
	}
	if points.Total != 1 {
		t.Fatalf("end points = %d, want 1", points.Total)
	}

	w, _ = do(t, r, http.MethodGet, "/api/v1/points/"+jsonInt(points.Data[0].ID), "", false)
	if w.Code != http.StatusOK {
		t.Errorf("point status = %d", w.Code)
	}
	w, _ = do(t, r, http.MethodGet, "/api/v1/points/999", "", false)
	if w.Code != http.StatusNotFound {
		t.Errorf("missing point status = %d, want 404", w.Code)
	}
	w, _ = do(t, r, http.MethodGet, "/api/v1/points/abc", "", false)
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad point id status = %d, want 400", w.Code)
	}

	w, env = do(t, r, http.MethodGet, "/api/v1/commands?since=0", "", false)
	if w.Code != http.StatusOK || !strings.Contains(string(env.Data), `"op":"edge"`) {
		t.Errorf("commands = %d %s", w.Code, env.Data)
	}
	w, _ = do(t, r, http.MethodGet, "/api/v1/commands?since=x", "", false)
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad since status = %d, want 400", w.Code)
	}

	w, env = do(t, r, http.MethodGet, "/api/v1/runs", "", false)
	if w.Code != http.StatusOK || !strings.Contains(string(env.Data), `"total":1`) {
		t.Errorf("runs = %d %s", w.Code, env.Data)
	}

	w, _ = do(t, r, http.MethodDelete, "/api/v1/session", "", true)
	if w.Code != http.StatusOK {
		t.Fatalf("reset status = %d", w.Code)
	}
	_, env = do(t, r, http.MethodGet, "/api/v1/points", "", false)
	if !strings.Contains(string(env.Data), `"total":0`) {
		t.Errorf("points after reset = %s", env.Data)
	}
}

func TestProcessBatchEndpoint(t *testing.T) {
	r, cfg := newTestRouter(t)

	name := filepath.Join(cfg.DataDir, source.FileName("8.8.8.8"))
	if err := os.WriteFile(name, []byte("hop,lat,lon\n1,1,1\n2,5,5\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	w, env := do(t, r, http.MethodPost, "/api/v1/batches", `{"routeIds":["8.8.8.8","9.9.9.9"]}`, true)
	if w.Code != http.StatusOK {
		t.Fatalf("batch status = %d: %s", w.Code, w.Body.String())
	}
	var summary struct {
		Attempted int `json:"attempted"`
		Parsed    int `json:"parsed"`
		Failed    int `json:"failed"`
	}
	if err := json.Unmarshal(env.Data, &summary); err != nil {
		t.Fatal(err)
	}
	if summary.Attempted != 2 || summary.Parsed != 1 || summary.Failed != 1 {
		t.Errorf("summary = %+v", summary)
	}

	// no body and no targets file
	w, _ = do(t, r, http.MethodPost, "/api/v1/batches", "", true)
	if w.Code != http.StatusInternalServerError {
		t.Errorf("missing targets status = %d, want 500", w.Code)
	}

	w, _ = do(t, r, http.MethodPost, "/api/v1/batches", "{", true)
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad body status = %d, want 400", w.Code)
	}
}

func jsonInt(v int64) string {
	b, _ := json.Marshal(v)
	return string(b)
}

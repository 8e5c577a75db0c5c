package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/cutroom/cutroom-agent/internal/db"
	"github.com/cutroom/cutroom-agent/internal/media"
	"github.com/cutroom/cutroom-agent/internal/project"
	"github.com/cutroom/cutroom-agent/internal/render"
	"github.com/cutroom/cutroom-agent/internal/timeline"
)

func videoTrackFixture() []timeline.Track {
	return []timeline.Track{{
		ID:   "video-1",
		Type: "video",
		Clips: []timeline.Clip{
			{ID: "c1", AssetID: "a1", Start: 0, End: 2, Name: "one"},
			{ID: "c2", AssetID: "a1", Start: 2, End: 5, TrimStart: 10, Name: "two"},
		},
	}}
}

func assetFixture() []timeline.Asset {
	return []timeline.Asset{{ID: "a1", Name: "take", Src: "take.mp4", Duration: 60}}
}

const testToken = "test-token-1234567890"

// stubLocator resolves every reference to a fixed path.
type stubLocator struct {
	path string
}

func (s *stubLocator) Locate(ref string) (string, error) {
	if s.path == "" {
		return "", media.ErrNotFound
	}
	return s.path, nil
}

// stubProber never succeeds, exercising the default-characteristics path.
type stubProber struct{}

func (stubProber) Probe(ctx context.Context, path string) (media.VideoInfo, error) {
	return media.VideoInfo{}, context.Canceled
}

// stubExecutor reports a canned result without running anything.
type stubExecutor struct {
	lines  []string
	result render.RunResult
}

func (s *stubExecutor) Run(ctx context.Context, name string, args []string, onLine func(string)) render.RunResult {
	for _, l := range s.lines {
		onLine(l)
	}
	return s.result
}

type testEnv struct {
	router *chi.Mux
	repo   project.Repository
	cfg    ServerConfig
}

func newTestEnv(t *testing.T, mediaPath string, exec render.Executor) *testEnv {
	t.Helper()

	database, err := db.New(filepath.Join(t.TempDir(), "test.db"), nil)
	if err != nil {
		t.Fatalf("db.New() error = %v", err)
	}
	t.Cleanup(func() { database.Close() })

	repo := project.NewRepository(database.Conn())
	if err := repo.SetConfig(context.Background(), "auth_token", testToken); err != nil {
		t.Fatalf("SetConfig error = %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	locator := &stubLocator{path: mediaPath}

	if exec == nil {
		exec = &stubExecutor{result: render.RunResult{ExitCode: 0}}
	}
	orch := render.NewOrchestrator(render.Config{
		Executor:   exec,
		Locator:    locator,
		Logger:     logger,
		ScratchDir: t.TempDir(),
	})

	cfg := ServerConfig{
		Port:         0,
		ExportsDir:   t.TempDir(),
		Repository:   repo,
		Orchestrator: orch,
		Locator:      locator,
		Prober:       stubProber{},
		Logger:       logger,
		StartTime:    time.Now(),
		DeviceID:     "test-device",
	}

	return &testEnv{router: NewRouter(cfg), repo: repo, cfg: cfg}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Authorization", "Bearer "+testToken)
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, rec.Body.String())
	}
}

func TestHealth_NoAuthRequired(t *testing.T) {
	env := newTestEnv(t, "", nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp HealthResponse
	decodeBody(t, rec, &resp)
	if resp.Status != "ok" || resp.DeviceID != "test-device" {
		t.Errorf("health = %+v", resp)
	}
}

func TestProjectLifecycle(t *testing.T) {
	env := newTestEnv(t, "", nil)

	rec := env.do(t, http.MethodPost, "/projects", CreateProjectRequest{Name: "pilot"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", rec.Code, rec.Body.String())
	}
	var created ProjectResponse
	decodeBody(t, rec, &created)
	if created.ID == "" || created.Name != "pilot" {
		t.Fatalf("created = %+v", created)
	}

	rec = env.do(t, http.MethodGet, "/projects", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var list ProjectsResponse
	decodeBody(t, rec, &list)
	if len(list.Projects) != 1 {
		t.Fatalf("list = %+v", list)
	}

	rec = env.do(t, http.MethodPatch, "/projects/"+created.ID, RenameProjectRequest{Name: "pilot v2"})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("rename status = %d: %s", rec.Code, rec.Body.String())
	}

	update := UpdateTimelineRequest{}
	update.Timeline.Tracks = videoTrackFixture()
	update.Assets = assetFixture()
	rec = env.do(t, http.MethodPut, "/projects/"+created.ID+"/timeline", update)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("update timeline status = %d: %s", rec.Code, rec.Body.String())
	}

	rec = env.do(t, http.MethodGet, "/projects/"+created.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}
	var got ProjectResponse
	decodeBody(t, rec, &got)
	if got.Name != "pilot v2" {
		t.Errorf("Name = %q after rename", got.Name)
	}
	if len(got.Timeline.Tracks) != 1 || len(got.Timeline.Tracks[0].Clips) != 2 {
		t.Errorf("timeline not persisted: %+v", got.Timeline)
	}

	rec = env.do(t, http.MethodDelete, "/projects/"+created.ID, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rec.Code)
	}
	rec = env.do(t, http.MethodGet, "/projects/"+created.ID, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d, want 404", rec.Code)
	}
}

func TestCreateProject_Validation(t *testing.T) {
	env := newTestEnv(t, "", nil)

	rec := env.do(t, http.MethodPost, "/projects", CreateProjectRequest{})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty name status = %d, want 400", rec.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/projects", bytes.NewBufferString("{not json"))
	req.Header.Set("Authorization", "Bearer "+testToken)
	rec2 := httptest.NewRecorder()
	env.router.ServeHTTP(rec2, req)
	if rec2.Code != http.StatusBadRequest {
		t.Errorf("malformed body status = %d, want 400", rec2.Code)
	}
}

func TestRenameProject_Missing(t *testing.T) {
	env := newTestEnv(t, "", nil)

	rec := env.do(t, http.MethodPatch, "/projects/ghost", RenameProjectRequest{Name: "x"})
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

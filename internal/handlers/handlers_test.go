package handlers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-chi/chi/v5"

	"taskflow/internal/analytics"
	"taskflow/internal/backup"
	"taskflow/internal/logging"
	"taskflow/internal/models"
	"taskflow/internal/service"
	"taskflow/internal/store"
)

func setupTestHandlers(t *testing.T) (*Handlers, *service.Service) {
	t.Helper()
	s, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	svc := service.New(s, service.Options{Location: time.UTC})
	svc.Load(context.Background())
	return New(svc, logging.Discard()), svc
}

func do(t *testing.T, h *Handlers, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := sonic.ConfigStd.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
	return v
}

func mustAdd(t *testing.T, svc *service.Service, draft models.TaskDraft) models.Task {
	t.Helper()
	task, err := svc.AddTask(context.Background(), draft)
	if err != nil {
		t.Fatalf("AddTask failed: %v", err)
	}
	return task
}

func TestCreateTask(t *testing.T) {
	h, svc := setupTestHandlers(t)

	rec := do(t, h, "POST", "/api/tasks/", `{"title":"Write report","priority":"high","dueDate":"2025-03-12T00:00:00.000Z"}`)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}
	task := decode[models.Task](t, rec)
	if task.ID == "" || task.Title != "Write report" || task.Priority != models.PriorityHigh {
		t.Errorf("unexpected task: %+v", task)
	}
	if len(svc.ListTasks()) != 1 {
		t.Errorf("expected 1 stored task, got %d", len(svc.ListTasks()))
	}
}

func TestCreateTask_BadRequests(t *testing.T) {
	h, _ := setupTestHandlers(t)

	tests := []struct {
		name string
		body string
		code int
	}{
		{"empty body", "", http.StatusBadRequest},
		{"malformed", `{"title":`, http.StatusBadRequest},
		{"unknown field", `{"title":"x","owner":"me"}`, http.StatusBadRequest},
		{"missing title", `{"priority":"low"}`, http.StatusBadRequest},
		{"bad priority", `{"title":"x","priority":"urgent"}`, http.StatusBadRequest},
		{"unknown category", `{"title":"x","categoryId":"ghost"}`, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, "POST", "/api/tasks/", tt.body)
			if rec.Code != tt.code {
				t.Errorf("expected status %d, got %d: %s", tt.code, rec.Code, rec.Body.String())
			}
			if !strings.Contains(rec.Body.String(), `"error"`) {
				t.Errorf("expected error body, got %s", rec.Body.String())
			}
		})
	}
}

func TestGetTask_NotFound(t *testing.T) {
	h, _ := setupTestHandlers(t)

	req := httptest.NewRequest("GET", "/api/tasks/missing", nil)
	rec := httptest.NewRecorder()

	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", "missing")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

	h.GetTask(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestUpdateTask_ClearsCategory(t *testing.T) {
	h, svc := setupTestHandlers(t)
	work, err := svc.CreateCategory(context.Background(), "Work", "", "")
	if err != nil {
		t.Fatalf("CreateCategory failed: %v", err)
	}
	task := mustAdd(t, svc, models.TaskDraft{Title: "a", CategoryID: work.ID})

	req := httptest.NewRequest("PATCH", "/api/tasks/"+task.ID, strings.NewReader(`{"categoryId":"","title":"renamed"}`))
	rec := httptest.NewRecorder()

	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", task.ID)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

	h.UpdateTask(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
	updated := decode[models.Task](t, rec)
	if updated.CategoryID != "" || updated.Title != "renamed" {
		t.Errorf("unexpected task: %+v", updated)
	}
	if got := svc.ListCategories()[0].TaskCount; got != 0 {
		t.Errorf("expected category count 0, got %d", got)
	}
}

func TestToggleAndDeleteTask(t *testing.T) {
	h, svc := setupTestHandlers(t)
	task := mustAdd(t, svc, models.TaskDraft{Title: "a"})

	rec := do(t, h, "POST", "/api/tasks/"+task.ID+"/toggle", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if !decode[models.Task](t, rec).IsCompleted {
		t.Error("expected task to be completed")
	}

	rec = do(t, h, "DELETE", "/api/tasks/"+task.ID, "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status %d, got %d", http.StatusNoContent, rec.Code)
	}

	rec = do(t, h, "DELETE", "/api/tasks/"+task.ID, "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestReorderTasks(t *testing.T) {
	h, svc := setupTestHandlers(t)
	a := mustAdd(t, svc, models.TaskDraft{Title: "A"})
	b := mustAdd(t, svc, models.TaskDraft{Title: "B"})
	c := mustAdd(t, svc, models.TaskDraft{Title: "C"})

	rec := do(t, h, "POST", "/api/tasks/reorder", `{"ids":["`+a.ID+`","`+b.ID+`","`+c.ID+`"]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("arrange: expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	rec = do(t, h, "POST", "/api/tasks/reorder", `{"from":0,"to":2}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("reorder: expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	list := decode[[]models.Task](t, rec)
	want := []string{b.ID, c.ID, a.ID}
	for i := range want {
		if list[i].ID != want[i] || list[i].Order != 2-i {
			t.Errorf("position %d: got %s/%d, want %s/%d", i, list[i].ID, list[i].Order, want[i], 2-i)
		}
	}

	tests := []struct {
		name string
		body string
		code int
	}{
		{"out of range", `{"from":0,"to":3}`, http.StatusBadRequest},
		{"both forms", `{"from":0,"to":1,"ids":[]}`, http.StatusBadRequest},
		{"neither form", `{}`, http.StatusBadRequest},
		{"not a permutation", `{"ids":["` + a.ID + `"]}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, "POST", "/api/tasks/reorder", tt.body)
			if rec.Code != tt.code {
				t.Errorf("expected status %d, got %d: %s", tt.code, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestMoveTask(t *testing.T) {
	h, svc := setupTestHandlers(t)
	a := mustAdd(t, svc, models.TaskDraft{Title: "A"})
	mustAdd(t, svc, models.TaskDraft{Title: "B"})

	rec := do(t, h, "POST", "/api/tasks/"+a.ID+"/move", `{"position":0}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
	if list := decode[[]models.Task](t, rec); list[0].ID != a.ID {
		t.Errorf("expected %s first, got %s", a.ID, list[0].ID)
	}

	if rec := do(t, h, "POST", "/api/tasks/"+a.ID+"/move", `{}`); rec.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
	if rec := do(t, h, "POST", "/api/tasks/missing/move", `{"position":0}`); rec.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestListTasks_QueryOverridesView(t *testing.T) {
	h, svc := setupTestHandlers(t)
	mustAdd(t, svc, models.TaskDraft{Title: "Buy milk", Priority: models.PriorityLow})
	report := mustAdd(t, svc, models.TaskDraft{Title: "Write report", Priority: models.PriorityHigh})

	rec := do(t, h, "PUT", "/api/view", `{"filters":{"priority":"high"}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	list := decode[[]models.Task](t, do(t, h, "GET", "/api/tasks/", ""))
	if len(list) != 1 || list[0].ID != report.ID {
		t.Errorf("view filter not applied: %+v", list)
	}

	list = decode[[]models.Task](t, do(t, h, "GET", "/api/tasks/?priority=&q=milk", ""))
	if len(list) != 1 || list[0].Title != "Buy milk" {
		t.Errorf("query override not applied: %+v", list)
	}

	for _, target := range []string{"/api/tasks/?status=archived", "/api/tasks/?sort=alpha", "/api/tasks/?overdue=maybe", "/api/tasks/?priority=urgent"} {
		if rec := do(t, h, "GET", target, ""); rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected status %d, got %d", target, http.StatusBadRequest, rec.Code)
		}
	}
}

func TestCategories(t *testing.T) {
	h, svc := setupTestHandlers(t)

	rec := do(t, h, "POST", "/api/categories/", `{"name":"Work","color":"#3366ff"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}
	work := decode[models.Category](t, rec)
	mustAdd(t, svc, models.TaskDraft{Title: "a", CategoryID: work.ID})

	cats := decode[[]models.Category](t, do(t, h, "GET", "/api/categories/", ""))
	if len(cats) != 1 || cats[0].TaskCount != 1 {
		t.Errorf("unexpected categories: %+v", cats)
	}

	list := decode[[]models.Task](t, do(t, h, "GET", "/api/categories/"+work.ID+"/tasks", ""))
	if len(list) != 1 {
		t.Errorf("expected 1 task in category, got %d", len(list))
	}

	rec = do(t, h, "PATCH", "/api/categories/"+work.ID, `{"name":"Office"}`)
	if rec.Code != http.StatusOK || decode[models.Category](t, rec).Name != "Office" {
		t.Errorf("rename failed: %d %s", rec.Code, rec.Body.String())
	}

	if rec := do(t, h, "DELETE", "/api/categories/"+work.ID, ""); rec.Code != http.StatusNoContent {
		t.Errorf("expected status %d, got %d", http.StatusNoContent, rec.Code)
	}
	if rec := do(t, h, "GET", "/api/categories/"+work.ID+"/tasks", ""); rec.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
	if rec := do(t, h, "POST", "/api/categories/", `{"name":" "}`); rec.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestSettings(t *testing.T) {
	h, _ := setupTestHandlers(t)

	rec := do(t, h, "PUT", "/api/settings", `{"sortBy":"priority"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
	settings := decode[models.Settings](t, do(t, h, "GET", "/api/settings", ""))
	if settings.SortBy != models.SortByPriority || !settings.NotificationsEnabled {
		t.Errorf("unexpected settings: %+v", settings)
	}

	if rec := do(t, h, "PUT", "/api/settings", `{"sortBy":"alpha"}`); rec.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestClearCompletedAndAnalytics(t *testing.T) {
	h, svc := setupTestHandlers(t)
	done := mustAdd(t, svc, models.TaskDraft{Title: "done"})
	mustAdd(t, svc, models.TaskDraft{Title: "open"})
	if _, err := svc.ToggleTask(context.Background(), done.ID); err != nil {
		t.Fatalf("ToggleTask failed: %v", err)
	}

	summary := decode[analytics.Summary](t, do(t, h, "GET", "/api/analytics", ""))
	if summary.TotalTasks != 2 || summary.CompletionRate != 50 || len(summary.WeeklyCompletion) != 7 {
		t.Errorf("unexpected summary: %+v", summary)
	}

	result := decode[map[string]int](t, do(t, h, "POST", "/api/tasks/clear-completed", ""))
	if result["removed"] != 1 {
		t.Errorf("expected 1 removed, got %d", result["removed"])
	}
}

func TestOverdueTasks(t *testing.T) {
	h, svc := setupTestHandlers(t)
	past := time.Now().Add(-time.Hour)
	late := mustAdd(t, svc, models.TaskDraft{Title: "late", DueDate: &past})
	mustAdd(t, svc, models.TaskDraft{Title: "undated"})

	list := decode[[]models.Task](t, do(t, h, "GET", "/api/tasks/overdue", ""))
	if len(list) != 1 || list[0].ID != late.ID {
		t.Errorf("unexpected overdue tasks: %+v", list)
	}
}

func TestBackupRoundTrip(t *testing.T) {
	src, srcSvc := setupTestHandlers(t)
	mustAdd(t, srcSvc, models.TaskDraft{Title: "a", Priority: models.PriorityHigh})

	rec := do(t, src, "GET", "/api/backup", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.HasPrefix(cd, "attachment;") {
		t.Errorf("unexpected Content-Disposition %q", cd)
	}
	exported := rec.Body.Bytes()

	dst, dstSvc := setupTestHandlers(t)
	rec = do(t, dst, "POST", "/api/backup", string(exported))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
	if got := dstSvc.ListTasks(); len(got) != 1 || got[0].Title != "a" {
		t.Errorf("unexpected imported tasks: %+v", got)
	}

	snap, err := backup.Decode(bytes.NewReader(exported))
	if err != nil {
		t.Fatalf("exported document does not decode: %v", err)
	}
	snap.Version = "2.0.0"
	var buf bytes.Buffer
	if err := backup.Encode(&buf, snap); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if rec := do(t, dst, "POST", "/api/backup", buf.String()); rec.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

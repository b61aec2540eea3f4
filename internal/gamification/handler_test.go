package gamification

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"

	"github.com/lifequest/backend/internal/middleware"
	"github.com/lifequest/backend/internal/models"
	"github.com/lifequest/backend/internal/store"
)

func newTestRouter(f *fixture) http.Handler {
	r := mux.NewRouter()
	NewHandler(f.svc).Register(r)
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		r.ServeHTTP(w, req.WithContext(middleware.WithPlayerID(req.Context(), testPlayer)))
	})
}

func serve(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandlerRoutes(t *testing.T) {
	f := newFixture(t, tuesday, quiet())
	h := newTestRouter(f)

	tests := []struct {
		method, path, body string
		want               int
	}{
		{"GET", "/state", "", http.StatusOK},
		{"GET", "/catalog/tasks", "", http.StatusOK},
		{"GET", "/history?kind=task&limit=5", "", http.StatusOK},
		{"GET", "/history?since=yesterday", "", http.StatusBadRequest},
		{"POST", "/tasks/walk/complete", "", http.StatusOK},
		{"POST", "/tasks/nap/complete", "", http.StatusNotFound},
		{"POST", "/claims/login", "", http.StatusOK},
		{"POST", "/claims/login", "", http.StatusConflict},
		{"POST", "/claims/daily", "", http.StatusBadRequest},
		{"POST", "/claims/lottery", "", http.StatusNotFound},
		{"POST", "/missions/daily_1/claim", "", http.StatusOK},
		{"POST", "/missions/nope/claim", "", http.StatusNotFound},
		{"POST", "/gacha/ten", "", http.StatusPaymentRequired},
		{"POST", "/rebirth", "", http.StatusBadRequest},
		{"PUT", "/job", `{"job":"pirate"}`, http.StatusNotFound},
		{"PUT", "/job", `{`, http.StatusBadRequest},
		{"PUT", "/pet", `{"monster":"slime"}`, http.StatusBadRequest},
		{"POST", "/shop/elixir", "", http.StatusNotFound},
		{"POST", "/focus/start", "", http.StatusOK},
		{"POST", "/focus/start", "", http.StatusBadRequest},
		{"POST", "/focus/pause", "", http.StatusNotFound},
		{"POST", "/outing/end", "", http.StatusBadRequest},
		{"POST", "/rest-day", "", http.StatusBadRequest},
	}
	for _, tt := range tests {
		rec := serve(h, tt.method, tt.path, tt.body)
		if rec.Code != tt.want {
			t.Errorf("%s %s = %d, want %d: %s", tt.method, tt.path, rec.Code, tt.want, rec.Body.String())
		}
	}
}

func TestHandlerCompleteTaskBody(t *testing.T) {
	f := newFixture(t, tuesday, quiet())
	rec := serve(newTestRouter(f), "POST", "/tasks/walk/complete", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	var resp models.TaskCompleteResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Task != "walk" || resp.Gold != 40 || resp.Floor != 2 {
		t.Errorf("resp = %+v", resp)
	}
}

func TestHandlerRequiresPlayer(t *testing.T) {
	f := newFixture(t, tuesday, quiet())
	r := mux.NewRouter()
	NewHandler(f.svc).Register(r)

	rec := serve(r, "GET", "/state", "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("load player: %w", store.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("%w: %q", ErrUnknownTask, "nap"), http.StatusNotFound},
		{fmt.Errorf("daily: %w", ErrAlreadyClaimed), http.StatusConflict},
		{fmt.Errorf("need 5G: %w", ErrInsufficientGold), http.StatusPaymentRequired},
		{ErrRebirthLocked, http.StatusBadRequest},
		{ErrSessionState, http.StatusBadRequest},
		{&store.WriteError{Op: "claim login", Field: store.FieldGold, GuardCommitted: true, Err: errors.New("disk full")}, http.StatusInternalServerError},
		{&store.WriteError{Op: "claim boss", Field: store.FieldGold, GuardCommitted: true, Err: fmt.Errorf("write gold: %w", store.ErrNotFound)}, http.StatusInternalServerError},
		{&store.SchemaError{Field: store.FieldLevel, Reason: "not a number"}, http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

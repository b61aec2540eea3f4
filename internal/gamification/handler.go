package gamification

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/lifequest/backend/internal/middleware"
	"github.com/lifequest/backend/internal/models"
	"github.com/lifequest/backend/internal/store"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Register mounts the engine routes on a protected subrouter.
func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/state", h.GetState).Methods("GET")
	r.HandleFunc("/history", h.GetHistory).Methods("GET")
	r.HandleFunc("/catalog/tasks", h.ListTasks).Methods("GET")
	r.HandleFunc("/tasks/{key}/complete", h.CompleteTask).Methods("POST")
	r.HandleFunc("/rebirth", h.Rebirth).Methods("POST")
	r.HandleFunc("/claims/{claim}", h.Claim).Methods("POST")
	r.HandleFunc("/missions/{id}/claim", h.ClaimMission).Methods("POST")
	r.HandleFunc("/gacha/{mode}", h.Draw).Methods("POST")
	r.HandleFunc("/job", h.ChangeJob).Methods("PUT")
	r.HandleFunc("/pet", h.EquipPet).Methods("PUT")
	r.HandleFunc("/shop/{item}", h.Buy).Methods("POST")
	r.HandleFunc("/rest-day", h.RestDay).Methods("POST")
	r.HandleFunc("/focus/{action}", h.Focus).Methods("POST")
	r.HandleFunc("/outing/{action}", h.Outing).Methods("POST")
}

func getPlayerID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := middleware.PlayerID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
	}
	return id, ok
}

// ── Read Model ──────────────────────────────────────────

func (h *Handler) GetState(w http.ResponseWriter, r *http.Request) {
	playerID, ok := getPlayerID(w, r)
	if !ok {
		return
	}
	resp, err := h.service.State(r.Context(), playerID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	playerID, ok := getPlayerID(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	var since time.Time
	if v := q.Get("since"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "since must be RFC3339"})
			return
		}
		since = t
	}
	resp, err := h.service.History(r.Context(), playerID, q.Get("kind"), since, intQueryParam(q, "limit", 100))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.Catalog().Tasks)
}

// ── Progression ─────────────────────────────────────────

func (h *Handler) CompleteTask(w http.ResponseWriter, r *http.Request) {
	playerID, ok := getPlayerID(w, r)
	if !ok {
		return
	}
	resp, err := h.service.CompleteTask(r.Context(), playerID, mux.Vars(r)["key"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) Rebirth(w http.ResponseWriter, r *http.Request) {
	playerID, ok := getPlayerID(w, r)
	if !ok {
		return
	}
	resp, err := h.service.Rebirth(r.Context(), playerID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// ── Claims ──────────────────────────────────────────────

func (h *Handler) Claim(w http.ResponseWriter, r *http.Request) {
	playerID, ok := getPlayerID(w, r)
	if !ok {
		return
	}
	var (
		resp *models.ClaimResponse
		err  error
	)
	ctx := r.Context()
	switch claim := mux.Vars(r)["claim"]; claim {
	case "login":
		resp, err = h.service.ClaimLogin(ctx, playerID)
	case "daily":
		resp, err = h.service.ClaimDaily(ctx, playerID)
	case "weekly":
		resp, err = h.service.ClaimWeekly(ctx, playerID)
	case "seasonal":
		resp, err = h.service.ClaimSeasonal(ctx, playerID)
	case "boss":
		resp, err = h.service.ClaimBoss(ctx, playerID)
	case "achievements":
		resp, err = h.service.ClaimAchievements(ctx, playerID)
	case "pomodoro":
		resp, err = h.service.ClaimPomodoro(ctx, playerID)
	default:
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Unknown claim " + strconv.Quote(claim)})
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) ClaimMission(w http.ResponseWriter, r *http.Request) {
	playerID, ok := getPlayerID(w, r)
	if !ok {
		return
	}
	resp, err := h.service.ClaimMission(r.Context(), playerID, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// ── Gacha & Shop ────────────────────────────────────────

func (h *Handler) Draw(w http.ResponseWriter, r *http.Request) {
	playerID, ok := getPlayerID(w, r)
	if !ok {
		return
	}
	resp, err := h.service.Draw(r.Context(), playerID, mux.Vars(r)["mode"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) Buy(w http.ResponseWriter, r *http.Request) {
	playerID, ok := getPlayerID(w, r)
	if !ok {
		return
	}
	resp, err := h.service.Buy(r.Context(), playerID, mux.Vars(r)["item"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) ChangeJob(w http.ResponseWriter, r *http.Request) {
	playerID, ok := getPlayerID(w, r)
	if !ok {
		return
	}
	var req models.ChangeJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}
	resp, err := h.service.ChangeJob(r.Context(), playerID, req.Job)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) EquipPet(w http.ResponseWriter, r *http.Request) {
	playerID, ok := getPlayerID(w, r)
	if !ok {
		return
	}
	var req models.EquipPetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}
	resp, err := h.service.EquipPet(r.Context(), playerID, req.Monster)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// ── Side activities ─────────────────────────────────────

func (h *Handler) RestDay(w http.ResponseWriter, r *http.Request) {
	playerID, ok := getPlayerID(w, r)
	if !ok {
		return
	}
	resp, err := h.service.RestDay(r.Context(), playerID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) Focus(w http.ResponseWriter, r *http.Request) {
	playerID, ok := getPlayerID(w, r)
	if !ok {
		return
	}
	var (
		resp *models.SessionResponse
		err  error
	)
	switch mux.Vars(r)["action"] {
	case "start":
		resp, err = h.service.StartFocus(r.Context(), playerID)
	case "end":
		resp, err = h.service.EndFocus(r.Context(), playerID)
	default:
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Unknown focus action"})
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) Outing(w http.ResponseWriter, r *http.Request) {
	playerID, ok := getPlayerID(w, r)
	if !ok {
		return
	}
	var (
		resp *models.SessionResponse
		err  error
	)
	switch mux.Vars(r)["action"] {
	case "start":
		resp, err = h.service.StartOuting(r.Context(), playerID)
	case "end":
		resp, err = h.service.EndOuting(r.Context(), playerID)
	default:
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Unknown outing action"})
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// ── Helpers ─────────────────────────────────────────────

// statusFor maps engine errors to HTTP codes. A failed write is always a
// server error, whatever it wraps.
func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrWriteFailure):
		return http.StatusInternalServerError
	case errors.Is(err, store.ErrNotFound),
		errors.Is(err, ErrUnknownTask),
		errors.Is(err, ErrUnknownMonster),
		errors.Is(err, ErrUnknownJob),
		errors.Is(err, ErrUnknownItem),
		errors.Is(err, ErrUnknownMission):
		return http.StatusNotFound
	case errors.Is(err, ErrAlreadyClaimed):
		return http.StatusConflict
	case errors.Is(err, ErrInsufficientGold):
		return http.StatusPaymentRequired
	case errors.Is(err, ErrNotEligible),
		errors.Is(err, ErrRebirthLocked),
		errors.Is(err, ErrNotOwned),
		errors.Is(err, ErrSessionState):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Printf("[gamification] request failed: %v", err)
	}
	writeJSON(w, status, models.ErrorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func intQueryParam(query url.Values, key string, defaultVal int) int {
	s := query.Get(key)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return defaultVal
	}
	return v
}

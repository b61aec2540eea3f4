package auth

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/lifequest/backend/internal/middleware"
	"github.com/lifequest/backend/internal/models"
)

// Handler authenticates the single operator. There is no registration:
// the player id and password hash come from configuration.
type Handler struct {
	playerID     string
	passwordHash []byte
	secret       []byte
	ttl          time.Duration
	now          func() time.Time
}

func NewHandler(playerID, passwordHash string, secret []byte, ttl time.Duration) *Handler {
	return &Handler{
		playerID:     playerID,
		passwordHash: []byte(passwordHash),
		secret:       secret,
		ttl:          ttl,
		now:          time.Now,
	}
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if req.Password == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Password is required"})
		return
	}
	if len(h.passwordHash) == 0 {
		writeJSON(w, http.StatusServiceUnavailable, models.ErrorResponse{Error: "Login is not configured"})
		return
	}

	if err := bcrypt.CompareHashAndPassword(h.passwordHash, []byte(req.Password)); err != nil {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Invalid password"})
		return
	}

	expires := h.now().Add(h.ttl)
	token, err := GenerateToken(h.secret, h.playerID, h.now(), expires)
	if err != nil {
		log.Printf("[auth] sign token: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to generate token"})
		return
	}

	writeJSON(w, http.StatusOK, models.AuthResponse{Token: token, PlayerID: h.playerID, ExpiresAt: expires})
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	playerID, ok := middleware.PlayerID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}
	writeJSON(w, http.StatusOK, models.MeResponse{PlayerID: playerID})
}

// GenerateToken signs an HS256 token for playerID.
func GenerateToken(secret []byte, playerID string, issued, expires time.Time) (string, error) {
	claims := jwt.MapClaims{
		middleware.ClaimPlayerID: playerID,
		"exp":                    expires.Unix(),
		"iat":                    issued.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

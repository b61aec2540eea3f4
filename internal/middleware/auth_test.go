package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var testSecret = []byte("test-secret")

func sign(t *testing.T, method jwt.SigningMethod, key interface{}, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func TestAuthMiddleware(t *testing.T) {
	valid := sign(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{
		ClaimPlayerID: "u001",
		"exp":         time.Now().Add(time.Hour).Unix(),
	})
	expired := sign(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{
		ClaimPlayerID: "u001",
		"exp":         time.Now().Add(-time.Hour).Unix(),
	})
	noExp := sign(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{ClaimPlayerID: "u001"})
	wrongKey := sign(t, jwt.SigningMethodHS256, []byte("other"), jwt.MapClaims{
		ClaimPlayerID: "u001",
		"exp":         time.Now().Add(time.Hour).Unix(),
	})
	noPlayer := sign(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	hs512 := sign(t, jwt.SigningMethodHS512, testSecret, jwt.MapClaims{
		ClaimPlayerID: "u001",
		"exp":         time.Now().Add(time.Hour).Unix(),
	})

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"valid", "Bearer " + valid, http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"expired", "Bearer " + expired, http.StatusUnauthorized},
		{"no expiry", "Bearer " + noExp, http.StatusUnauthorized},
		{"wrong key", "Bearer " + wrongKey, http.StatusUnauthorized},
		{"no player claim", "Bearer " + noPlayer, http.StatusUnauthorized},
		{"other algorithm", "Bearer " + hs512, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			h := AuthMiddleware(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got, _ = PlayerID(r.Context())
				w.WriteHeader(http.StatusOK)
			}))
			req := httptest.NewRequest("GET", "/api/v1/state", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d", rec.Code, tt.want)
			}
			if tt.want == http.StatusOK && got != "u001" {
				t.Errorf("player id = %q, want u001", got)
			}
		})
	}
}

func TestPlayerIDMissing(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	if _, ok := PlayerID(req.Context()); ok {
		t.Error("PlayerID on bare context reported ok")
	}
	if id, ok := PlayerID(WithPlayerID(req.Context(), "u002")); !ok || id != "u002" {
		t.Errorf("PlayerID = %q, %v", id, ok)
	}
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func newSecretRouter(secret string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/guarded", BatchSecret(secret), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"authorized": IsAuthenticated(c)})
	})
	return r
}

func TestBatchSecret(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		secret     string
		authHeader string
		wantStatus int
	}{
		{"matching bearer token", "s3cret", "Bearer s3cret", http.StatusOK},
		{"bare token without scheme", "s3cret", "s3cret", http.StatusOK},
		{"case-insensitive scheme", "s3cret", "bearer s3cret", http.StatusOK},
		{"wrong token", "s3cret", "Bearer nope", http.StatusUnauthorized},
		{"missing header", "s3cret", "", http.StatusUnauthorized},
		{"empty secret disables guard", "", "", http.StatusOK},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := newSecretRouter(tt.secret)
			req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}

func TestNormalizeToken(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw  string
		want string
	}{
		{"Bearer abc", "abc"},
		{"bearer abc", "abc"},
		{"  Bearer   abc  ", "abc"},
		{"abc", "abc"},
		{"Bearer", "Bearer"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeToken(tt.raw); got != tt.want {
			t.Errorf("NormalizeToken(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

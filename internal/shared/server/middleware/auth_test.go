package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func adminRouter(token string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Identity())
	r.POST("/admin", RequireAdmin(token), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true, "reviewer": ReviewerIDFromContext(c)})
	})
	return r
}

func TestRequireAdmin(t *testing.T) {
	r := adminRouter("s3cret")

	cases := []struct {
		name   string
		header string
		want   int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic s3cret", http.StatusUnauthorized},
		{"wrong token", "Bearer nope", http.StatusForbidden},
		{"valid token", "Bearer s3cret", http.StatusOK},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodPost, "/admin", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != tc.want {
			t.Errorf("%s: got %d, want %d", tc.name, w.Code, tc.want)
		}
	}
}

func TestRequireAdminUnconfigured(t *testing.T) {
	r := adminRouter("")
	req := httptest.NewRequest(http.MethodPost, "/admin", nil)
	req.Header.Set("Authorization", "Bearer anything")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("unconfigured admin capability: got %d, want 503", w.Code)
	}
}

func TestIdentityHeader(t *testing.T) {
	r := adminRouter("s3cret")
	req := httptest.NewRequest(http.MethodPost, "/admin", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	req.Header.Set("X-Reviewer-Id", "reviewer-42")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("got %d", w.Code)
	}
	if body := w.Body.String(); !strings.Contains(body, "reviewer-42") {
		t.Fatalf("reviewer id missing from response: %s", body)
	}
}

package middlewares

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/geocoder89/storefront/internal/actorctx"
	"github.com/geocoder89/storefront/internal/domain/user"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeVerifier struct {
	verifyFn func(token string) (string, error)
}

func (f fakeVerifier) Verify(token string) (string, error) {
	return f.verifyFn(token)
}

type fakeUsers struct {
	getFn func(ctx context.Context, id string) (user.User, error)
}

func (f fakeUsers) GetByID(ctx context.Context, id string) (user.User, error) {
	return f.getFn(ctx, id)
}

// tokens are "tok-<userID>"; anything else is rejected
var verifier = fakeVerifier{verifyFn: func(token string) (string, error) {
	if !strings.HasPrefix(token, "tok-") {
		return "", errors.New("bad token")
	}
	return strings.TrimPrefix(token, "tok-"), nil
}}

var users = fakeUsers{getFn: func(_ context.Context, id string) (user.User, error) {
	switch id {
	case "seller-1":
		return user.User{ID: id, Role: user.RoleSeller}, nil
	case "buyer-1":
		return user.User{ID: id, Role: user.RoleBuyer}, nil
	case "broken":
		return user.User{}, errors.New("db down")
	default:
		return user.User{}, user.ErrNotFound
	}
}}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()

	var body struct {
		Error APIError `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v body=%s", err, w.Body.String())
	}
	if body.Error.Title == "" {
		t.Fatalf("error body has no title: %s", w.Body.String())
	}
	return body.Error.Code
}

func TestRequireAuth(t *testing.T) {
	m := NewAuthMiddleware(verifier, users)

	r := gin.New()
	r.GET("/p", m.RequireAuth(), func(c *gin.Context) {
		id, _ := UserIDFromContext(c)
		tok, _ := TokenFromContext(c)
		c.String(http.StatusOK, id+"|"+tok)
	})

	tests := []struct {
		name       string
		token      string
		wantStatus int
		wantCode   string
	}{
		{"missing", "", http.StatusUnauthorized, "missing_token"},
		{"invalid", "garbage", http.StatusUnauthorized, "invalid_token"},
		{"valid", "tok-buyer-1", http.StatusOK, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/p", nil)
			if tc.token != "" {
				req.Header.Set(TokenHeader, tc.token)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tc.wantStatus {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tc.wantStatus, w.Body.String())
			}
			if tc.wantCode != "" {
				if got := errorCode(t, w); got != tc.wantCode {
					t.Fatalf("got code %q, want %q", got, tc.wantCode)
				}
				return
			}
			if w.Body.String() != "buyer-1|tok-buyer-1" {
				t.Fatalf("unexpected identity binding: %s", w.Body.String())
			}
		})
	}
}

func TestRequireSeller(t *testing.T) {
	m := NewAuthMiddleware(verifier, users)

	r := gin.New()
	r.GET("/s", m.RequireSeller(), func(c *gin.Context) {
		u, ok := UserFromContext(c)
		if !ok {
			c.Status(http.StatusTeapot)
			return
		}
		c.String(http.StatusOK, u.ID)
	})

	tests := []struct {
		name       string
		token      string
		wantStatus int
		wantCode   string
	}{
		{"no token", "", http.StatusUnauthorized, "missing_token"},
		{"bad token", "nope", http.StatusUnauthorized, "invalid_token"},
		{"buyer", "tok-buyer-1", http.StatusForbidden, "forbidden"},
		{"deleted user", "tok-ghost", http.StatusNotFound, "user_not_found"},
		{"store failure", "tok-broken", http.StatusInternalServerError, "internal_error"},
		{"seller", "tok-seller-1", http.StatusOK, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/s", nil)
			if tc.token != "" {
				req.Header.Set(TokenHeader, tc.token)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tc.wantStatus {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tc.wantStatus, w.Body.String())
			}
			if tc.wantCode != "" {
				if got := errorCode(t, w); got != tc.wantCode {
					t.Fatalf("got code %q, want %q", got, tc.wantCode)
				}
			}
		})
	}
}

func TestRateLimiterBlocksAfterLimit(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)

	r := gin.New()
	r.POST("/signin", rl.RateLimiterMiddleware(KeyByIP), func(c *gin.Context) { c.Status(http.StatusOK) })

	var last *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/signin", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		last = httptest.NewRecorder()
		r.ServeHTTP(last, req)
	}

	if last.Code != http.StatusTooManyRequests {
		t.Fatalf("got status %d, want 429", last.Code)
	}
	if last.Header().Get("Retry-After") == "" {
		t.Fatalf("expected Retry-After header")
	}
	if got := errorCode(t, last); got != "rate_limited" {
		t.Fatalf("got code %q", got)
	}
}

func TestRequestIDPropagates(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/x", func(c *gin.Context) {
		if id, _ := actorctx.RequestIDFrom(c.Request.Context()); id != RequestIDFromContext(c) {
			t.Errorf("request context id %q does not match gin id %q", id, RequestIDFromContext(c))
		}
		c.String(http.StatusOK, RequestIDFromContext(c))
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-Id", "req-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Body.String() != "req-123" || w.Header().Get("X-Request-Id") != "req-123" {
		t.Fatalf("request id not propagated: body=%s header=%s", w.Body.String(), w.Header().Get("X-Request-Id"))
	}
}

func TestRequireJSON(t *testing.T) {
	r := gin.New()
	r.Use(RequireJSON())
	r.POST("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader("name=x"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("got status %d, want 415", w.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/x", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("bodyless POST: got status %d, want 200", w.Code)
	}
}

func TestRequestTimeoutSetsDeadline(t *testing.T) {
	r := gin.New()
	r.Use(RequestTimeout(time.Second))
	r.GET("/x", func(c *gin.Context) {
		if _, ok := c.Request.Context().Deadline(); !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected request context to carry a deadline")
	}
}

func TestCORSReflectsOnlyAllowedOrigins(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware([]string{"https://shop.example.com/"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	cases := []struct {
		origin string
		want   string
	}{
		{origin: "https://shop.example.com", want: "https://shop.example.com"},
		{origin: "https://evil.example.com", want: ""},
	}

	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set("Origin", tc.origin)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if got := w.Header().Get("Access-Control-Allow-Origin"); got != tc.want {
			t.Fatalf("origin %s: got allow-origin %q, want %q", tc.origin, got, tc.want)
		}
	}
}

func TestCORSPreflightShortCircuits(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware([]string{"*"}))
	r.OPTIONS("/x", func(c *gin.Context) { t.Fatalf("preflight reached handler") })

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "https://anywhere.test")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("got status %d, want %d", w.Code, http.StatusNoContent)
	}
	if !strings.Contains(w.Header().Get("Access-Control-Allow-Headers"), TokenHeader) {
		t.Fatalf("token header not allowed: %q", w.Header().Get("Access-Control-Allow-Headers"))
	}
}

func TestSecurityHeadersHSTSOnlyWhenEnabled(t *testing.T) {
	for _, hsts := range []bool{false, true} {
		r := gin.New()
		r.Use(SecurityHeaders(hsts))
		r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

		if w.Header().Get("X-Content-Type-Options") != "nosniff" {
			t.Fatalf("missing nosniff header")
		}
		if got := w.Header().Get("Strict-Transport-Security") != ""; got != hsts {
			t.Fatalf("hsts=%v but header present=%v", hsts, got)
		}
	}
}

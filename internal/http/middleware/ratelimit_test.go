package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func newLimitedRouter(rps float64, burst int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	rl := NewRateLimiter(rps, burst, KeyByUserOrIP())
	r.Use(rl.Handler())
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	return r
}

func TestRateLimiter_AllowsWithinBurst(t *testing.T) {
	r := newLimitedRouter(0, 3)

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("request %d: got %d, want 200", i, w.Code)
		}
	}
}

func TestRateLimiter_RejectsOverBurstWithStableCode(t *testing.T) {
	r := newLimitedRouter(0, 1)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("first request: got %d, want 200", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("second request: got %d, want 429", w.Code)
	}
	if got := w.Header().Get("Retry-After"); got != "1" {
		t.Fatalf("Retry-After = %q, want 1", got)
	}

	var body struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Code != CodeRateLimited {
		t.Fatalf("code = %q, want %q", body.Code, CodeRateLimited)
	}
}

func TestRateLimiter_BucketsAreKeyedPerIdentity(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	rl := NewRateLimiter(0, 1, KeyByUserOrIP())
	r.GET("/ping", func(c *gin.Context) {
		c.Set("userID", c.Query("as"))
		rl.Handler()(c)
		if !c.IsAborted() {
			c.String(http.StatusOK, "pong")
		}
	})

	do := func(user string) int {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping?as="+user, nil))
		return w.Code
	}

	if got := do("alice"); got != http.StatusOK {
		t.Fatalf("alice first: got %d", got)
	}
	if got := do("bob"); got != http.StatusOK {
		t.Fatalf("bob must have a separate bucket, got %d", got)
	}
	if got := do("alice"); got != http.StatusTooManyRequests {
		t.Fatalf("alice second: got %d, want 429", got)
	}
}

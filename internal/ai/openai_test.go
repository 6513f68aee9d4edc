package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestComplete_Success(t *testing.T) {
	var gotAuth string
	var gotReq chatReq

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&gotReq)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": "  Come try our mango juice!  "}},
			},
		})
	}))
	defer srv.Close()

	c := NewOpenAIClient(srv.URL, "sk-test", "gpt-4o-mini", 80, time.Second)
	out, err := c.Complete(context.Background(), "persona", "customer prompt")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if out != "Come try our mango juice!" {
		t.Fatalf("expected trimmed content, got %q", out)
	}
	if gotAuth != "Bearer sk-test" {
		t.Fatalf("expected bearer auth, got %q", gotAuth)
	}
	if len(gotReq.Messages) != 2 || gotReq.Messages[0].Role != "system" || gotReq.Messages[1].Content != "customer prompt" {
		t.Fatalf("unexpected request payload: %+v", gotReq)
	}
	if gotReq.MaxTokens != 80 {
		t.Fatalf("expected max_tokens 80, got %d", gotReq.MaxTokens)
	}
}

func TestComplete_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"quota exceeded"}}`))
	}))
	defer srv.Close()

	c := NewOpenAIClient(srv.URL, "sk-test", "", 0, time.Second)
	if _, err := c.Complete(context.Background(), "p", "q"); err == nil || !strings.Contains(err.Error(), "quota") {
		t.Fatalf("expected quota error, got %v", err)
	}
}

func TestComplete_APIErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"error":{"message":"model overloaded"},"choices":[]}`))
	}))
	defer srv.Close()

	c := NewOpenAIClient(srv.URL, "sk-test", "", 0, time.Second)
	if _, err := c.Complete(context.Background(), "p", "q"); err == nil || !strings.Contains(err.Error(), "overloaded") {
		t.Fatalf("expected api error, got %v", err)
	}
}

func TestComplete_EmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	c := NewOpenAIClient(srv.URL, "sk-test", "", 0, time.Second)
	if _, err := c.Complete(context.Background(), "p", "q"); err == nil {
		t.Fatal("expected error on empty choices")
	}
}

func TestComplete_RequiresAPIKey(t *testing.T) {
	c := NewOpenAIClient("http://localhost:0", "", "", 0, time.Second)
	if _, err := c.Complete(context.Background(), "p", "q"); err == nil {
		t.Fatal("expected error without api key")
	}
}

package llm

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func fakeProvider(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
}

func TestCompleteNotConfigured(t *testing.T) {
	client := NewClient("", "", "test-model", 0.5, 2000, 60)

	_, err := client.Complete(context.Background(), "system", "user")
	if !errors.Is(err, ErrNotConfigured) {
		t.Errorf("err = %v, want ErrNotConfigured", err)
	}
}

func TestCompleteSuccess(t *testing.T) {
	server := fakeProvider(t, http.StatusOK, `{
		"choices": [{"message": {"role": "assistant", "content": "{\"a\": 1}"}}],
		"usage": {"prompt_tokens": 10, "completion_tokens": 5}
	}`)
	defer server.Close()

	client := NewClient(server.URL+"/v1", "test-key", "test-model", 0.5, 2000, 60)

	content, err := client.Complete(context.Background(), "system", "user")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if content != `{"a": 1}` {
		t.Errorf("content = %q", content)
	}
}

func TestCompleteEmptyContent(t *testing.T) {
	server := fakeProvider(t, http.StatusOK, `{
		"choices": [{"message": {"role": "assistant", "content": ""}}]
	}`)
	defer server.Close()

	client := NewClient(server.URL+"/v1", "test-key", "test-model", 0.5, 2000, 60)

	_, err := client.Complete(context.Background(), "system", "user")
	if !errors.Is(err, ErrEmptyResponse) {
		t.Errorf("err = %v, want ErrEmptyResponse", err)
	}
}

func TestCompleteUpstreamFailure(t *testing.T) {
	server := fakeProvider(t, http.StatusServiceUnavailable, `{
		"error": {"message": "model overloaded", "type": "server_error"}
	}`)
	defer server.Close()

	client := NewClient(server.URL+"/v1", "test-key", "test-model", 0.5, 2000, 60)

	_, err := client.Complete(context.Background(), "system", "user")
	if !errors.Is(err, ErrServiceUnavailable) {
		t.Errorf("err = %v, want ErrServiceUnavailable", err)
	}
}

package provider

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/flatout-solutions/rental-assistant/internal/domain"
)

func newRecordingClient() (*RetryingClient, *[]time.Duration) {
	var sleeps []time.Duration
	rc := NewRetryingClient(time.Second)
	rc.Sleep = func(d time.Duration) { sleeps = append(sleeps, d) }
	return rc, &sleeps
}

func getRequest(t *testing.T, url string) func() (*http.Request, error) {
	t.Helper()
	return func() (*http.Request, error) {
		return http.NewRequest(http.MethodGet, url, nil)
	}
}

func TestRetryRecoversFromServerErrors(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	rc, sleeps := newRecordingClient()
	body, err := rc.Do(getRequest(t, server.URL))
	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	if string(body) != `{"ok":true}` {
		t.Fatalf("unexpected body: %s", body)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
	want := []time.Duration{500 * time.Millisecond, time.Second}
	if len(*sleeps) != 2 || (*sleeps)[0] != want[0] || (*sleeps)[1] != want[1] {
		t.Fatalf("unexpected backoff: %v", *sleeps)
	}
}

func TestRetryGivesUpAfterMaxAttempts(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("boom"))
	}))
	defer server.Close()

	rc, sleeps := newRecordingClient()
	_, err := rc.Do(getRequest(t, server.URL))
	if !errors.Is(err, domain.ErrBackendUnavailable) {
		t.Fatalf("expected ErrBackendUnavailable, got %v", err)
	}
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.Code != http.StatusInternalServerError {
		t.Fatalf("expected wrapped StatusError, got %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
	if len(*sleeps) != 2 {
		t.Fatalf("expected 2 backoff sleeps, got %v", *sleeps)
	}
}

func TestRetryClientErrorFailsImmediately(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("no such thing"))
	}))
	defer server.Close()

	rc, sleeps := newRecordingClient()
	_, err := rc.Do(getRequest(t, server.URL))
	if !errors.Is(err, domain.ErrBackendUnavailable) {
		t.Fatalf("expected ErrBackendUnavailable, got %v", err)
	}
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.Code != http.StatusNotFound {
		t.Fatalf("expected wrapped StatusError, got %v", err)
	}
	if attempts != 1 {
		t.Fatalf("expected a single attempt, got %d", attempts)
	}
	if len(*sleeps) != 0 {
		t.Fatalf("expected no backoff, got %v", *sleeps)
	}
}

func TestRetryConnectionErrorFailsImmediately(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // nothing is listening anymore

	rc, sleeps := newRecordingClient()
	_, err := rc.Do(getRequest(t, server.URL))
	if !errors.Is(err, domain.ErrBackendUnavailable) {
		t.Fatalf("expected ErrBackendUnavailable, got %v", err)
	}
	if len(*sleeps) != 0 {
		t.Fatalf("expected no backoff, got %v", *sleeps)
	}
}

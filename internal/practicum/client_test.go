package practicum

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	logx "hwbot/pkg/logx"
)

func newTestClient(url string) *Client {
	return NewClient(ClientConfig{Endpoint: url, Token: "secret"}, logx.Nop())
}

func TestFetchHomeworksSuccess(t *testing.T) {
	t.Parallel()

	var gotFrom, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotFrom = r.URL.Query().Get("from_date")
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"homeworks":[{"homework_name":"lab1","status":"approved"}],"current_date":1700000000}`))
	}))
	defer srv.Close()

	payload, err := newTestClient(srv.URL).FetchHomeworks(context.Background(), 42)
	if err != nil {
		t.Fatalf("FetchHomeworks error: %v", err)
	}
	if gotFrom != "42" {
		t.Fatalf("from_date = %q, want 42", gotFrom)
	}
	if gotAuth != "OAuth secret" {
		t.Fatalf("Authorization = %q, want OAuth secret", gotAuth)
	}

	list, err := ExtractHomeworks(payload)
	if err != nil {
		t.Fatalf("ExtractHomeworks error: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("got %d homeworks, want 1", len(list))
	}
	if cd, ok := CurrentDate(payload); !ok || cd != 1700000000 {
		t.Fatalf("CurrentDate = %d/%v, want 1700000000/true", cd, ok)
	}
}

func TestFetchHomeworksNegativeWatermarkClamped(t *testing.T) {
	t.Parallel()

	var gotFrom string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotFrom = r.URL.Query().Get("from_date")
		_, _ = w.Write([]byte(`{"homeworks":[]}`))
	}))
	defer srv.Close()

	if _, err := newTestClient(srv.URL).FetchHomeworks(context.Background(), -5); err != nil {
		t.Fatalf("FetchHomeworks error: %v", err)
	}
	if gotFrom != "0" {
		t.Fatalf("from_date = %q, want 0", gotFrom)
	}
}

func TestFetchHomeworksUnexpectedStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).FetchHomeworks(context.Background(), 1)
	var us *UnexpectedStatusError
	if !errors.As(err, &us) {
		t.Fatalf("error = %v, want *UnexpectedStatusError", err)
	}
	if us.Code != http.StatusServiceUnavailable {
		t.Fatalf("Code = %d, want 503", us.Code)
	}
	if !strings.Contains(us.Body, "maintenance") {
		t.Fatalf("Body = %q, should carry the response body", us.Body)
	}
	if us.From != 1 {
		t.Fatalf("From = %d, want 1", us.From)
	}
}

func TestFetchHomeworksSoftFailureKeys(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		body string
		key  string
	}{
		{name: "error key", body: `{"error":{"error":"timestamp in future"}}`, key: "error"},
		{name: "code key", body: `{"code":"not_authenticated"}`, key: "code"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := newTestClient(srv.URL).FetchHomeworks(context.Background(), 0)
			var re *APIRefusalError
			if !errors.As(err, &re) {
				t.Fatalf("error = %v, want *APIRefusalError", err)
			}
			if re.Key != tt.key {
				t.Fatalf("Key = %q, want %q", re.Key, tt.key)
			}
		})
	}
}

func TestFetchHomeworksConnectionFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	_, err := newTestClient(srv.URL).FetchHomeworks(context.Background(), 10)
	var ce *ConnectionError
	if !errors.As(err, &ce) {
		t.Fatalf("error = %v, want *ConnectionError", err)
	}
	if ce.From != 10 {
		t.Fatalf("From = %d, want 10", ce.From)
	}
	if ce.Unwrap() == nil {
		t.Fatal("ConnectionError should wrap its cause")
	}
}

func TestFetchHomeworksMalformedJSON(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"homeworks": [`))
	}))
	defer srv.Close()

	if _, err := newTestClient(srv.URL).FetchHomeworks(context.Background(), 0); err == nil {
		t.Fatal("expected error for malformed JSON body")
	}
}

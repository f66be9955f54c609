package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kopisenja/pos-client/pkg/config"
	pkgerrors "github.com/kopisenja/pos-client/pkg/errors"
	"github.com/kopisenja/pos-client/pkg/logger"
)

type staticTokens string

func (s staticTokens) Token(ctx context.Context) string { return string(s) }

func newTestClient(t *testing.T, serverURL string, opts ...func(*Params)) *Client {
	t.Helper()
	params := Params{
		Config: config.APIConfig{
			BaseURL:        serverURL,
			RequestTimeout: 2 * time.Second,
			RetryAttempts:  2,
			RetryDelay:     0,
		},
		Tokens: staticTokens("tok-123"),
		Logger: logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
	}
	for _, opt := range opts {
		opt(&params)
	}
	client, err := NewClient(params)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func TestBearerTokenAttached(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	if _, err := client.Products.List(context.Background(), ProductListParams{}); err != nil {
		t.Fatalf("list: %v", err)
	}
	if gotAuth != "Bearer tok-123" {
		t.Fatalf("expected bearer header, got %q", gotAuth)
	}
}

func TestRetriesTransientThenSucceeds(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	if _, err := client.Orders.List(context.Background(), OrderListParams{}); err != nil {
		t.Fatalf("expected eventual success, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}

func TestNoRetryOnValidationError(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"price must be positive"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.Products.Get(context.Background(), "p1")
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Fatalf("4xx must not retry, got %d calls", calls)
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation code, got %v", err)
	}
	if typed.Message() != "price must be positive" {
		t.Fatalf("expected server-provided text, got %q", typed.Message())
	}
}

func TestUnauthorizedFiresHookOnce(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	var hookCalls int
	client := newTestClient(t, server.URL, func(p *Params) {
		p.OnUnauthenticated = func() { hookCalls++ }
	})

	_, err := client.Users.List(context.Background())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthenticated {
		t.Fatalf("expected unauthenticated code, got %v", err)
	}
	if hookCalls != 1 {
		t.Fatalf("expected logout hook fired once, got %d", hookCalls)
	}
}

func TestTimeoutClassifiedRetryable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Hold the response until the client gives up.
		<-r.Context().Done()
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, func(p *Params) {
		p.Config.RequestTimeout = 50 * time.Millisecond
		p.Config.RetryAttempts = 1
	})

	_, err := client.Orders.Get(context.Background(), "o1")
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if !pkgerrors.Retryable(err) {
		t.Fatalf("timeouts must classify as retryable, got %v", err)
	}
}

func TestCreateOrderValidatesLocally(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.Orders.Create(context.Background(), OrderPayload{Status: "DRAFT"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected local validation error, got %v", err)
	}
	if calls != 0 {
		t.Fatalf("invalid payload must not reach the wire, got %d calls", calls)
	}
}

func TestReportsExportReturnsRawBytes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/Reports/export" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "text/csv")
		w.Write([]byte("date,revenue\n2024-08-31,110000\n"))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	data, err := client.Reports.Export(context.Background(), ReportRange{})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if string(data) != "date,revenue\n2024-08-31,110000\n" {
		t.Fatalf("unexpected export body %q", data)
	}
}

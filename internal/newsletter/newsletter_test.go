package newsletter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/oszuidwest/hotelsite/internal/util"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type fakeNotifier struct {
	mu   sync.Mutex
	sent []string
}

func (f *fakeNotifier) Notify(address string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, address)
}

func newTestService() (*Service, *fakeNotifier, *prometheus.CounterVec) {
	n := &fakeNotifier{}
	signups := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "signups_total"}, []string{"result"})
	return NewService(n, signups), n, signups
}

func TestSubscribe(t *testing.T) {
	s, n, signups := newTestService()

	if err := s.Subscribe(context.Background(), "  guest@example.com "); err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	if len(n.sent) != 1 || n.sent[0] != "guest@example.com" {
		t.Errorf("sent = %v", n.sent)
	}

	err := s.Subscribe(context.Background(), "not-an-email")
	var verr *util.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Message != "Please enter a valid email address." {
		t.Errorf("message = %q", verr.Message)
	}
	if len(n.sent) != 1 {
		t.Error("invalid address was sent")
	}

	if got := testutil.ToFloat64(signups.WithLabelValues(ResultOK)); got != 1 {
		t.Errorf("ok signups = %v", got)
	}
	if got := testutil.ToFloat64(signups.WithLabelValues(ResultInvalid)); got != 1 {
		t.Errorf("invalid signups = %v", got)
	}
}

func TestSubscribe_CancelledContext(t *testing.T) {
	s, n, _ := newTestService()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Subscribe(ctx, "guest@example.com"); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v", err)
	}
	if len(n.sent) != 0 {
		t.Error("notification sent for cancelled request")
	}
}

func TestServeHTTP(t *testing.T) {
	tests := []struct {
		name        string
		method      string
		contentType string
		body        string
		wantStatus  int
		wantOK      bool
	}{
		{"json valid", http.MethodPost, "application/json", `{"email":"guest@example.com"}`, http.StatusOK, true},
		{"json invalid", http.MethodPost, "application/json", `{"email":"guest@"}`, http.StatusUnprocessableEntity, false},
		{"json malformed", http.MethodPost, "application/json", `{"email":`, http.StatusBadRequest, false},
		{"form valid", http.MethodPost, "application/x-www-form-urlencoded", url.Values{"email": {"guest@example.com"}}.Encode(), http.StatusOK, true},
		{"form empty", http.MethodPost, "application/x-www-form-urlencoded", "", http.StatusUnprocessableEntity, false},
		{"get", http.MethodGet, "", "", http.StatusMethodNotAllowed, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _, _ := newTestService()
			req := httptest.NewRequest(tt.method, "/api/newsletter", strings.NewReader(tt.body))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			rec := httptest.NewRecorder()
			s.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.method != http.MethodPost {
				return
			}
			var resp signupResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatal(err)
			}
			if resp.OK != tt.wantOK {
				t.Errorf("ok = %v, want %v", resp.OK, tt.wantOK)
			}
			if tt.wantStatus == http.StatusUnprocessableEntity && resp.Field != "email" {
				t.Errorf("field = %q", resp.Field)
			}
		})
	}
}

// Package newsletter accepts newsletter signups from the site footer.
package newsletter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/oszuidwest/hotelsite/internal/util"
	"github.com/prometheus/client_golang/prometheus"
)

// Signup outcomes recorded by the signups counter.
const (
	ResultOK      = "ok"
	ResultInvalid = "invalid"
)

// maxBodyBytes bounds a signup request body.
const maxBodyBytes = 4 << 10

// ThankYou is shown after a successful signup.
const ThankYou = "Thank you for subscribing!"

// Notifier delivers the signup to staff and the subscriber.
type Notifier interface {
	Notify(address string)
}

// Service validates signups and hands them to the notifier.
// Addresses are not stored.
type Service struct {
	notifier Notifier
	signups  *prometheus.CounterVec
}

// NewService creates a Service. signups may be nil.
func NewService(notifier Notifier, signups *prometheus.CounterVec) *Service {
	return &Service{notifier: notifier, signups: signups}
}

// ValidateEmail checks a submitted address.
func ValidateEmail(address string) *util.ValidationError {
	return util.ValidateEmail("email", strings.TrimSpace(address))
}

// Subscribe validates address and sends the signup notifications.
// Invalid addresses return a *util.ValidationError.
func (s *Service) Subscribe(ctx context.Context, address string) error {
	address = strings.TrimSpace(address)
	if verr := ValidateEmail(address); verr != nil {
		s.record(ResultInvalid)
		return verr
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.notifier != nil {
		s.notifier.Notify(address)
	}
	s.record(ResultOK)
	slog.Info("newsletter signup received")
	return nil
}

func (s *Service) record(result string) {
	if s.signups != nil {
		s.signups.WithLabelValues(result).Inc()
	}
}

type signupRequest struct {
	Email string `json:"email"`
}

type signupResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
	Field   string `json:"field,omitempty"`
}

// ServeHTTP handles a signup posted as JSON or as a form.
func (s *Service) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	address, err := readAddress(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, signupResponse{Message: "Invalid request"})
		return
	}

	err = s.Subscribe(r.Context(), address)
	var verr *util.ValidationError
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, signupResponse{OK: true, Message: ThankYou})
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, signupResponse{Message: verr.Message, Field: verr.Field})
	default:
		slog.Warn("newsletter signup failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, signupResponse{Message: "Please try again later."})
	}
}

func readAddress(r *http.Request) (string, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		var req signupRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return "", err
		}
		return req.Email, nil
	}
	if err := r.ParseForm(); err != nil {
		return "", err
	}
	return r.PostForm.Get("email"), nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("failed to write response", "error", err)
	}
}

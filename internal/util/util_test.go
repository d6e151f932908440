package util

import (
	"errors"
	"testing"
	"time"
)

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		value string
		ok    bool
	}{
		{"guest@example.com", true},
		{"a.b+news@hotel.co.uk", true},
		{"", false},
		{"guest@example", false},
		{"guest example@x.com", false},
		{"@example.com", false},
		{"guest@@example.com", false},
		{"guest@a.b", true},
		{"guest@.com", false},
	}
	for _, tt := range tests {
		err := ValidateEmail("email", tt.value)
		if (err == nil) != tt.ok {
			t.Errorf("ValidateEmail(%q) = %v, want ok=%v", tt.value, err, tt.ok)
		}
	}
}

func TestValidateEmail_TooLong(t *testing.T) {
	long := make([]byte, MaxEmailLength)
	for i := range long {
		long[i] = 'a'
	}
	if err := ValidateEmail("email", string(long)+"@x.com"); err == nil {
		t.Error("expected error for overlong address")
	}
}

func TestValidatePort(t *testing.T) {
	if err := ValidatePort("port", 0); err == nil {
		t.Error("port 0 accepted")
	}
	if err := ValidatePort("port", 8080); err != nil {
		t.Errorf("port 8080 rejected: %v", err)
	}
}

func TestWrapError(t *testing.T) {
	if WrapError("load content", nil) != nil {
		t.Error("WrapError(nil) should be nil")
	}
	base := errors.New("boom")
	err := WrapError("load content", base)
	if !errors.Is(err, base) {
		t.Error("wrapped error lost its cause")
	}
	if got := err.Error(); got != "failed to load content: boom" {
		t.Errorf("Error() = %q", got)
	}
}

func TestBackoff(t *testing.T) {
	b := NewBackoff(time.Second, 5*time.Second)
	want := []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 5 * time.Second, 5 * time.Second}
	for i, w := range want {
		if got := b.Next(); got != w {
			t.Errorf("Next() #%d = %v, want %v", i, got, w)
		}
	}
	b.Reset(time.Second)
	if got := b.Current(); got != time.Second {
		t.Errorf("Current() after Reset = %v", got)
	}
}

func TestFormatHumanTime(t *testing.T) {
	if got := FormatHumanTime("unknown"); got != "unknown" {
		t.Errorf("FormatHumanTime(unknown) = %q", got)
	}
	if got := FormatHumanTime("2026-01-02T03:04:05Z"); got == "2026-01-02T03:04:05Z" {
		t.Error("expected RFC3339 value to be reformatted")
	}
}

package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestAPIError(t *testing.T) {
	err := NewAPIError(400, "chat/completions", "bad request")

	expected := "API error [400] at chat/completions: bad request"
	if err.Error() != expected {
		t.Errorf("Error() = %s, want %s", err.Error(), expected)
	}

	noStatus := NewAPIError(0, "chat/completions", "connection reset")
	if noStatus.Error() != "API error at chat/completions: connection reset" {
		t.Errorf("unexpected message: %s", noStatus.Error())
	}
}

func TestTimeoutError(t *testing.T) {
	if NewTimeoutError("").Error() != "request timed out" {
		t.Errorf("unexpected empty message: %s", NewTimeoutError("").Error())
	}
	if NewTimeoutError("after 30s").Error() != "request timed out: after 30s" {
		t.Errorf("unexpected message: %s", NewTimeoutError("after 30s").Error())
	}
}

func TestConfigError_Unwrap(t *testing.T) {
	inner := errors.New("unexpected end of JSON input")
	err := fmt.Errorf("loading: %w", NewConfigError("/tmp/config.json", inner))

	if !errors.Is(err, inner) {
		t.Error("ConfigError should unwrap to its cause")
	}
	if !IsConfigError(err) {
		t.Error("IsConfigError should see through wrapping")
	}
}

func TestClassifiers(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		auth      bool
		rateLimit bool
		timeout   bool
		status    int
	}{
		{"unauthorized", NewAPIError(401, "x", "no"), true, false, false, 401},
		{"forbidden", NewAPIError(403, "x", "no"), true, false, false, 403},
		{"rate limited", fmt.Errorf("wrap: %w", NewAPIError(429, "x", "slow down")), false, true, false, 429},
		{"server error", NewAPIError(500, "x", "boom"), false, false, false, 500},
		{"missing key", fmt.Errorf("agent: %w", ErrMissingAPIKey), true, false, false, 0},
		{"timeout", NewTimeoutError("late"), false, false, true, 0},
		{"plain", errors.New("plain"), false, false, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsAuthError(tt.err); got != tt.auth {
				t.Errorf("IsAuthError = %v, want %v", got, tt.auth)
			}
			if got := IsRateLimitError(tt.err); got != tt.rateLimit {
				t.Errorf("IsRateLimitError = %v, want %v", got, tt.rateLimit)
			}
			if got := IsTimeoutError(tt.err); got != tt.timeout {
				t.Errorf("IsTimeoutError = %v, want %v", got, tt.timeout)
			}
			if got := GetHTTPStatus(tt.err); got != tt.status {
				t.Errorf("GetHTTPStatus = %d, want %d", got, tt.status)
			}
		})
	}
}

func TestGetEndpoint(t *testing.T) {
	if GetEndpoint(NewAPIError(500, "models", "x")) != "models" {
		t.Error("expected endpoint models")
	}
	if GetEndpoint(errors.New("x")) != "" {
		t.Error("expected empty endpoint")
	}
}

package util

import (
	"errors"
	"strings"
	"testing"
)

func TestConnectionError(t *testing.T) {
	err := NewConnectionError("https://eda.example.com", "status 502")

	msg := err.Error()
	if !strings.Contains(msg, "https://eda.example.com") {
		t.Errorf("Error message should contain endpoint: %s", msg)
	}
	if !strings.Contains(msg, "status 502") {
		t.Errorf("Error message should contain reason: %s", msg)
	}

	if !errors.Is(err, ErrConnectionFailed) {
		t.Errorf("ConnectionError should unwrap to ErrConnectionFailed")
	}
}

func TestValidationError(t *testing.T) {
	t.Run("single message", func(t *testing.T) {
		err := NewValidationError("TopoNode/leaf1", "version is required")
		msg := err.Error()
		if !strings.Contains(msg, "TopoNode/leaf1") {
			t.Errorf("Error message should contain resource: %s", msg)
		}
		if !strings.Contains(msg, "version is required") {
			t.Errorf("Error message should contain the message: %s", msg)
		}
		if !errors.Is(err, ErrValidationFailed) {
			t.Errorf("ValidationError should unwrap to ErrValidationFailed")
		}
	})

	t.Run("multiple messages", func(t *testing.T) {
		err := NewValidationError("init", "bad apiVersion", "missing namespace", "unknown field")
		msg := err.Error()
		for _, want := range []string{"bad apiVersion", "missing namespace", "unknown field"} {
			if !strings.Contains(msg, want) {
				t.Errorf("Error message missing %q: %s", want, msg)
			}
		}
	})
}

func TestTopologyFileError(t *testing.T) {
	err := NewTopologyFileError("/tmp/lab.json", "missing type field")
	msg := err.Error()
	if !strings.Contains(msg, "/tmp/lab.json") || !strings.Contains(msg, "missing type field") {
		t.Errorf("unexpected message: %s", msg)
	}
	if !errors.Is(err, ErrTopologyFile) {
		t.Errorf("TopologyFileError should unwrap to ErrTopologyFile")
	}
}

func TestSentinelErrors(t *testing.T) {
	sentinels := []error{
		ErrAlreadyExists,
		ErrNotFound,
		ErrConnectionFailed,
		ErrValidationFailed,
		ErrUnsupportedKind,
		ErrTopologyFile,
	}

	for i, err1 := range sentinels {
		for j, err2 := range sentinels {
			if i != j && errors.Is(err1, err2) {
				t.Errorf("Sentinel errors should be distinct: %v == %v", err1, err2)
			}
		}
	}
}

func TestErrorsIsWrapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
	}{
		{"ConnectionError", NewConnectionError("host", "reason"), ErrConnectionFailed},
		{"ValidationError", NewValidationError("res", "msg"), ErrValidationFailed},
		{"TopologyFileError", NewTopologyFileError("p", "d"), ErrTopologyFile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.sentinel) {
				t.Errorf("%s should wrap %v", tt.name, tt.sentinel)
			}
		})
	}
}

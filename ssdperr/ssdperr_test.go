package ssdperr

import (
	"errors"
	"strings"
	"testing"
)

func TestErrorUnwraps(t *testing.T) {
	cause := errors.New("boom")
	err := New(TransportSend, "transport.SendUnicast", cause)

	if !errors.Is(err, cause) {
		t.Fatal("Error should unwrap to its underlying cause")
	}
}

func TestIsMatchesKind(t *testing.T) {
	err := New(InvalidSearchTarget, "query.SearchType", nil)
	if !Is(err, InvalidSearchTarget) {
		t.Fatal("Is should match the constructed kind")
	}
	if Is(err, TransportSend) {
		t.Fatal("Is should not match an unrelated kind")
	}
}

func TestIsFalseForPlainError(t *testing.T) {
	if Is(errors.New("plain"), TransportSetup) {
		t.Fatal("Is should be false for a non-ssdperr error")
	}
}

func TestErrorMessageIncludesOpAndKind(t *testing.T) {
	err := New(TransportSetup, "transport.OpenMulticast", errors.New("bind failed"))
	msg := err.Error()
	if !strings.Contains(msg, "transport.OpenMulticast") || !strings.Contains(msg, "transport setup") || !strings.Contains(msg, "bind failed") {
		t.Fatalf("unexpected message: %q", msg)
	}
}

package keygen_test

import (
	"regexp"
	"strings"
	"testing"

	"winsbygroup.com/keyserver/internal/keygen"
)

func TestGenerate_Format(t *testing.T) {
	g := keygen.New("CLONE")

	pattern := regexp.MustCompile(`^CLONE-[A-Z0-9]{4}-[A-Z0-9]{4}-[A-Z0-9]{4}$`)

	for i := 0; i < 100; i++ {
		key, err := g.Generate()
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		if !pattern.MatchString(key) {
			t.Fatalf("key %q does not match expected format", key)
		}
	}
}

func TestGenerate_CustomPrefix(t *testing.T) {
	g := keygen.New("ACME")

	key, err := g.Generate()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !strings.HasPrefix(key, "ACME-") {
		t.Errorf("expected prefix ACME-, got %q", key)
	}
}

func TestNew_EmptyPrefixFallsBack(t *testing.T) {
	g := keygen.New("")
	if g.Prefix != keygen.DefaultPrefix {
		t.Errorf("expected default prefix %q, got %q", keygen.DefaultPrefix, g.Prefix)
	}
}

func TestGenerate_NoImmediateRepeats(t *testing.T) {
	g := keygen.New("CLONE")

	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		key, err := g.Generate()
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		if seen[key] {
			t.Fatalf("duplicate key %q after %d generations", key, i)
		}
		seen[key] = true
	}
}

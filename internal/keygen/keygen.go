// Package keygen produces license key strings from a cryptographically
// secure random source. Keys are human-shareable: a fixed prefix followed
// by three groups of four uppercase-alphanumeric characters.
package keygen

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

const (
	alphabet   = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	groupLen   = 4
	groupCount = 3
	separator  = "-"
)

// DefaultPrefix is used when no prefix is configured.
const DefaultPrefix = "CLONE"

type Generator struct {
	Prefix string
}

func New(prefix string) *Generator {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Generator{Prefix: prefix}
}

// Generate returns a fresh key, e.g. "CLONE-A1B2-C3D4-E5F6".
// Generation does not guarantee uniqueness; callers must handle the
// (negligible but possible) collision on insert.
func (g *Generator) Generate() (string, error) {
	parts := make([]string, 0, groupCount+1)
	parts = append(parts, g.Prefix)

	for i := 0; i < groupCount; i++ {
		group, err := randomGroup(groupLen)
		if err != nil {
			return "", fmt.Errorf("generate key group: %w", err)
		}
		parts = append(parts, group)
	}

	return strings.Join(parts, separator), nil
}

// randomGroup draws n characters from the key alphabet using crypto/rand.
// rand.Int is already unbiased over the 36-symbol alphabet.
func randomGroup(n int) (string, error) {
	limit := big.NewInt(int64(len(alphabet)))

	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		b[i] = alphabet[idx.Int64()]
	}
	return string(b), nil
}

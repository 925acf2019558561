// Package id generates prefixed resource identifiers.
package id

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Generate returns "{prefix}-{nanoid}", e.g. "thumb-V1StGXR8_Z5jdHi6B-myT".
// The NanoID part is 21 URL-safe characters, compact next to a UUID at
// comparable entropy. Generation fails only when the system randomness
// source does.
func Generate(prefix string) (string, error) {
	suffix, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate id: %w", err)
	}
	return prefix + "-" + suffix, nil
}

// MustGenerate is Generate for callers that treat entropy exhaustion as
// fatal.
func MustGenerate(prefix string) string {
	generated, err := Generate(prefix)
	if err != nil {
		panic(fmt.Sprintf("generate id: %v", err))
	}
	return generated
}

package errors

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxSeedLength bounds the seed path segment accepted by the mesh endpoint.
const MaxSeedLength = 128

// ValidateSeed validates a mesh seed taken from a URL path segment.
//
// Seeds are opaque strings, so the rules only reject input that cannot be
// echoed back safely:
//   - No empty seeds
//   - Valid UTF-8 only
//   - No control characters
//   - Maximum length of MaxSeedLength bytes
func ValidateSeed(seed string) error {
	if seed == "" {
		return New(ErrCodeInvalidSeed, "seed cannot be empty")
	}
	if len(seed) > MaxSeedLength {
		return New(ErrCodeInvalidSeed, "seed too long (max %d bytes)", MaxSeedLength)
	}
	if !utf8.ValidString(seed) {
		return New(ErrCodeInvalidSeed, "seed must be valid UTF-8")
	}
	for _, r := range seed {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidSeed, "seed contains invalid control characters")
		}
	}
	return nil
}

// ValidateAssetName validates a template asset filename for safety.
// It ensures the filename is a simple basename without path components.
func ValidateAssetName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidPath, "asset name cannot be empty")
	}

	// Must be a simple filename, not a path
	if strings.ContainsAny(name, "/\\") {
		return New(ErrCodeInvalidPath, "asset name cannot contain path separators")
	}
	if strings.Contains(name, "..") {
		return New(ErrCodeInvalidPath, "asset name cannot contain path traversal sequences (..)")
	}
	if strings.HasPrefix(name, ".") {
		return New(ErrCodeInvalidPath, "asset name cannot be a hidden file")
	}
	for _, r := range name {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "asset name contains invalid characters")
		}
	}
	return nil
}

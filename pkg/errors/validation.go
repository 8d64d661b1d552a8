package errors

import (
	"path/filepath"
	"strings"
	"unicode"
)

const maxPathLength = 500

// ValidatePath validates a file path supplied by a script for safety.
// Paths are always resolved below a configured root directory, so anything
// that could escape it is rejected.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No absolute paths (must be relative)
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "path must be relative (cannot start with /)")
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}

	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}

	return nil
}

// ResolvePath validates path and joins it onto root.
// An empty root resolves relative to the working directory.
func ResolvePath(root, path string) (string, error) {
	if err := ValidatePath(path); err != nil {
		return "", err
	}
	if root == "" {
		root = "."
	}
	return filepath.Join(root, filepath.FromSlash(path)), nil
}

// ValidateName validates a bare name (script, font) that must not contain
// any path separator.
func ValidateName(name string) error {
	if err := ValidatePath(name); err != nil {
		return err
	}
	if strings.Contains(name, "/") {
		return New(ErrCodeInvalidPath, "name cannot contain path separators")
	}
	if strings.HasPrefix(name, ".") {
		return New(ErrCodeInvalidPath, "name cannot be a hidden file")
	}
	return nil
}

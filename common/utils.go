package common

import "path/filepath"

// Coalesce returns the first non-zero value from the provided values, or the zero value if all are zero.
//
// Parameters:
//   - values: a variadic list of values to check for non-zero status
//
// Returns:
//   - T: the first non-zero value from the input, or the zero value if all are zero
func Coalesce[T comparable](values ...T) T {
	var zero T
	for _, v := range values {
		if v != zero {
			return v
		}
	}
	return zero
}

// NameFromPath returns the final element of path, used as a human-readable label for
// resources loaded from disk. Returns an empty string for paths with no file name.
//
// Parameters:
//   - path: the filesystem path to derive a name from
//
// Returns:
//   - string: the file name portion of the path, or "" if there is none
func NameFromPath(path string) string {
	if path == "" {
		return ""
	}
	name := filepath.Base(path)
	if name == "." || name == string(filepath.Separator) {
		return ""
	}
	return name
}

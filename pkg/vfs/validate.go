package vfs

import (
	"strings"

	vfserrors "github.com/marmos91/filebank/pkg/vfs/errors"
)

// reservedChars may not appear anywhere in a path or item name.
const reservedChars = `<>:"|?*\`

// ValidatePath reports whether p is an acceptable slash-delimited path.
//
// It rejects empty strings, NUL and other control characters, the reserved
// characters < > : " | ? * and backslashes, and "." or ".." segments.
// Empty segments (duplicate or trailing slashes) are tolerated and dropped
// by ParsePath.
func ValidatePath(p string) bool {
	if p == "" {
		return false
	}
	if hasForbiddenRune(p) {
		return false
	}
	for _, seg := range strings.Split(p, "/") {
		if seg == "." || seg == ".." {
			return false
		}
	}
	return true
}

// ValidateName checks a single item name (a path segment).
func ValidateName(name string) error {
	switch {
	case name == "":
		return vfserrors.NewInvalidInputError("Name is required.",
			vfserrors.FieldError{Field: "/name", Message: "must not be empty"})
	case name == "." || name == "..":
		return vfserrors.NewInvalidInputError("Name not valid.",
			vfserrors.FieldError{Field: "/name", Message: "must not be a relative path segment"})
	case strings.Contains(name, "/") || hasForbiddenRune(name):
		return vfserrors.NewInvalidInputError("Name not valid.",
			vfserrors.FieldError{Field: "/name", Message: "contains a reserved character"})
	}
	return nil
}

func hasForbiddenRune(s string) bool {
	for _, r := range s {
		if r < 0x20 || r == 0x7f || strings.ContainsRune(reservedChars, r) {
			return true
		}
	}
	return false
}

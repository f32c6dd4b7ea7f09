package errors

import (
	"strings"
	"unicode"
)

// maxPackageNameLen bounds TeX package names accepted on the command line.
const maxPackageNameLen = 64

// ValidatePackageName validates a TeX extension package name.
// MathJax package names are short identifiers such as "ams" or "boldsymbol";
// anything containing whitespace, control characters or path separators is
// rejected before it reaches the renderer's loader.
func ValidatePackageName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidOption, "package name cannot be empty")
	}

	if len(name) > maxPackageNameLen {
		return New(ErrCodeInvalidOption, "package name too long (max %d characters)", maxPackageNameLen)
	}

	for _, r := range name {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidOption, "package name %q contains invalid characters", name)
		}
	}

	for _, pattern := range []string{"..", "/", "\\"} {
		if strings.Contains(name, pattern) {
			return New(ErrCodeInvalidOption, "package name contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// ValidateScale checks that a presentation scale factor is usable.
func ValidateScale(scale float64) error {
	if scale <= 0 {
		return New(ErrCodeInvalidOption, "scale must be positive, got %g", scale)
	}
	return nil
}

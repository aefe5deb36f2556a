package dwarftree

import (
	"strings"

	"github.com/ianlancetaylor/demangle"
)

// Demangle returns the readable form of a Rust or Itanium C++ mangled name.
// Rust is tried first, then C++ with and without an extra leading
// underscore. Names that are not mangled come back unchanged.
func Demangle(name string) string {
	if isRustSymbol(name) {
		if out, err := demangle.ToString(name); err == nil {
			return out
		}
	}

	if out, err := demangle.ToString(name, demangle.NoRust); err == nil {
		return out
	}

	// Mach-O style symbols carry one more underscore.
	if strings.HasPrefix(name, "__Z") {
		if out, err := demangle.ToString(name[1:], demangle.NoRust); err == nil {
			return out
		}
	}

	return name
}

// isRustSymbol reports whether name uses the v0 scheme or the legacy scheme
// with its trailing 17h<hash>E path segment.
func isRustSymbol(name string) bool {
	if strings.HasPrefix(name, "_R") {
		return true
	}
	if !strings.HasPrefix(name, "_ZN") || !strings.HasSuffix(name, "E") {
		return false
	}
	i := strings.LastIndex(name, "17h")
	return i > 0 && len(name)-i == len("17h")+16+1
}

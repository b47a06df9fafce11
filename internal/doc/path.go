package doc

import (
	"fmt"
	"strings"
)

const (
	MaxPathLength = 512

	pathPunctuation = "/'()-._~!$&*+,:=@%"
)

// ValidatePath checks a hierarchical document path such as
// /todo/1606164670376000-1234567/text.txt.
func ValidatePath(path string) error {
	switch {
	case path == "":
		return fmt.Errorf("%w: empty", ErrInvalidPath)
	case len(path) > MaxPathLength:
		return fmt.Errorf("%w: longer than %d bytes", ErrInvalidPath, MaxPathLength)
	case !strings.HasPrefix(path, "/"):
		return fmt.Errorf("%w: %q must start with /", ErrInvalidPath, path)
	case strings.HasPrefix(path, "/@"):
		return fmt.Errorf("%w: %q must not start with /@", ErrInvalidPath, path)
	case strings.HasSuffix(path, "/"):
		return fmt.Errorf("%w: %q must not end with /", ErrInvalidPath, path)
	case strings.Contains(path, "//"):
		return fmt.Errorf("%w: %q contains an empty segment", ErrInvalidPath, path)
	}
	for _, c := range path {
		if !isPathChar(c) {
			return fmt.Errorf("%w: %q contains %q", ErrInvalidPath, path, c)
		}
	}
	return nil
}

func isPathChar(c rune) bool {
	return isAlnum(c) || strings.ContainsRune(pathPunctuation, c)
}

func isAlnum(c rune) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func isLowerAlnum(c rune) bool {
	return (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9')
}

// ValidateWorkspace checks a workspace address of the form +name.suffix.
func ValidateWorkspace(ws string) error {
	rest, ok := strings.CutPrefix(ws, "+")
	if !ok {
		return fmt.Errorf("%w: %q must start with +", ErrInvalidWorkspace, ws)
	}
	name, suffix, ok := strings.Cut(rest, ".")
	if !ok {
		return fmt.Errorf("%w: %q has no suffix", ErrInvalidWorkspace, ws)
	}
	if len(name) < 1 || len(name) > 15 || name[0] < 'a' || name[0] > 'z' {
		return fmt.Errorf("%w: name %q must be 1-15 characters starting with a letter", ErrInvalidWorkspace, name)
	}
	if len(suffix) < 1 || len(suffix) > 53 {
		return fmt.Errorf("%w: suffix %q must be 1-53 characters", ErrInvalidWorkspace, suffix)
	}
	for _, c := range name + suffix {
		if !isLowerAlnum(c) {
			return fmt.Errorf("%w: %q contains %q", ErrInvalidWorkspace, ws, c)
		}
	}
	return nil
}

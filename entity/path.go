package entity

import "strings"

// RootPath is the path of the root group.
const RootPath = "/"

// BuildPath joins a parent path and a child name.
func BuildPath(parent, name string) string {
	if parent == RootPath || parent == "" {
		return RootPath + name
	}
	return parent + "/" + name
}

// NameFromPath returns the last segment of path. The root path is its own
// name.
func NameFromPath(path string) string {
	if path == RootPath {
		return RootPath
	}
	trimmed := strings.TrimSuffix(path, "/")
	if i := strings.LastIndex(trimmed, "/"); i >= 0 {
		return trimmed[i+1:]
	}
	return trimmed
}

// ParentPath returns the path of the parent group, or "" for the root.
func ParentPath(path string) string {
	if path == RootPath || path == "" {
		return ""
	}
	trimmed := strings.TrimSuffix(path, "/")
	i := strings.LastIndex(trimmed, "/")
	if i <= 0 {
		return RootPath
	}
	return trimmed[:i]
}

// ValidatePath checks that path is absolute and has no empty segment.
func ValidatePath(path string) error {
	if !strings.HasPrefix(path, RootPath) {
		return ErrInvalidPath
	}
	if path == RootPath {
		return nil
	}
	for _, seg := range strings.Split(path[1:], "/") {
		if seg == "" {
			return ErrInvalidPath
		}
	}
	return nil
}

// IsChildPath reports whether child sits directly below parent.
func IsChildPath(parent, child string) bool {
	return child != parent && ParentPath(child) == parent
}

package ingest

import (
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/permit-readiness/constants"
)

// AllowedExt checks if a file extension is one the service accepts.
func AllowedExt(ext string) bool {
	return constants.IsAllowedExt(ext)
}

// IsHidden checks if a file or directory is hidden (starts with '.').
func IsHidden(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".") && base != "." && base != ".."
}

// itemFromPath returns the checklist item id for a file under root: the
// first path segment below root. Files directly in root have no item.
func itemFromPath(root, path string) (string, bool) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return "", false
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) < 2 || parts[0] == ".." || parts[0] == "" {
		return "", false
	}
	return parts[0], true
}

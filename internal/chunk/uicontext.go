package chunk

import (
	"path"
	"strings"
)

var uiSegments = []string{"pages", "views", "screens", "components", "ui"}

// UIContext derives the optional UI-context tag for a chunk from its file's
// path, per spec §4.3: the nearest matching path segment, or the file
// extension when it's tsx/jsx. Empty string means no UI context.
func UIContext(filePath string) string {
	ext := strings.ToLower(path.Ext(filePath))
	segments := strings.Split(path.ToSlash(filePath), "/")

	// "Nearest" means closest to the file, so walk from the end.
	for i := len(segments) - 1; i >= 0; i-- {
		seg := strings.ToLower(segments[i])
		for _, candidate := range uiSegments {
			if seg == candidate {
				return candidate
			}
		}
	}

	if ext == ".tsx" || ext == ".jsx" {
		return strings.TrimPrefix(ext, ".")
	}

	return ""
}

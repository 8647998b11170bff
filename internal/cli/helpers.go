package cli

import "github.com/outpost-dev/rlm/internal/chunk"

// kindOrEmpty converts a --kind flag value to chunk.Kind, leaving it empty
// (meaning "any kind") when the flag was not set.
func kindOrEmpty(s string) chunk.Kind {
	return chunk.Kind(s)
}

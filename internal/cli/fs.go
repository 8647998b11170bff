package cli

import "github.com/spf13/afero"

// defaultFs is the filesystem every command opens its broker against. A real
// OS filesystem, never an in-memory one: the Chunk Store talks to SQLite
// directly and the Surgical Editor takes real file-level locks.
func defaultFs() afero.Fs {
	return afero.NewOsFs()
}

package types

import "io"

// Handle is a user-facing view over a cached file: a cursor, a mode, and
// byte-oriented I/O. Closing the handle writes dirty data back to disk and
// updates the entry's access statistics.
type Handle interface {
	io.Reader
	io.Writer
	io.Seeker
	io.Closer

	// Tell reports the current cursor position.
	Tell() int64

	// Flush writes the cached buffer to its backing path.
	Flush() error
}

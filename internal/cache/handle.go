package cache

import (
	"io"
	"time"

	"go.uber.org/zap"

	cerrors "github.com/contentcache/contentcache/pkg/errors"
	"github.com/contentcache/contentcache/pkg/types"
)

// File is a handle over a cached entry: a mode, a cursor, and a dirty flag.
// All I/O goes against the entry's in-memory buffer; dirty data reaches
// disk on Flush, Close, or eviction.
//
// A File must not be shared across goroutines, and the same path must not
// be open for writing from two goroutines at once. Handles over distinct
// paths may be used concurrently only while no write is growing a buffer:
// a growing write takes the engine lock and may evict, and write back,
// another path's entry while that path's handle is still using it.
type File struct {
	cache  *Cache
	entry  *entry
	mode   fileMode
	pos    int64
	dirty  bool
	closed bool
}

var (
	_ io.ReadWriteSeeker = (*File)(nil)
	_ io.Closer          = (*File)(nil)
	_ types.Handle       = (*File)(nil)
)

func newFile(c *Cache, e *entry, m fileMode) *File {
	return &File{cache: c, entry: e, mode: m}
}

// Path returns the backing file path.
func (f *File) Path() string {
	return f.entry.meta.Path
}

// Read copies bytes from the cursor onward. It returns io.EOF at the end
// of the buffer and a NotReadable error when the mode grants no read.
func (f *File) Read(p []byte) (int, error) {
	if f.closed {
		return 0, cerrors.HandleClosed(f.entry.meta.Path, "read")
	}
	if !f.mode.canRead() {
		return 0, cerrors.NotReadable(f.entry.meta.Path)
	}
	if f.pos >= int64(len(f.entry.data)) {
		return 0, io.EOF
	}

	n := copy(p, f.entry.data[f.pos:])
	f.pos += int64(n)
	return n, nil
}

// Write copies bytes at the cursor, growing the buffer through the engine
// when writing past the end. Append mode snaps the cursor to the end
// before every write.
func (f *File) Write(p []byte) (int, error) {
	if f.closed {
		return 0, cerrors.HandleClosed(f.entry.meta.Path, "write")
	}
	if !f.mode.canWrite() {
		return 0, cerrors.NotWritable(f.entry.meta.Path)
	}

	if f.mode.append {
		f.pos = int64(len(f.entry.data))
	}

	end := f.pos + int64(len(p))
	if end > int64(len(f.entry.data)) {
		f.cache.grow(f.entry, end)
	}

	copy(f.entry.data[f.pos:], p)
	f.pos = end
	f.dirty = true
	f.entry.dirty = true
	return len(p), nil
}

// Seek moves the cursor. Positions outside [0, len(buffer)] are an
// InvalidSeek error; there is no sparse extension via seek.
func (f *File) Seek(offset int64, whence int) (int64, error) {
	if f.closed {
		return 0, cerrors.HandleClosed(f.entry.meta.Path, "seek")
	}

	var pos int64
	switch whence {
	case io.SeekStart:
		pos = offset
	case io.SeekCurrent:
		pos = f.pos + offset
	case io.SeekEnd:
		pos = int64(len(f.entry.data)) + offset
	default:
		return 0, cerrors.InvalidSeek(f.entry.meta.Path, offset)
	}

	if pos < 0 || pos > int64(len(f.entry.data)) {
		return 0, cerrors.InvalidSeek(f.entry.meta.Path, pos)
	}

	f.pos = pos
	return pos, nil
}

// Tell reports the cursor position.
func (f *File) Tell() int64 {
	return f.pos
}

// Flush writes the buffer to the backing path and clears the dirty flag.
// Clean handles are a no-op.
func (f *File) Flush() error {
	if f.closed {
		return cerrors.HandleClosed(f.entry.meta.Path, "flush")
	}
	if !f.dirty {
		return nil
	}

	if err := f.cache.writeFile(f.entry); err != nil {
		return err
	}

	f.cache.mu.Lock()
	f.cache.diskWrites++
	f.cache.metrics.RecordDiskWrite(f.entry.memoryUsage())
	f.cache.mu.Unlock()

	f.dirty = false
	f.entry.dirty = false
	return nil
}

// Close flushes dirty data (failures are logged, not returned, since the
// handle is gone either way), then ticks the entry's access stats and
// rescores it. Closing twice is an error.
func (f *File) Close() error {
	if f.closed {
		return cerrors.HandleClosed(f.entry.meta.Path, "close")
	}

	if f.dirty {
		if err := f.cache.writeFile(f.entry); err != nil {
			f.cache.logger.Error("write-back on close failed",
				zap.String("path", f.entry.meta.Path), zap.Error(err))
		} else {
			f.cache.mu.Lock()
			f.cache.diskWrites++
			f.cache.metrics.RecordDiskWrite(f.entry.memoryUsage())
			f.cache.mu.Unlock()
			f.dirty = false
			f.entry.dirty = false
		}
	}
	f.closed = true

	f.cache.closeEntry(f.entry)
	return nil
}

// ModTime returns the backing file's recorded modification time.
func (f *File) ModTime() time.Time {
	return f.entry.meta.LastModified
}

// Package arena implements the file-backed, memory-mapped byte arena that
// backs the term dictionary (internal/dict). The arena grows by whole pages
// and transparently remaps when it overflows; callers hold byte offsets, not
// pointers, so a remap never invalidates previously handed-out references.
package arena

import (
	"fmt"
	"math"
	"os"

	"github.com/edsrzf/mmap-go"
)

// PageSize is the fixed page granularity the arena grows and maps by.
const PageSize = 4096

// InitialPages is the number of pages a freshly opened arena is truncated to.
const InitialPages = 32

// phi is the growth factor applied to the page count on overflow.
const phi = 1.618033988749895

// BackingStoreError wraps a failure in the underlying file or mapping
// operations. It is always fatal.
type BackingStoreError struct {
	Op  string
	Err error
}

func (e *BackingStoreError) Error() string {
	return fmt.Sprintf("arena: %s: %v", e.Op, e.Err)
}

func (e *BackingStoreError) Unwrap() error { return e.Err }

// Arena is a contiguous, growable, memory-mapped byte region backed by a
// file. It is not safe for concurrent use; the host driver accesses it from
// a single goroutine, matching the single-threaded cooperative model of the
// rest of the reasoner core.
type Arena struct {
	file  *os.File
	owned bool // true if the file is an anonymous temp file we must remove
	data  mmap.MMap
	pages int64
	// cursor is the next free byte offset within data.
	cursor int64
}

// New opens (or creates) the arena backing file at path and memory-maps it
// read/write. If path is empty, an anonymous temporary file is used and
// removed when the arena is closed.
func New(path string, initialPages int) (*Arena, error) {
	if initialPages <= 0 {
		initialPages = InitialPages
	}

	var f *os.File
	var err error
	owned := false
	if path == "" {
		f, err = os.CreateTemp("", "grdfs-dict-*.arena")
		owned = true
	} else {
		f, err = os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	}
	if err != nil {
		return nil, &BackingStoreError{Op: "open", Err: err}
	}

	size := int64(initialPages) * PageSize
	if err := f.Truncate(size); err != nil {
		f.Close()
		return nil, &BackingStoreError{Op: "truncate", Err: err}
	}

	data, err := mmap.MapRegion(f, int(size), mmap.RDWR, 0, 0)
	if err != nil {
		f.Close()
		return nil, &BackingStoreError{Op: "mmap", Err: err}
	}

	return &Arena{
		file:  f,
		owned: owned,
		data:  data,
		pages: int64(initialPages),
		cursor: 0,
	}, nil
}

// Close unmaps and closes the backing file, removing it if it was anonymous.
func (a *Arena) Close() error {
	if err := a.data.Unmap(); err != nil {
		return &BackingStoreError{Op: "unmap", Err: err}
	}
	name := a.file.Name()
	if err := a.file.Close(); err != nil {
		return &BackingStoreError{Op: "close", Err: err}
	}
	if a.owned {
		_ = os.Remove(name)
	}
	return nil
}

// Size returns the number of bytes currently mapped.
func (a *Arena) Size() int64 { return a.pages * PageSize }

// Cursor returns the current write offset (next free byte).
func (a *Arena) Cursor() int64 { return a.cursor }

// AllocAligned reserves size bytes starting at the current cursor and
// advances the cursor past them, growing the arena first if necessary. If
// noPageCross is set and the allocation would straddle a page boundary, the
// cursor is advanced to the start of the next page first.
func (a *Arena) AllocAligned(size int, noPageCross bool) (int64, error) {
	if noPageCross {
		pageStart := a.cursor / PageSize * PageSize
		pageEnd := pageStart + PageSize
		if a.cursor+int64(size) > pageEnd {
			a.cursor = pageEnd
		}
	}

	for a.cursor+int64(size) > a.Size() {
		if err := a.Grow(); err != nil {
			return 0, err
		}
	}

	off := a.cursor
	a.cursor += int64(size)
	return off, nil
}

// Grow unmaps the arena, truncates the backing file to floor(phi*pages)
// pages, and remaps it. The write cursor is preserved verbatim since remap
// keeps the same logical offsets; only the underlying mapping's base address
// may change.
func (a *Arena) Grow() error {
	newPages := int64(math.Floor(phi * float64(a.pages)))
	if newPages <= a.pages {
		newPages = a.pages + 1
	}
	newSize := newPages * PageSize

	if err := a.data.Unmap(); err != nil {
		return &BackingStoreError{Op: "unmap-for-grow", Err: err}
	}
	if err := a.file.Truncate(newSize); err != nil {
		return &BackingStoreError{Op: "truncate-for-grow", Err: err}
	}
	data, err := mmap.MapRegion(a.file, int(newSize), mmap.RDWR, 0, 0)
	if err != nil {
		return &BackingStoreError{Op: "remap", Err: err}
	}

	a.data = data
	a.pages = newPages
	return nil
}

// Bytes returns the full mapped region. Callers use slicing on top of this
// to read or write fixed-width fields at a given offset; the arena itself
// stays agnostic of record layout, matching the "caller responsible for
// layout" contract.
func (a *Arena) Bytes() []byte { return a.data }

// WriteAt copies value into the arena starting at offset. It is the
// caller's responsibility that [offset, offset+len(value)) lies within
// Size().
func (a *Arena) WriteAt(offset int64, value []byte) {
	copy(a.data[offset:], value)
}

// ReadAt returns a slice view of n bytes starting at offset. The slice
// aliases the arena's backing mapping and is only valid until the next Grow.
func (a *Arena) ReadAt(offset int64, n int) []byte {
	return a.data[offset : offset+int64(n)]
}

package fat16ro

import (
	"fmt"

	bitmap "github.com/boljen/go-bitmap"
	fatErrors "github.com/dargueta/fat16ro/errors"
	"github.com/noxer/bytewriter"
)

// Whence values for File.Seek, mirroring spec.md §6's SET/CUR/END constants
// rather than reusing io.Seeker's (this driver predates that convention and
// keeps its own names to match the programmatic API the spec describes).
const (
	SeekSet = 0
	SeekCur = 1
	SeekEnd = 2
)

// File is a stateful read cursor over one root directory entry's cluster
// chain. It borrows its Volume; closing the Volume while a File is open is
// refused, per spec.md §5.
type File struct {
	vol          *Volume
	entry        DirEntry
	offset       uint64
	startCluster uint32
	size         uint32
	closed       bool
}

// OpenFile looks up name in the volume's root directory and returns a
// handle positioned at offset 0. It fails with ErrIsDirectory if the entry
// has the directory attribute, and ErrNotFound if no such entry exists.
func OpenFile(vol *Volume, name string) (*File, error) {
	entry, err := vol.Lookup(name)
	if err != nil {
		return nil, err
	}
	if entry.IsDirectory() {
		return nil, fatErrors.ErrIsDirectory.WithMessage(name)
	}

	vol.openHandles++
	return &File{
		vol:          vol,
		entry:        entry,
		startCluster: entry.FirstCluster,
		size:         entry.FileSize,
	}, nil
}

// Close releases the handle. Subsequent Seek/Read calls fail with
// ErrInvalidArgument.
func (f *File) Close() error {
	if f.closed {
		return fatErrors.ErrInvalidArgument.WithMessage("file already closed")
	}
	f.closed = true
	f.vol.openHandles--
	return nil
}

// Size returns the file's declared size in bytes.
func (f *File) Size() uint32 { return f.size }

// Offset returns the current cursor position.
func (f *File) Offset() uint64 { return f.offset }

// Seek repositions the cursor per spec.md §4.6. It never touches disk.
func (f *File) Seek(offset int64, whence int) (int64, error) {
	if f.closed {
		return -1, fatErrors.ErrInvalidArgument.WithMessage("file already closed")
	}

	var newPos int64
	switch whence {
	case SeekSet:
		newPos = offset
	case SeekCur:
		newPos = int64(f.offset) + offset
	case SeekEnd:
		if offset > 0 {
			return -1, fatErrors.ErrOutOfRange.WithMessage("END offset must not be positive")
		}
		newPos = int64(f.size) + offset
	default:
		return -1, fatErrors.ErrInvalidArgument.WithMessage(fmt.Sprintf("unknown whence %d", whence))
	}

	if newPos < 0 || newPos > int64(f.size) {
		return -1, fatErrors.ErrOutOfRange.WithMessage(
			fmt.Sprintf("position %d outside [0, %d]", newPos, f.size),
		)
	}

	f.offset = uint64(newPos)
	return newPos, nil
}

// Read copies up to size*nmemb bytes starting at the current cursor into
// out, advancing the cursor by the number of bytes actually copied, and
// returns the number of whole records of width size delivered — the
// central algorithm of spec.md §4.7.
func (f *File) Read(out []byte, size, nmemb uint32) (uint32, error) {
	if f.closed {
		return 0, fatErrors.ErrInvalidArgument.WithMessage("file already closed")
	}
	if size == 0 || nmemb == 0 {
		return 0, nil
	}

	wanted := uint64(size) * uint64(nmemb)
	remainingInFile := uint64(f.size) - f.offset
	remaining := wanted
	if remainingInFile < remaining {
		remaining = remainingInFile
	}
	if remaining == 0 {
		return 0, nil
	}
	if uint64(len(out)) < remaining {
		return 0, fatErrors.ErrInvalidArgument.WithMessage("output buffer smaller than requested read")
	}

	vbr := f.vol.vbr
	bps := uint64(vbr.BytesPerSector)
	spc := uint64(vbr.SectorsPerCluster)
	cbytes := bps * spc

	clusterSteps := f.offset / cbytes
	withinClusterBytes := f.offset % cbytes
	sectorInCluster := uint32(withinClusterBytes / bps)
	byteInSector := uint32(withinClusterBytes % bps)

	currentCluster := f.startCluster
	visited := bitmap.NewSlice(len(f.vol.fat))
	for i := uint64(0); i < clusterSteps; i++ {
		if visited.Get(int(currentCluster)) {
			return 0, fatErrors.ErrCorruptChain.WithMessage("cluster chain cycles before reaching the requested offset")
		}
		visited.Set(int(currentCluster), true)

		nextCluster, ok := next(f.vol.fat, currentCluster)
		if !ok {
			return 0, fatErrors.ErrCorruptChain.WithMessage("cluster chain ended before reaching the requested offset")
		}
		currentCluster = nextCluster
	}

	writer := bytewriter.New(out)
	var bytesRead uint64
	scratch := make([]byte, bps)

	for remaining > 0 {
		sector := f.vol.ClusterToSector(currentCluster) + sectorInCluster
		if err := f.vol.dev.Read(sector, 1, scratch); err != nil {
			return uint32(bytesRead / uint64(size)), fatErrors.ErrIoRange.Wrap(err)
		}

		chunk := bps - uint64(byteInSector)
		if chunk > remaining {
			chunk = remaining
		}

		if _, err := writer.Write(scratch[byteInSector : uint64(byteInSector)+chunk]); err != nil {
			return uint32(bytesRead / uint64(size)), fatErrors.ErrIoRange.Wrap(err)
		}

		f.offset += chunk
		remaining -= chunk
		bytesRead += chunk
		byteInSector = 0

		if remaining == 0 {
			break
		}

		// Reaching here means chunk filled the rest of the sector exactly
		// (otherwise remaining would already be 0), so the sector is
		// fully consumed and the cursor advances to the next one.
		sectorInCluster++
		if uint64(sectorInCluster) >= spc {
			sectorInCluster = 0

			if visited.Get(int(currentCluster)) {
				return uint32(bytesRead / uint64(size)), fatErrors.ErrCorruptChain.WithMessage("cluster chain cycles mid-read")
			}
			visited.Set(int(currentCluster), true)

			nextCluster, ok := next(f.vol.fat, currentCluster)
			if !ok {
				return uint32(bytesRead / uint64(size)), fatErrors.ErrCorruptChain.WithMessage("cluster chain ended before file size was satisfied")
			}
			currentCluster = nextCluster
		}
	}

	return uint32(bytesRead / uint64(size)), nil
}

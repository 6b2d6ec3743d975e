// Package blockdevice implements the raw block device abstraction: a stream
// that yields fixed-size 512-byte sectors by index. It has no knowledge of
// FAT16 or any other on-disk layout.
package blockdevice

import (
	"errors"
	"fmt"
	"io"
	"os"

	fatErrors "github.com/dargueta/fat16ro/errors"
)

// SectorSize is the fixed size of a sector, in bytes. FAT16 volumes of the
// kind this driver reads are always built on 512-byte sectors.
const SectorSize = 512

// Device is a positioned, sector-granular read interface over a disk image
// stream. It owns the underlying stream exclusively; no other component
// reaches into it directly.
//
// A Device is not safe for concurrent use from multiple goroutines: each
// Read performs a seek followed by a read against the same underlying
// stream cursor, and the two must not interleave with another goroutine's
// call. Callers who want concurrent readers should open independent Devices
// over the same image.
type Device struct {
	stream io.ReadSeeker
	closer io.Closer
}

// Open opens the disk image at path for reading. It fails with
// fatErrors.ErrNotFound if the image does not exist.
func Open(path string) (*Device, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fatErrors.ErrNotFound.WithMessage(path)
		}
		return nil, fatErrors.ErrIoRange.Wrap(err)
	}
	return &Device{stream: f, closer: f}, nil
}

// OpenStream wraps an already-open stream (for example, an in-memory image
// built with bytesextra.NewReadWriteSeeker for tests) as a Device. If stream
// also implements io.Closer, Close calls it; otherwise Close is a no-op.
func OpenStream(stream io.ReadSeeker) *Device {
	d := &Device{stream: stream}
	if closer, ok := stream.(io.Closer); ok {
		d.closer = closer
	}
	return d
}

// Close releases the underlying stream, if it is closable.
func (d *Device) Close() error {
	if d.closer == nil {
		return nil
	}
	return d.closer.Close()
}

// Read fills out with n sectors of data starting at sector index
// firstSector. out must be exactly n*SectorSize bytes long.
//
// Read fails with fatErrors.ErrInvalidArgument if out is nil/empty or the
// wrong length, and with fatErrors.ErrIoRange if fewer than n sectors could
// be read. In the latter case the contents of out are undefined.
func (d *Device) Read(firstSector uint32, n uint32, out []byte) error {
	if len(out) == 0 {
		return fatErrors.ErrInvalidArgument.WithMessage("output buffer must not be empty")
	}
	wantLen := int(n) * SectorSize
	if len(out) != wantLen {
		return fatErrors.ErrInvalidArgument.WithMessage(
			fmt.Sprintf("output buffer is %d bytes, want %d for %d sectors", len(out), wantLen, n),
		)
	}

	offset := int64(firstSector) * SectorSize
	if _, err := d.stream.Seek(offset, io.SeekStart); err != nil {
		return fatErrors.ErrIoRange.Wrap(err)
	}

	read, err := io.ReadFull(d.stream, out)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return fatErrors.ErrIoRange.Wrap(err)
	}
	if read < wantLen {
		return fatErrors.ErrIoRange.WithMessage(
			fmt.Sprintf("wanted %d sectors from sector %d, got %d bytes", n, firstSector, read),
		)
	}
	return nil
}

// ReadSectors is a convenience wrapper around Read that allocates and returns
// the output buffer.
func (d *Device) ReadSectors(firstSector uint32, n uint32) ([]byte, error) {
	buf := make([]byte, int(n)*SectorSize)
	if err := d.Read(firstSector, n, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// Package fat16ro implements a read-only FAT16 volume driver: parsing the
// volume boot record, walking the file allocation table, enumerating the
// root directory, and reading file contents through cluster chains. It does
// not write, format, or repair volumes.
package fat16ro

import (
	"strings"

	"github.com/dargueta/fat16ro/blockdevice"
)

const blockSectorSize = blockdevice.SectorSize

// trimPadded strips trailing spaces and NUL bytes from a fixed-width,
// space- or NUL-padded on-disk text field (OEM name, volume label).
func trimPadded(b []byte) string {
	return strings.TrimRight(string(b), " \x00")
}

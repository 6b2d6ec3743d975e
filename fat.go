package fat16ro

import (
	"encoding/binary"
	"fmt"

	"github.com/dargueta/fat16ro/blockdevice"
	fatErrors "github.com/dargueta/fat16ro/errors"
	"github.com/hashicorp/go-multierror"
)

const (
	eocThreshold  = 0xFFF8
	badCluster    = 0xFFF7
	freeCluster   = 0x0000
	firstDataClus = 2
)

// loadFAT reads every FAT copy starting at reservedSectors sectors past
// volumeStart, cross-checks them for byte-equality per spec.md §4.3, and
// returns copy 0 reinterpreted as a little-endian u16 table. Only copy 0 is
// kept after validation; the rest are discarded once compared.
func loadFAT(dev *blockdevice.Device, vbr *VBR, volumeStart uint32) ([]uint16, uint16, error) {
	fatStart := volumeStart + uint32(vbr.ReservedSectors)

	copy0, err := dev.ReadSectors(fatStart, uint32(vbr.SectorsPerFat))
	if err != nil {
		return nil, 0, fatErrors.ErrIoRange.Wrap(err)
	}

	var mismatches *multierror.Error
	for i := uint8(1); i < vbr.Fats; i++ {
		offset := fatStart + uint32(i)*uint32(vbr.SectorsPerFat)
		copyN, err := dev.ReadSectors(offset, uint32(vbr.SectorsPerFat))
		if err != nil {
			return nil, 0, fatErrors.ErrIoRange.Wrap(err)
		}
		if !bytesEqual(copy0, copyN) {
			mismatches = multierror.Append(mismatches, fmt.Errorf("FAT copy %d differs from copy 0", i))
		}
	}
	if mismatches.ErrorOrNil() != nil {
		return nil, 0, fatErrors.ErrCorruptFat.WithMessage(mismatches.Error())
	}

	entryCount := len(copy0) / 2
	table := make([]uint16, entryCount)
	for i := 0; i < entryCount; i++ {
		table[i] = binary.LittleEndian.Uint16(copy0[i*2 : i*2+2])
	}

	if len(table) < 2 {
		return nil, 0, fatErrors.ErrCorruptFat.WithMessage("FAT is too small to hold an EOC marker at index 1")
	}

	eocMarker := table[1]
	if eocMarker < eocThreshold {
		return nil, 0, fatErrors.ErrCorruptFat.WithMessage(
			fmt.Sprintf("FAT[1] = 0x%04X, want >= 0x%04X", eocMarker, eocThreshold),
		)
	}

	return table, eocMarker, nil
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// next returns the cluster that follows c in the chain. ok is false when c
// is a reserved, free, bad, or end-of-chain value rather than a pointer to
// another cluster — callers distinguish "no next cluster" (EOC, expected at
// the tail) from a corrupt reference by checking c's value themselves.
func next(fat []uint16, c uint32) (uint32, bool) {
	if c < firstDataClus || int(c) >= len(fat) {
		return 0, false
	}
	v := fat[c]
	if v == freeCluster || v == badCluster || v >= eocThreshold {
		return 0, false
	}
	return uint32(v), true
}

func isEndOfChain(v uint16) bool {
	return v >= eocThreshold
}

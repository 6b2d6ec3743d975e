package fat16ro

import (
	"bytes"
	"encoding/binary"
	"fmt"

	fatErrors "github.com/dargueta/fat16ro/errors"
	"github.com/hashicorp/go-multierror"
)

const (
	expectedSignature  = 0x29
	expectedEndMarker  = 0xAA55
	dirEntrySize       = 32
	minSmallSectorsFat = 65536
)

// rawVBR is the on-disk layout of sector 0, decoded tightly in field order
// per spec.md §6. Field widths match the table exactly; there is no implicit
// padding because binary.Read walks the struct field by field rather than
// relying on Go's memory layout.
type rawVBR struct {
	JumpInstructions [3]byte
	OEMName          [8]byte

	BytesPerSector    uint16
	SectorsPerCluster uint8
	ReservedSectors   uint16
	Fats              uint8
	RootEntries       uint16
	SmallSectors      uint16
	MediaType         uint8
	SectorsPerFat     uint16
	SectorsPerTrack   uint16
	Heads             uint16
	HiddenSectors     uint32
	LargeSectors      uint32

	DriveNumber  uint8
	Reserved1    uint8
	Signature    uint8
	SerialNumber uint32

	VolumeLabel [11]byte
	SystemType  [8]byte

	BootCode [448]byte

	EndMarker uint16
}

// VBR is the parsed and validated Volume Boot Record: the fixed geometry of
// a FAT16 volume. All fields are immutable once returned from ParseVBR.
type VBR struct {
	BytesPerSector    uint16
	SectorsPerCluster uint8
	ReservedSectors   uint16
	Fats              uint8
	RootEntries       uint16
	SectorsPerFat     uint16
	TotalSectors      uint32
	SerialNumber      uint32
	VolumeLabel       string
	OEMName           string
}

var validSectorsPerCluster = map[uint8]bool{
	1: true, 2: true, 4: true, 8: true, 16: true, 32: true, 64: true, 128: true,
}

// ParseVBR decodes and validates the 512-byte VBR sector. It fails with
// fatErrors.ErrInvalidVolume, aggregating every failing check into the
// error message via multierror, if any invariant in spec.md §4.2 does not
// hold.
func ParseVBR(sector []byte) (*VBR, error) {
	if len(sector) != blockSectorSize {
		return nil, fatErrors.ErrInvalidArgument.WithMessage(
			fmt.Sprintf("VBR sector must be %d bytes, got %d", blockSectorSize, len(sector)),
		)
	}

	var raw rawVBR
	if err := binary.Read(bytes.NewReader(sector), binary.LittleEndian, &raw); err != nil {
		return nil, fatErrors.ErrInvalidVolume.Wrap(err)
	}

	var issues *multierror.Error

	if raw.ReservedSectors < 1 {
		issues = multierror.Append(issues, fmt.Errorf("reserved_sectors must be >= 1, got %d", raw.ReservedSectors))
	}
	if raw.BytesPerSector == 0 {
		issues = multierror.Append(issues, fmt.Errorf("bytes_per_sector must not be 0"))
	} else if (uint32(raw.RootEntries)*dirEntrySize)%uint32(raw.BytesPerSector) != 0 {
		issues = multierror.Append(issues, fmt.Errorf(
			"root_entries*32 (%d) is not a multiple of bytes_per_sector (%d)",
			uint32(raw.RootEntries)*dirEntrySize, raw.BytesPerSector,
		))
	}
	if raw.SectorsPerFat < 1 {
		issues = multierror.Append(issues, fmt.Errorf("sectors_per_fat must be >= 1, got %d", raw.SectorsPerFat))
	}
	if raw.Signature != expectedSignature {
		issues = multierror.Append(issues, fmt.Errorf("signature must be 0x%02X, got 0x%02X", expectedSignature, raw.Signature))
	}
	if raw.SmallSectors == 0 && raw.LargeSectors == 0 {
		issues = multierror.Append(issues, fmt.Errorf("small_sectors and large_sectors are both 0"))
	} else if raw.SmallSectors != 0 && raw.LargeSectors != 0 {
		issues = multierror.Append(issues, fmt.Errorf("small_sectors and large_sectors are both nonzero"))
	} else if raw.SmallSectors == 0 && raw.LargeSectors < minSmallSectorsFat {
		issues = multierror.Append(issues, fmt.Errorf(
			"large_sectors must be >= %d when small_sectors is 0, got %d", minSmallSectorsFat, raw.LargeSectors,
		))
	}
	if !validSectorsPerCluster[raw.SectorsPerCluster] {
		issues = multierror.Append(issues, fmt.Errorf("sectors_per_cluster %d is not a power of two in [1, 128]", raw.SectorsPerCluster))
	}
	if raw.EndMarker != expectedEndMarker {
		issues = multierror.Append(issues, fmt.Errorf("end_marker must be 0x%04X, got 0x%04X", expectedEndMarker, raw.EndMarker))
	}

	if issues.ErrorOrNil() != nil {
		return nil, fatErrors.ErrInvalidVolume.WithMessage(issues.Error())
	}

	totalSectors := uint32(raw.SmallSectors)
	if totalSectors == 0 {
		totalSectors = raw.LargeSectors
	}

	return &VBR{
		BytesPerSector:    raw.BytesPerSector,
		SectorsPerCluster: raw.SectorsPerCluster,
		ReservedSectors:   raw.ReservedSectors,
		Fats:              raw.Fats,
		RootEntries:       raw.RootEntries,
		SectorsPerFat:     raw.SectorsPerFat,
		TotalSectors:      totalSectors,
		SerialNumber:      raw.SerialNumber,
		VolumeLabel:       trimPadded(raw.VolumeLabel[:]),
		OEMName:           trimPadded(raw.OEMName[:]),
	}, nil
}

// RootDirSectors returns the number of sectors occupied by the fixed-size
// root directory, rounded up to a whole sector per spec.md §4.4.
func (v *VBR) RootDirSectors() uint32 {
	bytesNeeded := uint32(v.RootEntries) * dirEntrySize
	sectors := bytesNeeded / uint32(v.BytesPerSector)
	if bytesNeeded%uint32(v.BytesPerSector) != 0 {
		sectors++
	}
	return sectors
}

// BytesPerCluster returns bytes_per_sector * sectors_per_cluster.
func (v *VBR) BytesPerCluster() uint32 {
	return uint32(v.BytesPerSector) * uint32(v.SectorsPerCluster)
}

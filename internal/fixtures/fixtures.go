// Package fixtures builds synthetic FAT16 disk images in memory for tests.
// It writes raw bytes at the offsets spec.md §6 describes rather than going
// through the driver's own parser, so a test exercises the parser against
// an independently constructed image instead of a mirror of itself.
package fixtures

import (
	"encoding/binary"

	"github.com/dargueta/fat16ro/blockdevice"
	"github.com/xaionaro-go/bytesextra"
)

const (
	sectorSize    = 512
	direntSize    = 32
	vbrSignature  = 0x29
	vbrEndMarker  = 0xAA55
	eocMarker     = 0xFFFF
	firstDataClus = 2
)

// Entry describes one root directory record to bake into the image.
type Entry struct {
	Name         string // up to 8 bytes, unpadded
	Extension    string // up to 3 bytes, unpadded
	Attributes   uint8
	FirstCluster uint32
	Data         []byte // written starting at FirstCluster, chained across clusters as needed
}

// Builder assembles a standard FAT16 image: bytes_per_sector=512,
// sectors_per_cluster=8, reserved_sectors=1, fats=2, root_entries=512,
// sectors_per_fat=32 — the geometry spec.md §8's seed scenarios use.
type Builder struct {
	BytesPerSector    uint16
	SectorsPerCluster uint8
	ReservedSectors   uint16
	Fats              uint8
	RootEntries       uint16
	SectorsPerFat     uint16
	SmallSectors      uint16
	Signature         uint8
	EndMarker         uint16

	entries    []Entry
	fatEntries map[uint32]uint16
	corrupt    map[int][2]int // copyIndex -> {byteOffsetWithinCopy, xorValue}
}

// Standard returns a Builder pre-populated with the seed-scenario geometry
// and a correctly-terminated FAT (FAT[0] and FAT[1] reserved, FAT[1] marked
// end-of-chain).
func Standard() *Builder {
	b := &Builder{
		BytesPerSector:    sectorSize,
		SectorsPerCluster: 8,
		ReservedSectors:   1,
		Fats:              2,
		RootEntries:       512,
		SectorsPerFat:     32,
		SmallSectors:      4096,
		Signature:         vbrSignature,
		EndMarker:         vbrEndMarker,
		fatEntries:        map[uint32]uint16{0: 0xFFF8, 1: eocMarker},
		corrupt:           map[int][2]int{},
	}
	return b
}

// AddEntry registers a root directory entry and, if it carries data, chains
// it across consecutive clusters starting at FirstCluster.
func (b *Builder) AddEntry(e Entry) *Builder {
	b.entries = append(b.entries, e)

	if len(e.Data) == 0 {
		return b
	}
	bytesPerCluster := uint32(b.BytesPerSector) * uint32(b.SectorsPerCluster)
	clustersNeeded := (uint32(len(e.Data)) + bytesPerCluster - 1) / bytesPerCluster
	cluster := e.FirstCluster
	for i := uint32(0); i < clustersNeeded; i++ {
		if i == clustersNeeded-1 {
			b.fatEntries[cluster] = eocMarker
		} else {
			next := cluster + 1
			b.fatEntries[cluster] = uint16(next)
			cluster = next
		}
	}
	return b
}

// SetFATEntry overrides a single FAT cell, for tests that need a specific
// chain shape (e.g. non-contiguous cluster chains) or a deliberately
// corrupt value.
func (b *Builder) SetFATEntry(cluster uint32, value uint16) *Builder {
	b.fatEntries[cluster] = value
	return b
}

// CorruptEndMarker forces an invalid trailing signature, for the
// InvalidVolume seed scenario.
func (b *Builder) CorruptEndMarker() *Builder {
	b.EndMarker = 0x0000
	return b
}

// CorruptFATCopy flips one byte in a non-canonical FAT copy (copyIndex > 0),
// for the CorruptFat seed scenario.
func (b *Builder) CorruptFATCopy(copyIndex int, byteOffset int) *Builder {
	b.corrupt[copyIndex] = [2]int{byteOffset, 0xFF}
	return b
}

// Bytes assembles the full disk image.
func (b *Builder) Bytes() []byte {
	rootDirSectors := (uint32(b.RootEntries)*direntSize + uint32(b.BytesPerSector) - 1) / uint32(b.BytesPerSector)
	fatRegionSectors := uint32(b.Fats) * uint32(b.SectorsPerFat)
	dataStartSector := uint32(b.ReservedSectors) + fatRegionSectors + rootDirSectors

	totalSectors := uint32(b.SmallSectors)
	if totalSectors < dataStartSector+256 {
		totalSectors = dataStartSector + 256
	}

	image := make([]byte, totalSectors*uint32(b.BytesPerSector))

	b.writeVBR(image, totalSectors)
	b.writeFATs(image)
	b.writeRoot(image, uint32(b.ReservedSectors)+fatRegionSectors)
	b.writeData(image, dataStartSector)

	return image
}

// Device wraps the built image as a blockdevice.Device backed by an
// in-memory stream, for tests that don't want to touch the filesystem.
func (b *Builder) Device() *blockdevice.Device {
	stream := bytesextra.NewReadWriteSeeker(b.Bytes())
	return blockdevice.OpenStream(stream)
}

func (b *Builder) writeVBR(image []byte, totalSectors uint32) {
	put16 := binary.LittleEndian.PutUint16
	put32 := binary.LittleEndian.PutUint32

	copy(image[0:3], []byte{0xEB, 0x3C, 0x90})
	copy(image[3:11], padRight("FAT16RO", 8, ' '))
	put16(image[11:13], b.BytesPerSector)
	image[13] = b.SectorsPerCluster
	put16(image[14:16], b.ReservedSectors)
	image[16] = b.Fats
	put16(image[17:19], b.RootEntries)
	put16(image[19:21], b.SmallSectors)
	image[21] = 0xF8
	put16(image[22:24], b.SectorsPerFat)
	put16(image[24:26], 63)
	put16(image[26:28], 255)
	put32(image[28:32], 0)

	var largeSectors uint32
	if b.SmallSectors == 0 {
		largeSectors = totalSectors
	}
	put32(image[32:36], largeSectors)

	image[36] = 0x80
	image[37] = 0
	image[38] = b.Signature
	put32(image[39:43], 0x12345678)
	copy(image[43:54], padRight("NO NAME", 11, ' '))
	copy(image[54:62], padRight("FAT16", 8, ' '))
	put16(image[510:512], b.EndMarker)
}

func (b *Builder) fatCopyBytes() []byte {
	buf := make([]byte, uint32(b.SectorsPerFat)*uint32(b.BytesPerSector))
	for cluster, value := range b.fatEntries {
		offset := cluster * 2
		if int(offset)+2 <= len(buf) {
			binary.LittleEndian.PutUint16(buf[offset:offset+2], value)
		}
	}
	return buf
}

func (b *Builder) writeFATs(image []byte) {
	canonical := b.fatCopyBytes()
	fatStartSector := uint32(b.ReservedSectors)
	copySectors := uint32(b.SectorsPerFat)

	for i := 0; i < int(b.Fats); i++ {
		copyBytes := make([]byte, len(canonical))
		copy(copyBytes, canonical)

		if override, ok := b.corrupt[i]; ok {
			pos := override[0]
			copyBytes[pos] ^= byte(override[1])
		}

		offset := (fatStartSector + uint32(i)*copySectors) * uint32(b.BytesPerSector)
		copy(image[offset:offset+uint32(len(copyBytes))], copyBytes)
	}
}

func (b *Builder) writeRoot(image []byte, rootStartSector uint32) {
	offset := rootStartSector * uint32(b.BytesPerSector)
	for _, e := range b.entries {
		copy(image[offset:offset+8], padRight(e.Name, 8, ' '))
		copy(image[offset+8:offset+11], padRight(e.Extension, 3, ' '))
		image[offset+11] = e.Attributes
		binary.LittleEndian.PutUint16(image[offset+20:offset+22], uint16(e.FirstCluster>>16))
		binary.LittleEndian.PutUint16(image[offset+26:offset+28], uint16(e.FirstCluster&0xFFFF))
		binary.LittleEndian.PutUint32(image[offset+28:offset+32], uint32(len(e.Data)))
		offset += direntSize
	}
}

func (b *Builder) writeData(image []byte, dataStartSector uint32) {
	bytesPerCluster := uint32(b.BytesPerSector) * uint32(b.SectorsPerCluster)
	for _, e := range b.entries {
		if len(e.Data) == 0 {
			continue
		}
		cluster := e.FirstCluster
		remaining := e.Data
		for len(remaining) > 0 {
			clusterOffset := (dataStartSector + (cluster-firstDataClus)*uint32(b.SectorsPerCluster)) * uint32(b.BytesPerSector)
			n := bytesPerCluster
			if uint32(len(remaining)) < n {
				n = uint32(len(remaining))
			}
			copy(image[clusterOffset:clusterOffset+n], remaining[:n])
			remaining = remaining[n:]

			next, ok := b.fatEntries[cluster]
			if !ok || next >= 0xFFF8 {
				break
			}
			cluster = uint32(next)
		}
	}
}

func padRight(s string, n int, pad byte) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = pad
	}
	copy(out, s)
	return out
}

package fat16ro

import (
	"bytes"
	"encoding/binary"
	"strings"

	fatErrors "github.com/dargueta/fat16ro/errors"
)

// Attribute bits for a raw directory entry, per spec.md §6.
const (
	AttrReadOnly    = 0x01
	AttrHidden      = 0x02
	AttrSystem      = 0x04
	AttrVolumeLabel = 0x08
	AttrLongName    = 0x0F // exact match, not a mask: READ_ONLY|HIDDEN|SYSTEM|VOLUME_LABEL
	AttrDirectory   = 0x10
	AttrArchive     = 0x20
)

const (
	deletedMarker    = 0xE5
	endOfDirMarker   = 0x00
	rawDirentSize    = 32
	rawFilenameLen   = 8
	rawExtensionLen  = 3
)

// rawDirent is the 32-byte on-disk directory entry, decoded field by field
// in the order spec.md §6 describes it.
type rawDirent struct {
	Filename       [rawFilenameLen]byte
	Extension      [rawExtensionLen]byte
	Attributes     uint8
	Reserved       uint8
	CreationTenths uint8
	CreationTime   uint16
	CreationDate   uint16
	AccessDate     uint16
	FirstClusterHi uint16
	ModifyTime     uint16
	ModifyDate     uint16
	FirstClusterLo uint16
	FileSize       uint32
}

// DirEntry is a normalized, read-only view of one root directory entry.
type DirEntry struct {
	Name         string
	Attributes   uint8
	FirstCluster uint32
	FileSize     uint32
}

func (e DirEntry) IsDirectory() bool { return e.Attributes&AttrDirectory != 0 }
func (e DirEntry) IsReadOnly() bool  { return e.Attributes&AttrReadOnly != 0 }
func (e DirEntry) IsHidden() bool    { return e.Attributes&AttrHidden != 0 }
func (e DirEntry) IsSystem() bool    { return e.Attributes&AttrSystem != 0 }
func (e DirEntry) IsArchived() bool  { return e.Attributes&AttrArchive != 0 }

func parseRawDirent(b []byte) (rawDirent, error) {
	var raw rawDirent
	if len(b) != rawDirentSize {
		return raw, fatErrors.ErrInvalidArgument.WithMessage("directory entry buffer must be 32 bytes")
	}
	if err := binary.Read(bytes.NewReader(b), binary.LittleEndian, &raw); err != nil {
		return raw, fatErrors.ErrInvalidVolume.Wrap(err)
	}
	return raw, nil
}

func isDeleted(raw rawDirent) bool     { return raw.Filename[0] == deletedMarker }
func isEndOfDirectory(raw rawDirent) bool { return raw.Filename[0] == endOfDirMarker }
func isVolumeLabel(raw rawDirent) bool { return raw.Attributes&AttrVolumeLabel != 0 }
func isLongNameEntry(raw rawDirent) bool { return raw.Attributes == AttrLongName }

// normalizeName reconstructs the user-visible 8.3 name. Directories are
// rendered without an extension; files always get a dot, even when the
// extension field is all spaces — the source's strtok-based splitting
// collapses an empty extension to the same shape, so the dot is kept rather
// than silently dropped per spec.md §4.5/§9.
func normalizeName(raw rawDirent) string {
	name := strings.TrimRight(string(raw.Filename[:]), " ")
	if raw.Attributes&AttrDirectory != 0 {
		return name
	}
	ext := strings.TrimRight(string(raw.Extension[:]), " ")
	return name + "." + ext
}

func toDirEntry(raw rawDirent) DirEntry {
	return DirEntry{
		Name:         normalizeName(raw),
		Attributes:   raw.Attributes,
		FirstCluster: uint32(raw.FirstClusterHi)<<16 | uint32(raw.FirstClusterLo),
		FileSize:     raw.FileSize,
	}
}

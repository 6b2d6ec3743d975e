package fat16ro

import (
	"context"
	"log/slog"

	"github.com/dargueta/fat16ro/blockdevice"
	fatErrors "github.com/dargueta/fat16ro/errors"
)

const slogLevelTrace = slog.LevelDebug - 2

// Volume is an opened FAT16 volume: the VBR, the canonical FAT table, and
// the root directory, all loaded and validated. It owns no image-file
// handle of its own — that belongs to the blockdevice.Device it was opened
// with — but it owns the FAT and root-directory buffers derived from it.
type Volume struct {
	dev       *blockdevice.Device
	vbr       *VBR
	fat       []uint16
	eocMarker uint16

	rootStart    uint32
	rootSectors  uint32
	dataStart    uint32
	entries      []rawDirent
	entriesCount int

	startSector uint32
	log         *slog.Logger

	openHandles int
}

// Open reads and validates the VBR, cross-checks and loads the FAT, and
// loads the root directory from dev, starting at sector 0 of the device
// unless WithStartSector says otherwise.
func Open(dev *blockdevice.Device, opts ...Option) (*Volume, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	vol := &Volume{
		dev:         dev,
		startSector: cfg.startSector,
		log:         cfg.logger,
	}

	vol.trace("open:read_vbr", slog.Uint64("start_sector", uint64(cfg.startSector)))
	vbrSector, err := dev.ReadSectors(cfg.startSector, 1)
	if err != nil {
		vol.logerror("open:read_vbr", slog.String("err", err.Error()))
		return nil, fatErrors.ErrIoRange.Wrap(err)
	}

	vbr, err := ParseVBR(vbrSector)
	if err != nil {
		vol.logerror("open:parse_vbr", slog.String("err", err.Error()))
		return nil, err
	}
	vol.vbr = vbr
	vol.trace("open:vbr_ok",
		slog.Uint64("bytes_per_sector", uint64(vbr.BytesPerSector)),
		slog.Uint64("sectors_per_cluster", uint64(vbr.SectorsPerCluster)),
		slog.Uint64("total_sectors", uint64(vbr.TotalSectors)),
	)

	fat, eocMarker, err := loadFAT(dev, vbr, cfg.startSector)
	if err != nil {
		vol.logerror("open:load_fat", slog.String("err", err.Error()))
		return nil, err
	}
	vol.fat = fat
	vol.eocMarker = eocMarker
	vol.trace("open:fat_ok", slog.Uint64("eoc_marker", uint64(eocMarker)), slog.Int("entries", len(fat)))

	vol.rootStart = cfg.startSector + uint32(vbr.ReservedSectors) + uint32(vbr.Fats)*uint32(vbr.SectorsPerFat)
	vol.rootSectors = vbr.RootDirSectors()
	vol.dataStart = vol.rootStart + vol.rootSectors

	if err := vol.loadRootDirectory(); err != nil {
		vol.logerror("open:load_root", slog.String("err", err.Error()))
		return nil, err
	}
	vol.debug("open:ready", slog.Int("populated_entries", vol.entriesCount))

	return vol, nil
}

func (v *Volume) loadRootDirectory() error {
	raw, err := v.dev.ReadSectors(v.rootStart, v.rootSectors)
	if err != nil {
		return fatErrors.ErrIoRange.Wrap(err)
	}

	count := len(raw) / rawDirentSize
	entries := make([]rawDirent, count)
	entriesCount := count
	for i := 0; i < count; i++ {
		entry, err := parseRawDirent(raw[i*rawDirentSize : (i+1)*rawDirentSize])
		if err != nil {
			return err
		}
		entries[i] = entry
		if entriesCount == count && isEndOfDirectory(entry) {
			entriesCount = i
		}
	}

	v.entries = entries
	v.entriesCount = entriesCount
	return nil
}

// ClusterToSector maps a data cluster number (>= 2) to the absolute sector
// index where it begins.
func (v *Volume) ClusterToSector(cluster uint32) uint32 {
	return v.dataStart + (cluster-firstDataClus)*uint32(v.vbr.SectorsPerCluster)
}

// VBR returns the volume's parsed boot record.
func (v *Volume) VBR() *VBR { return v.vbr }

// List returns every populated root directory entry that is not deleted,
// not a volume label, and not part of a long-filename sequence.
func (v *Volume) List() []DirEntry {
	out := make([]DirEntry, 0, v.entriesCount)
	for i := 0; i < v.entriesCount; i++ {
		raw := v.entries[i]
		if isDeleted(raw) || isVolumeLabel(raw) || isLongNameEntry(raw) {
			continue
		}
		out = append(out, toDirEntry(raw))
	}
	return out
}

// Lookup finds a root directory entry by its normalized 8.3 name.
// Comparison is case-sensitive and literal; the first match wins.
func (v *Volume) Lookup(name string) (DirEntry, error) {
	for i := 0; i < v.entriesCount; i++ {
		raw := v.entries[i]
		if isDeleted(raw) || isVolumeLabel(raw) || isLongNameEntry(raw) {
			continue
		}
		entry := toDirEntry(raw)
		if entry.Name == name {
			return entry, nil
		}
	}
	return DirEntry{}, fatErrors.ErrNotFound.WithMessage(name)
}

// Close releases the volume. It refuses to do so while any File is still
// open against it, per the ownership rule in spec.md §5 — handles must
// close first. It does not close the blockdevice.Device the volume was
// opened with; that is closed separately by its owner.
func (v *Volume) Close() error {
	if v.openHandles > 0 {
		return fatErrors.ErrInvalidArgument.WithMessage("cannot close volume with open file handles")
	}
	return nil
}

func (v *Volume) logattrs(level slog.Level, msg string, attrs ...slog.Attr) {
	if v.log != nil {
		v.log.LogAttrs(context.Background(), level, msg, attrs...)
	}
}

func (v *Volume) trace(msg string, attrs ...slog.Attr)    { v.logattrs(slogLevelTrace, msg, attrs...) }
func (v *Volume) debug(msg string, attrs ...slog.Attr)    { v.logattrs(slog.LevelDebug, msg, attrs...) }
func (v *Volume) logerror(msg string, attrs ...slog.Attr) { v.logattrs(slog.LevelError, msg, attrs...) }

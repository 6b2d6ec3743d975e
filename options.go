package fat16ro

import (
	"io"
	"log/slog"
)

// Option configures a Volume at open time. The driver has no configuration
// file or environment variables: every knob is a functional option passed
// to Open, in the style the teacher lineage uses for its block device and
// cache constructors.
type Option func(*volumeConfig)

type volumeConfig struct {
	logger      *slog.Logger
	startSector uint32
}

func defaultConfig() *volumeConfig {
	return &volumeConfig{
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		startSector: 0,
	}
}

// WithLogger attaches a structured logger for VBR/FAT diagnostics. Without
// this option, Open is silent.
func WithLogger(logger *slog.Logger) Option {
	return func(c *volumeConfig) { c.logger = logger }
}

// WithStartSector offsets every address the volume computes by startSector,
// for images where the FAT16 volume begins partway through a larger file
// (e.g. a partitioned disk image rather than a bare volume image).
func WithStartSector(startSector uint32) Option {
	return func(c *volumeConfig) { c.startSector = startSector }
}

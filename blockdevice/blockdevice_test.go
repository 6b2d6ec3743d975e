package blockdevice_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dargueta/fat16ro/blockdevice"
	fatErrors "github.com/dargueta/fat16ro/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeImage(t *testing.T, sectors int) string {
	t.Helper()
	data := make([]byte, sectors*blockdevice.SectorSize)
	for i := range data {
		data[i] = byte(i % 251)
	}

	path := filepath.Join(t.TempDir(), "image.bin")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestOpenMissingImage(t *testing.T) {
	_, err := blockdevice.Open(filepath.Join(t.TempDir(), "missing.img"))
	assert.ErrorIs(t, err, fatErrors.ErrNotFound)
}

func TestReadSectors(t *testing.T) {
	path := writeImage(t, 4)
	dev, err := blockdevice.Open(path)
	require.NoError(t, err)
	defer dev.Close()

	buf, err := dev.ReadSectors(1, 2)
	require.NoError(t, err)
	assert.Len(t, buf, 2*blockdevice.SectorSize)
	assert.EqualValues(t, byte(blockdevice.SectorSize%251), buf[0])
}

func TestReadPastEndOfImage(t *testing.T) {
	path := writeImage(t, 2)
	dev, err := blockdevice.Open(path)
	require.NoError(t, err)
	defer dev.Close()

	_, err = dev.ReadSectors(1, 5)
	assert.ErrorIs(t, err, fatErrors.ErrIoRange)
}

func TestReadRejectsWrongBufferSize(t *testing.T) {
	path := writeImage(t, 2)
	dev, err := blockdevice.Open(path)
	require.NoError(t, err)
	defer dev.Close()

	err = dev.Read(0, 1, make([]byte, 10))
	assert.ErrorIs(t, err, fatErrors.ErrInvalidArgument)
}

func TestReadRejectsEmptyBuffer(t *testing.T) {
	path := writeImage(t, 1)
	dev, err := blockdevice.Open(path)
	require.NoError(t, err)
	defer dev.Close()

	err = dev.Read(0, 0, nil)
	assert.ErrorIs(t, err, fatErrors.ErrInvalidArgument)
}

package fat16ro_test

import (
	"bytes"
	"testing"

	fat16ro "github.com/dargueta/fat16ro"
	fatErrors "github.com/dargueta/fat16ro/errors"
	"github.com/dargueta/fat16ro/internal/fixtures"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openVolumeAndFile(t *testing.T, b *fixtures.Builder, name string) (*fat16ro.Volume, *fat16ro.File) {
	t.Helper()
	vol, err := fat16ro.Open(b.Device())
	require.NoError(t, err)

	f, err := fat16ro.OpenFile(vol, name)
	require.NoError(t, err)

	t.Cleanup(func() {
		f.Close()
		vol.Close()
	})
	return vol, f
}

func TestReadWholeSmallFile(t *testing.T) {
	b := fixtures.Standard().AddEntry(fixtures.Entry{
		Name: "A", Extension: "TXT", FirstCluster: 2, Data: []byte("HELLOWORLD"),
	})
	_, f := openVolumeAndFile(t, b, "A.TXT")

	buf := make([]byte, 10)
	n, err := f.Read(buf, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 10, n)
	assert.Equal(t, "HELLOWORLD", string(buf))
}

func TestSeekThenReadTail(t *testing.T) {
	b := fixtures.Standard().AddEntry(fixtures.Entry{
		Name: "A", Extension: "TXT", FirstCluster: 2, Data: []byte("HELLOWORLD"),
	})
	_, f := openVolumeAndFile(t, b, "A.TXT")

	pos, err := f.Seek(5, fat16ro.SeekSet)
	require.NoError(t, err)
	assert.EqualValues(t, 5, pos)

	buf := make([]byte, 10)
	n, err := f.Read(buf, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 5, n)
	assert.Equal(t, "WORLD", string(buf[:5]))
}

func TestReadMultiClusterFile(t *testing.T) {
	size := 3*8*512 + 7
	data := make([]byte, size)
	for i := range data {
		data[i] = byte(i % 256)
	}

	b := fixtures.Standard().AddEntry(fixtures.Entry{
		Name: "BIG", Extension: "BIN", FirstCluster: 2, Data: data,
	})
	_, f := openVolumeAndFile(t, b, "BIG.BIN")

	buf := make([]byte, size)
	n, err := f.Read(buf, 1, uint32(size))
	require.NoError(t, err)
	assert.EqualValues(t, size, n)
	assert.True(t, bytes.Equal(data, buf))
}

func TestOpenFileOnDirectoryFails(t *testing.T) {
	b := fixtures.Standard().AddEntry(fixtures.Entry{
		Name: "SUBDIR", Attributes: fat16ro.AttrDirectory,
	})
	vol, err := fat16ro.Open(b.Device())
	require.NoError(t, err)
	defer vol.Close()

	_, err = fat16ro.OpenFile(vol, "SUBDIR")
	assert.ErrorIs(t, err, fatErrors.ErrIsDirectory)
}

func TestSeekRejectsNegativeSet(t *testing.T) {
	b := fixtures.Standard().AddEntry(fixtures.Entry{
		Name: "A", Extension: "TXT", FirstCluster: 2, Data: []byte("HELLOWORLD"),
	})
	_, f := openVolumeAndFile(t, b, "A.TXT")

	_, err := f.Seek(-1, fat16ro.SeekSet)
	assert.ErrorIs(t, err, fatErrors.ErrOutOfRange)
}

func TestSeekRejectsUnknownWhence(t *testing.T) {
	b := fixtures.Standard().AddEntry(fixtures.Entry{
		Name: "A", Extension: "TXT", FirstCluster: 2, Data: []byte("HELLOWORLD"),
	})
	_, f := openVolumeAndFile(t, b, "A.TXT")

	_, err := f.Seek(0, 99)
	assert.ErrorIs(t, err, fatErrors.ErrInvalidArgument)
}

func TestSeekCurRoundTrip(t *testing.T) {
	b := fixtures.Standard().AddEntry(fixtures.Entry{
		Name: "A", Extension: "TXT", FirstCluster: 2, Data: []byte("HELLOWORLD"),
	})
	_, f := openVolumeAndFile(t, b, "A.TXT")

	_, err := f.Seek(4, fat16ro.SeekSet)
	require.NoError(t, err)

	pos, err := f.Seek(0, fat16ro.SeekCur)
	require.NoError(t, err)
	assert.EqualValues(t, 4, pos)
}

func TestReadPastClosedFileFails(t *testing.T) {
	b := fixtures.Standard().AddEntry(fixtures.Entry{
		Name: "A", Extension: "TXT", FirstCluster: 2, Data: []byte("HELLOWORLD"),
	})
	vol, err := fat16ro.Open(b.Device())
	require.NoError(t, err)
	defer vol.Close()

	f, err := fat16ro.OpenFile(vol, "A.TXT")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	_, err = f.Read(make([]byte, 1), 1, 1)
	assert.ErrorIs(t, err, fatErrors.ErrInvalidArgument)
}

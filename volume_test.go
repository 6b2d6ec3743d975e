package fat16ro_test

import (
	"testing"

	fat16ro "github.com/dargueta/fat16ro"
	fatErrors "github.com/dargueta/fat16ro/errors"
	"github.com/dargueta/fat16ro/internal/fixtures"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func standardBuilderWithFiles() *fixtures.Builder {
	b := fixtures.Standard()
	b.AddEntry(fixtures.Entry{
		Name:         "A",
		Extension:    "TXT",
		FirstCluster: 2,
		Data:         []byte("HELLOWORLD"),
	})
	b.AddEntry(fixtures.Entry{
		Name:       "SUBDIR",
		Attributes: fat16ro.AttrDirectory,
	})
	return b
}

func TestOpenValidVolume(t *testing.T) {
	dev := standardBuilderWithFiles().Device()
	vol, err := fat16ro.Open(dev)
	require.NoError(t, err)
	defer vol.Close()

	entries := vol.List()
	assert.Len(t, entries, 2)
}

func TestOpenRejectsBadVBR(t *testing.T) {
	dev := fixtures.Standard().CorruptEndMarker().Device()
	_, err := fat16ro.Open(dev)
	assert.ErrorIs(t, err, fatErrors.ErrInvalidVolume)
}

func TestOpenRejectsMismatchedFATCopies(t *testing.T) {
	dev := fixtures.Standard().CorruptFATCopy(1, 4).Device()
	_, err := fat16ro.Open(dev)
	assert.ErrorIs(t, err, fatErrors.ErrCorruptFat)
}

func TestLookupFindsEntryByNormalizedName(t *testing.T) {
	dev := standardBuilderWithFiles().Device()
	vol, err := fat16ro.Open(dev)
	require.NoError(t, err)
	defer vol.Close()

	entry, err := vol.Lookup("A.TXT")
	require.NoError(t, err)
	assert.EqualValues(t, 10, entry.FileSize)
	assert.EqualValues(t, 2, entry.FirstCluster)
}

func TestLookupDirectoryHasNoExtensionDot(t *testing.T) {
	dev := standardBuilderWithFiles().Device()
	vol, err := fat16ro.Open(dev)
	require.NoError(t, err)
	defer vol.Close()

	entry, err := vol.Lookup("SUBDIR")
	require.NoError(t, err)
	assert.True(t, entry.IsDirectory())
}

func TestLookupMissingNameFails(t *testing.T) {
	dev := standardBuilderWithFiles().Device()
	vol, err := fat16ro.Open(dev)
	require.NoError(t, err)
	defer vol.Close()

	_, err = vol.Lookup("NOPE.BIN")
	assert.ErrorIs(t, err, fatErrors.ErrNotFound)
}

func TestCloseRefusesWhileHandleOpen(t *testing.T) {
	dev := standardBuilderWithFiles().Device()
	vol, err := fat16ro.Open(dev)
	require.NoError(t, err)

	f, err := fat16ro.OpenFile(vol, "A.TXT")
	require.NoError(t, err)

	err = vol.Close()
	assert.ErrorIs(t, err, fatErrors.ErrInvalidArgument)

	require.NoError(t, f.Close())
	assert.NoError(t, vol.Close())
}

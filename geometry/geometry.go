// Package geometry catalogs named, standard FAT16 volume geometries, in the
// same embedded-CSV style the teacher lineage uses for its disk geometry
// table. It exists for callers who want to sanity check a parsed VBR
// against a known-good shape; neither the core driver nor the test fixture
// builder consults it.
package geometry

import (
	_ "embed"
	"fmt"
	"io"
	"strings"

	"github.com/gocarina/gocsv"
)

// Geometry is one named, standard FAT16 volume shape.
type Geometry struct {
	Slug              string `csv:"slug"`
	Name              string `csv:"name"`
	BytesPerSector    uint16 `csv:"bytes_per_sector"`
	SectorsPerCluster uint8  `csv:"sectors_per_cluster"`
	ReservedSectors   uint16 `csv:"reserved_sectors"`
	Fats              uint8  `csv:"fats"`
	RootEntries       uint16 `csv:"root_entries"`
	SectorsPerFat     uint16 `csv:"sectors_per_fat"`
}

//go:embed geometries.csv
var rawCSV string

var catalog map[string]Geometry

func init() {
	catalog = make(map[string]Geometry)
	reader := strings.NewReader(rawCSV)
	err := gocsv.UnmarshalToCallback(reader, func(row Geometry) error {
		if _, exists := catalog[row.Slug]; exists {
			return fmt.Errorf("duplicate geometry slug %q", row.Slug)
		}
		catalog[row.Slug] = row
		return nil
	})
	if err != nil && err != io.EOF {
		panic(err)
	}
}

// Lookup returns the named standard geometry, or false if no geometry is
// registered under that slug.
func Lookup(slug string) (Geometry, bool) {
	g, ok := catalog[slug]
	return g, ok
}

// Matches reports whether the geometry describes the same on-disk shape as
// the given VBR fields. It's a forensic convenience, not a validation rule:
// a volume can be perfectly valid FAT16 without matching any cataloged
// geometry.
func (g Geometry) Matches(bytesPerSector uint16, sectorsPerCluster uint8, reservedSectors uint16, fats uint8, rootEntries uint16, sectorsPerFat uint16) bool {
	return g.BytesPerSector == bytesPerSector &&
		g.SectorsPerCluster == sectorsPerCluster &&
		g.ReservedSectors == reservedSectors &&
		g.Fats == fats &&
		g.RootEntries == rootEntries &&
		g.SectorsPerFat == sectorsPerFat
}

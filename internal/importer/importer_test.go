package importer_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/lurefish/internal/game/catalog"
	"github.com/cory-johannsen/lurefish/internal/importer"
	"github.com/cory-johannsen/lurefish/internal/importer/bundle"
)

const fixture = "bundle/testdata/client"

type stubSource struct {
	doc      *catalog.Document
	warnings []string
	err      error
}

func (s stubSource) Load(string) (*catalog.Document, []string, error) {
	return s.doc, s.warnings, s.err
}

func TestImporter_Run_WritesLoadableCatalog(t *testing.T) {
	var out bytes.Buffer
	outPath := filepath.Join(t.TempDir(), "content", "catalog.yaml")

	imp := importer.New(bundle.NewSource(), &out)
	require.NoError(t, imp.Run(fixture, outPath))

	cat, err := catalog.Load(outPath)
	require.NoError(t, err)
	_, ok := cat.Fish(5)
	assert.True(t, ok)
	_, ok = cat.Lure("soft_worm")
	assert.True(t, ok)
	_, ok = cat.Weather("light_fog")
	assert.True(t, ok)

	assert.Contains(t, out.String(), "WARNING: ")
	assert.Contains(t, out.String(), "wrote   "+outPath)
}

func TestImporter_Run_InvalidSourceDir(t *testing.T) {
	imp := importer.New(bundle.NewSource(), &bytes.Buffer{})
	err := imp.Run("/nonexistent/dir", filepath.Join(t.TempDir(), "catalog.yaml"))
	require.Error(t, err)
}

func TestImporter_Run_SourceError(t *testing.T) {
	boom := errors.New("boom")
	imp := importer.New(stubSource{err: boom}, &bytes.Buffer{})
	err := imp.Run("ignored", filepath.Join(t.TempDir(), "catalog.yaml"))
	assert.ErrorIs(t, err, boom)
}

func TestImporter_Run_InvalidCatalogWritesNothing(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "catalog.yaml")
	doc := &catalog.Document{
		Fish:   []catalog.Fish{{ID: 1, Name: "Carp", Rarity: catalog.RarityCommon, MinSize: 1, MaxSize: 2, BaseValue: 10}},
		Scenes: []catalog.Scene{{ID: "lake", Name: "Lake", Type: catalog.Freshwater, CommonFish: []int{99}}},
	}
	imp := importer.New(stubSource{doc: doc}, &bytes.Buffer{})

	err := imp.Run("ignored", outPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed validation")
	_, statErr := os.Stat(outPath)
	assert.True(t, os.IsNotExist(statErr))
}

func TestNew_PanicsOnNil(t *testing.T) {
	assert.Panics(t, func() { importer.New(nil, &bytes.Buffer{}) })
	assert.Panics(t, func() { importer.New(bundle.NewSource(), nil) })
}

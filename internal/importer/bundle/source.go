// Package bundle reads the JSON content bundle exported from the mobile client.
package bundle

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cory-johannsen/lurefish/internal/game/catalog"
	"github.com/cory-johannsen/lurefish/internal/importer"
)

var _ importer.Source = (*Source)(nil)

// Source implements importer.Source for the client bundle layout:
//
//	sourceDir/
//	  config.json  <- WEATHER_TYPES, TIME_OF_DAY, SEASONS, RARITY_CONFIG, GAME_CONSTANTS
//	  fish.json    <- array of species
//	  rods.json, reels.json, lures.json, lines.json
//	  scenes.json  <- array of scenes
type Source struct{}

// NewSource constructs a bundle Source.
func NewSource() *Source { return &Source{} }

// Load reads and converts the bundle rooted at sourceDir.
//
// Precondition: sourceDir must contain config.json and the six content files.
// Postcondition: returns a non-nil Document and its conversion warnings, or a
// non-nil error naming the first unreadable file.
func (s *Source) Load(sourceDir string) (*catalog.Document, []string, error) {
	if _, err := os.Stat(sourceDir); err != nil {
		return nil, nil, fmt.Errorf("source directory not accessible: %w", err)
	}

	data, err := readFile(sourceDir, "config.json")
	if err != nil {
		return nil, nil, err
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, nil, err
	}

	b := &Bundle{Config: *cfg}
	if b.Fish, err = loadList[catalog.Fish](sourceDir, "fish"); err != nil {
		return nil, nil, err
	}
	if b.Rods, err = loadList[catalog.Rod](sourceDir, "rods"); err != nil {
		return nil, nil, err
	}
	if b.Reels, err = loadList[catalog.Reel](sourceDir, "reels"); err != nil {
		return nil, nil, err
	}
	if b.Lures, err = loadList[catalog.Lure](sourceDir, "lures"); err != nil {
		return nil, nil, err
	}
	if b.Lines, err = loadList[catalog.Line](sourceDir, "lines"); err != nil {
		return nil, nil, err
	}
	if b.Scenes, err = loadList[catalog.Scene](sourceDir, "scenes"); err != nil {
		return nil, nil, err
	}

	doc, warnings := Convert(b)
	return doc, warnings, nil
}

func loadList[T any](dir, kind string) ([]T, error) {
	data, err := readFile(dir, kind+".json")
	if err != nil {
		return nil, err
	}
	return ParseList[T](kind, data)
}

func readFile(dir, name string) ([]byte, error) {
	path := filepath.Join(dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}

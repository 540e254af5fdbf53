// Package importer converts content authored outside the game into catalog YAML
// that catalog.Load accepts.
package importer

import "github.com/cory-johannsen/lurefish/internal/game/catalog"

// Source loads content from a format-specific source directory and produces a
// catalog Document ready to be written as catalog YAML.
//
// Precondition: sourceDir must exist and contain the expected layout for the format.
// Postcondition: returns a non-nil Document and a (possibly empty) list of warnings
// for recoverable issues, or a non-nil error.
type Source interface {
	Load(sourceDir string) (*catalog.Document, []string, error)
}

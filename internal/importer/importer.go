package importer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/lurefish/internal/game/catalog"
)

// Importer orchestrates content import from a Source to a catalog file.
type Importer struct {
	source Source
	out    io.Writer
}

// New constructs an Importer backed by the given Source. Progress and warnings
// are written to out.
//
// Precondition: source and out must be non-nil.
// Postcondition: returns a non-nil Importer.
func New(source Source, out io.Writer) *Importer {
	if source == nil {
		panic("importer.New: source must not be nil")
	}
	if out == nil {
		panic("importer.New: out must not be nil")
	}
	return &Importer{source: source, out: out}
}

// Run loads content from sourceDir, validates it as a catalog, and writes it
// as YAML to outputPath.
//
// Precondition: sourceDir must satisfy the source's layout requirements;
// the directory of outputPath must exist or be creatable.
// Postcondition: outputPath holds a catalog that catalog.Load accepts, or an
// error is returned and outputPath is untouched.
func (imp *Importer) Run(sourceDir, outputPath string) error {
	overall := time.Now()

	t0 := time.Now()
	doc, warnings, err := imp.source.Load(sourceDir)
	if err != nil {
		return fmt.Errorf("loading source: %w", err)
	}
	for _, w := range warnings {
		fmt.Fprintf(imp.out, "WARNING: %s\n", w)
	}
	fmt.Fprintf(imp.out, "load    %d fish, %d scene(s), %d item(s) in %s\n",
		len(doc.Fish), len(doc.Scenes),
		len(doc.Rods)+len(doc.Reels)+len(doc.Lures)+len(doc.Lines),
		time.Since(t0).Round(time.Millisecond))

	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("serialising catalog: %w", err)
	}

	// Validate output is loadable before writing.
	if _, err := catalog.Parse(data); err != nil {
		return fmt.Errorf("catalog failed validation: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("creating output directory for %s: %w", outputPath, err)
	}
	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		return fmt.Errorf("writing catalog to %s: %w", outputPath, err)
	}

	fmt.Fprintf(imp.out, "wrote   %s\n", outputPath)
	fmt.Fprintf(imp.out, "total   %s\n", time.Since(overall).Round(time.Millisecond))
	return nil
}

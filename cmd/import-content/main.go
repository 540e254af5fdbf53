// Package main converts an exported content bundle into a catalog YAML file
// that the game loads via the catalog_path setting.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/cory-johannsen/lurefish/internal/importer"
	"github.com/cory-johannsen/lurefish/internal/importer/bundle"
)

func main() {
	format := flag.String("format", "bundle", "source format: bundle")
	sourceDir := flag.String("source", "", "path to source content directory")
	output := flag.String("output", "", "path of the catalog YAML file to write")
	flag.Parse()

	if *sourceDir == "" || *output == "" {
		fmt.Fprintln(os.Stderr, "usage: import-content [-format bundle] -source <dir> -output <file>")
		os.Exit(1)
	}

	var src importer.Source
	switch *format {
	case "bundle":
		src = bundle.NewSource()
	default:
		fmt.Fprintf(os.Stderr, "unknown format %q (supported: bundle)\n", *format)
		os.Exit(1)
	}

	start := time.Now()
	imp := importer.New(src, os.Stdout)
	if err := imp.Run(*sourceDir, *output); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("import complete in %s\n", time.Since(start).Round(time.Millisecond))
}

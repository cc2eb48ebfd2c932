// Command psarcdump unpacks the entries of a PSARC archive to a directory,
// parsing any *.sng entry into a human-readable summary alongside the raw
// bytes it extracts everything else as.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/rocksmith-tools/rsarc/psarc"
	"github.com/rocksmith-tools/rsarc/sng"
)

// errUnsupportedAsset marks entry kinds this tool deliberately does not
// transcode (audio/texture formats), per the package's declared scope.
var errUnsupportedAsset = errors.New("psarcdump: transcoding this asset type is out of scope")

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s <archive.psarc> <output_dir>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 2 {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(flag.Arg(0), flag.Arg(1)); err != nil {
		log.Fatalf("psarcdump: %v", err)
	}
}

func run(archivePath, outDir string) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("opening archive: %w", err)
	}
	defer f.Close()

	archive, err := psarc.Open(f)
	if err != nil {
		return fmt.Errorf("parsing archive: %w", err)
	}

	if err := archive.BindManifest(); err != nil {
		log.Printf("warning: manifest binding failed, entries will dump by index: %v", err)
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}

	entries := archive.Entries()
	for i := range entries {
		entry := &entries[i]
		name := entryFilename(entry, i)

		data, err := archive.Inflate(entry)
		if err != nil {
			log.Printf("skipping entry %s: %v", name, err)
			continue
		}

		if err := dumpEntry(outDir, name, data); err != nil {
			log.Printf("entry %s: %v", name, err)
		}
	}
	return nil
}

func entryFilename(entry *psarc.TocEntry, index int) string {
	if entry.Path != nil {
		return *entry.Path
	}
	return fmt.Sprintf("entry_%04d.bin", index)
}

// dumpEntry writes data to outDir/name, and additionally parses *.sng
// entries into a sibling "<name>.txt" summary. Asset kinds this tool does
// not transcode (*.wem audio, *.dds textures) are written verbatim.
func dumpEntry(outDir, name string, data []byte) error {
	destPath := filepath.Join(outDir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return fmt.Errorf("creating entry dir: %w", err)
	}
	if err := os.WriteFile(destPath, data, 0o644); err != nil {
		return fmt.Errorf("writing entry: %w", err)
	}

	switch {
	case strings.HasSuffix(name, ".sng"):
		return dumpSngSummary(destPath, data)
	case strings.HasSuffix(name, ".wem"), strings.HasSuffix(name, ".dds"):
		return fmt.Errorf("%w: %s", errUnsupportedAsset, name)
	}
	return nil
}

func dumpSngSummary(destPath string, data []byte) error {
	doc, err := sng.Parse(data)
	if err != nil {
		return fmt.Errorf("parsing sng asset: %w", err)
	}

	summary := fmt.Sprintf(
		"bpms=%d phrases=%d chords=%d vocals=%d arrangements=%d sections=%d\n",
		len(doc.Bpms), len(doc.Phrases), len(doc.Chords), len(doc.Vocals),
		len(doc.Arrangements), len(doc.Sections),
	)
	return os.WriteFile(destPath+".txt", []byte(summary), 0o644)
}

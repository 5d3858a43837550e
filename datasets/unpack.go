package datasets

import (
	"archive/zip"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// ArchiveName is the bundled telemetry archive expected next to the data
// directory.
const ArchiveName = "data.zip"

// DataDirName is the directory the archive extracts to.
const DataDirName = "data"

// Unpack makes sure <baseDir>/data exists, extracting <baseDir>/data.zip into
// baseDir when it does not. It returns the data directory path. A missing or
// malformed archive is an error.
func Unpack(baseDir string) (string, error) {
	dataDir := filepath.Join(baseDir, DataDirName)
	if _, err := os.Stat(dataDir); err == nil {
		return dataDir, nil
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("stat data dir: %w", err)
	}

	zipPath := filepath.Join(baseDir, ArchiveName)
	log.Printf("Unpacking data files from %s", zipPath)

	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return "", fmt.Errorf("open archive %s: %w", zipPath, err)
	}
	defer r.Close()

	for _, f := range r.File {
		if err := extractFile(baseDir, f); err != nil {
			return "", fmt.Errorf("extract %s: %w", f.Name, err)
		}
	}

	log.Printf("Data loaded to %s", dataDir)
	return dataDir, nil
}

// extractFile writes one archive member under baseDir, refusing paths that
// would escape it.
func extractFile(baseDir string, f *zip.File) error {
	dest := filepath.Join(baseDir, filepath.FromSlash(f.Name))
	if rel, err := filepath.Rel(baseDir, dest); err != nil || strings.HasPrefix(rel, "..") {
		return fmt.Errorf("archive member escapes extraction dir: %q", f.Name)
	}

	if f.FileInfo().IsDir() {
		return os.MkdirAll(dest, 0755)
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("mkdir %s: %w", filepath.Dir(dest), err)
	}

	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("open member: %w", err)
	}
	defer rc.Close()

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create %s: %w", dest, err)
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return fmt.Errorf("write %s: %w", dest, err)
	}
	return out.Close()
}

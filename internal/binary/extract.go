package binary

import (
	"bytes"
	"fmt"
	"io"
	"path"

	"github.com/klauspost/compress/zip"
)

// windowsZipEntry is the binary inside zipped windows releases.
const windowsZipEntry = "zksolc.exe"

// maxEntrySize caps the decompressed size of an archive entry.
const maxEntrySize = 512 << 20

// Extractor handles archive extraction
type Extractor struct{}

// NewExtractor creates a new extractor
func NewExtractor() *Extractor {
	return &Extractor{}
}

// ExtractZipEntry returns the contents of the regular file called name in the
// zip archive held in data. Directory components of entry names are ignored.
func (e *Extractor) ExtractZipEntry(data []byte, name string) ([]byte, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open zip archive: %w", err)
	}

	for _, f := range reader.File {
		if f.FileInfo().IsDir() || path.Base(f.Name) != name {
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", f.Name, err)
		}
		defer rc.Close()

		content, err := io.ReadAll(io.LimitReader(rc, maxEntrySize+1))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", f.Name, err)
		}
		if len(content) > maxEntrySize {
			return nil, fmt.Errorf("%s exceeds %d bytes", f.Name, maxEntrySize)
		}
		return content, nil
	}

	return nil, fmt.Errorf("binary %s not found in archive", name)
}

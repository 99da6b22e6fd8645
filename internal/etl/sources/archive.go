package sources

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// Each bulk-data zip contains exactly one .txt member, located by
// extension. The member bytes are in the mainframe's single-byte export
// charset (ISO-8859-9) and are decoded to UTF-8 here, before the text
// ever reaches the decoder.

// extractArchiveText returns the decoded content of an archive's single
// .txt member. A zip without one is a malformed archive, never retried.
func extractArchiveText(raw []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return "", fmt.Errorf("malformed archive: %w", err)
	}

	var member *zip.File
	for _, f := range zr.File {
		if strings.HasSuffix(strings.ToLower(f.Name), ".txt") {
			member = f
			break
		}
	}
	if member == nil {
		return "", fmt.Errorf("malformed archive: no .txt member")
	}

	rc, err := member.Open()
	if err != nil {
		return "", fmt.Errorf("open %s: %w", member.Name, err)
	}
	defer rc.Close()

	decoded, err := io.ReadAll(transform.NewReader(rc, charmap.ISO8859_9.NewDecoder()))
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", member.Name, err)
	}
	return string(decoded), nil
}

package present

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"memo-cli/internal/memo"
)

const ExportMIMEType = "application/octet-stream"

// Export is a downloadable copy of a memo body.
type Export struct {
	Name     string
	MIMEType string
	Data     []byte
}

// ExportActive packages the active memo's body verbatim as "{title}.md".
func ExportActive(snap memo.Snapshot) (Export, error) {
	active, ok := snap.Active()
	if !ok {
		return Export{}, errors.New("export: no active memo")
	}
	return Export{
		Name:     active.Title + ".md",
		MIMEType: ExportMIMEType,
		Data:     []byte(active.Body),
	}, nil
}

// SafeFileName maps an export name to a single path element.
func SafeFileName(name string) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', 0:
			return '_'
		}
		return r
	}, name)
	switch strings.TrimSpace(strings.TrimSuffix(name, ".md")) {
	case "", ".", "..":
		name = "untitled.md"
	}
	return name
}

// WriteExport writes e into dir and returns the path written.
func WriteExport(dir string, e Export) (string, error) {
	if strings.TrimSpace(dir) == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, SafeFileName(e.Name))
	if err := os.WriteFile(path, e.Data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

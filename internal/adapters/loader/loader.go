// Package loader reads local files into upload payloads.
package loader

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/ZhangYouJie-Major/AskIt/internal/domain/entities"
	"github.com/ZhangYouJie-Major/AskIt/internal/domain/ports"
)

// DefaultExtensions are the file types the AskIt server ingests.
var DefaultExtensions = []string{
	".pdf", ".doc", ".docx", ".ppt", ".pptx",
	".xls", ".xlsx", ".txt", ".md",
	".png", ".jpg", ".jpeg",
}

// FileLoader implements ports.FileLoader. It reads bytes as-is; the server
// decides whether a file is acceptable.
type FileLoader struct {
	extensions map[string]bool
}

var _ ports.FileLoader = (*FileLoader)(nil)

// NewFileLoader creates a loader. Empty extensions means DefaultExtensions.
func NewFileLoader(extensions []string) *FileLoader {
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	set := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		set[NormalizeExt(ext)] = true
	}
	return &FileLoader{extensions: set}
}

// Load reads the file at path. The payload name is the base name.
func (l *FileLoader) Load(ctx context.Context, path string) (*entities.UploadFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, errors.Wrapf(err, "stat %s", path)
	}
	if info.IsDir() {
		return nil, errors.Errorf("%s is a directory", path)
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}

	return &entities.UploadFile{
		Name: filepath.Base(path),
		Data: data,
	}, nil
}

// SupportedExtensions returns the accepted extensions, sorted.
func (l *FileLoader) SupportedExtensions() []string {
	exts := make([]string, 0, len(l.extensions))
	for ext := range l.extensions {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Supports reports whether path has an accepted extension.
func (l *FileLoader) Supports(path string) bool {
	return l.extensions[NormalizeExt(filepath.Ext(path))]
}

// Expand turns files and directories into a sorted list of files.
// Directories are walked recursively and filtered by extension; files named
// explicitly are always kept.
func (l *FileLoader) Expand(paths []string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, errors.Wrapf(err, "stat %s", path)
		}
		if !info.IsDir() {
			add(path)
			continue
		}

		err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && l.Supports(p) {
				add(p)
			}
			return nil
		})
		if err != nil {
			return nil, errors.Wrapf(err, "walking %s", path)
		}
	}

	sort.Strings(out)
	return out, nil
}

// NormalizeExt lowercases ext and adds the leading dot, so "PDF" and ".pdf"
// name the same extension.
func NormalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

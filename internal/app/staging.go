package app

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/clipnest-go/internal/domain"
)

// finalNameLayout is the timestamp layout used in final filenames
const finalNameLayout = "20060102_150405"

// Stager owns the shared download area. Final files are placed directly in
// it; scratch directories are created below it, one per request.
type Stager struct {
	dir string
	now func() time.Time
}

// NewStager creates a stager rooted at dir, creating the directory if needed
func NewStager(dir string) (*Stager, error) {
	if dir == "" {
		return nil, fmt.Errorf("download directory not configured")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve download directory: %w", err)
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return nil, fmt.Errorf("failed to create download directory: %w", err)
	}
	return &Stager{dir: abs, now: time.Now}, nil
}

// Dir returns the absolute path of the download area
func (s *Stager) Dir() string {
	return s.dir
}

// NewScratch creates a scratch directory keyed by the identifier. The random
// suffix keeps concurrent requests for the same identifier apart.
func (s *Stager) NewScratch(identifier string) (string, error) {
	name := fmt.Sprintf("%s-%s", identifier, shortToken())
	dir := filepath.Join(s.dir, name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", domain.IOFailure("failed to create scratch directory", err)
	}
	return dir, nil
}

// FinalName builds <platform>_<kind>_<identifier>_<YYYYMMDD_HHMMSS>.<ext>
func FinalName(ref domain.ContentReference, at time.Time) string {
	return fmt.Sprintf("%s_%s_%s_%s%s",
		ref.Platform, ref.ContentType.Kind(), ref.Identifier, at.Format(finalNameLayout), ref.ContentType.Extension())
}

// FinalPath returns the final filename and a request-unique path for it in
// the download area. The on-disk name carries a random token so requests for
// the same identifier within one second never share a file.
func (s *Stager) FinalPath(ref domain.ContentReference) (string, string) {
	name := FinalName(ref, s.now())
	ext := filepath.Ext(name)
	onDisk := fmt.Sprintf("%s-%s%s", strings.TrimSuffix(name, ext), shortToken(), ext)
	return name, filepath.Join(s.dir, onDisk)
}

// shortToken returns the first eight characters of a random UUID
func shortToken() string {
	return uuid.New().String()[:8]
}

// SelectOutput scans dir for the single extension expected for the content
// type and returns the first match in lexical order.
func SelectOutput(dir string, ext string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", domain.IOFailure("failed to read scratch directory", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ext) {
			names = append(names, entry.Name())
		}
	}

	if len(names) == 0 {
		kind := "Image"
		if ext == ".mp4" {
			kind = "Video"
		}
		return "", &domain.Error{
			Kind:    domain.KindExpectedFileNotFound,
			Message: fmt.Sprintf("%s file not found", kind),
			Err:     fmt.Errorf("no %s file in %s", ext, dir),
		}
	}

	sort.Strings(names)
	return filepath.Join(dir, names[0]), nil
}

// Promote moves src to dest, falling back to copy and delete when a rename
// is not possible
func Promote(src, dest string) error {
	if err := os.Rename(src, dest); err == nil {
		return nil
	}
	if err := copyFile(src, dest); err != nil {
		os.Remove(dest)
		return domain.IOFailure("failed to move staged file", err)
	}
	os.Remove(src)
	return nil
}

// copyFile copies a regular file
func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dest, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

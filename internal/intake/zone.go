// Package intake implements the file drop zone: it accepts one dropped or
// browsed file, enforces count, size and type, and decodes the accepted
// file into a preview.
package intake

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/shlex"
	"github.com/spf13/afero"

	"imagefinder/internal/domain"
)

// RejectionMessage is the fixed text shown under a rejected drop
const RejectionMessage = "The image must be smaller than 5MB and of type png, jpg, or jpeg"

// RejectionCode identifies why a dropped file was refused
type RejectionCode string

const (
	CodeTooManyFiles    RejectionCode = "too-many-files"
	CodeFileTooLarge    RejectionCode = "file-too-large"
	CodeFileInvalidType RejectionCode = "file-invalid-type"
	CodeFileNotFound    RejectionCode = "file-not-found"
)

var (
	// ErrNoFiles is returned when a drop carried no paths at all
	ErrNoFiles = errors.New("no files dropped")
	// ErrTooLarge is returned when a file grew past the limit after inspection
	ErrTooLarge = errors.New("file exceeds maximum size")
)

// FileRejection lists the codes raised for one dropped path
type FileRejection struct {
	Path  string
	Codes []RejectionCode
}

// Rejection is the reason a whole drop was refused
type Rejection struct {
	Files []FileRejection
}

func (r *Rejection) Error() string {
	parts := make([]string, 0, len(r.Files))
	for _, f := range r.Files {
		codes := make([]string, len(f.Codes))
		for i, c := range f.Codes {
			codes[i] = string(c)
		}
		parts = append(parts, fmt.Sprintf("%s: %s", f.Path, strings.Join(codes, ",")))
	}
	return "drop rejected: " + strings.Join(parts, "; ")
}

// Message returns the user-facing text for the rejection
func (r *Rejection) Message() string {
	return RejectionMessage
}

// Has reports whether any file carries code
func (r *Rejection) Has(code RejectionCode) bool {
	for _, f := range r.Files {
		for _, c := range f.Codes {
			if c == code {
				return true
			}
		}
	}
	return false
}

// Zone validates drops against its own constraints, independent of the form schema
type Zone struct {
	fs        afero.Fs
	maxFiles  int
	maxSize   int64
	thumbSize int
}

// Option configures a Zone
type Option func(*Zone)

// WithThumbnailSize sets the bounding box, in pixels, of preview thumbnails
func WithThumbnailSize(px int) Option {
	return func(z *Zone) {
		if px > 0 {
			z.thumbSize = px
		}
	}
}

// NewZone creates a drop zone reading files from fs
func NewZone(fs afero.Fs, opts ...Option) *Zone {
	z := &Zone{
		fs:        fs,
		maxFiles:  1,
		maxSize:   domain.MaxImageSize,
		thumbSize: 40,
	}
	for _, opt := range opts {
		opt(z)
	}
	return z
}

// ParseDrop turns pasted terminal text into file paths. Terminals paste
// dropped files as shell-escaped paths or file:// URIs, one or more per line.
func (z *Zone) ParseDrop(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	// Some terminals paste a single path with spaces unescaped
	if p := normalizePath(text); z.isFile(p) {
		return []string{p}
	}

	var paths []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		words, err := shlex.Split(line)
		if err != nil {
			words = []string{line}
		}
		for _, w := range words {
			if p := normalizePath(w); p != "" {
				paths = append(paths, p)
			}
		}
	}
	return paths
}

func normalizePath(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "file://") {
		if u, err := url.Parse(s); err == nil {
			s = u.Path
		}
	}
	if s == "~" || strings.HasPrefix(s, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			s = filepath.Join(home, strings.TrimPrefix(s, "~"))
		}
	}
	return s
}

func (z *Zone) isFile(path string) bool {
	info, err := z.fs.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// Inspect checks a drop and returns the accepted image. A refused drop
// returns a *Rejection and leaves nothing to apply.
func (z *Zone) Inspect(paths []string) (domain.ImageInput, error) {
	if len(paths) == 0 {
		return domain.ImageInput{}, ErrNoFiles
	}

	rejection := &Rejection{}
	var accepted domain.ImageInput
	for _, p := range paths {
		input, codes := z.check(p)
		if len(paths) > z.maxFiles {
			codes = append([]RejectionCode{CodeTooManyFiles}, codes...)
		}
		if len(codes) > 0 {
			rejection.Files = append(rejection.Files, FileRejection{Path: p, Codes: codes})
			continue
		}
		accepted = input
	}
	if len(rejection.Files) > 0 {
		return domain.ImageInput{}, rejection
	}
	return accepted, nil
}

func (z *Zone) check(path string) (domain.ImageInput, []RejectionCode) {
	info, err := z.fs.Stat(path)
	if err != nil {
		return domain.ImageInput{}, []RejectionCode{CodeFileNotFound}
	}
	if !info.Mode().IsRegular() {
		return domain.ImageInput{}, []RejectionCode{CodeFileInvalidType}
	}

	var codes []RejectionCode
	if info.Size() > z.maxSize {
		codes = append(codes, CodeFileTooLarge)
	}
	mime, err := z.sniff(path)
	if err != nil || !domain.IsAcceptedMime(mime) {
		codes = append(codes, CodeFileInvalidType)
	}
	if len(codes) > 0 {
		return domain.ImageInput{}, codes
	}

	return domain.ImageInput{
		Path:     path,
		Name:     filepath.Base(path),
		Size:     info.Size(),
		MimeType: mime,
	}, nil
}

func (z *Zone) sniff(path string) (string, error) {
	f, err := z.fs.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	m, err := mimetype.DetectReader(f)
	if err != nil {
		return "", err
	}
	return m.String(), nil
}

// Read loads an accepted image and decodes it into a preview. Any I/O or
// decode error means the file cannot be previewed and must be dropped.
func (z *Zone) Read(ctx context.Context, input domain.ImageInput) (*domain.Preview, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := afero.ReadFile(z.fs, input.Path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", input.Name, err)
	}
	if int64(len(data)) > z.maxSize {
		return nil, fmt.Errorf("reading %s: %w", input.Name, ErrTooLarge)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", input.Name, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b := img.Bounds()
	return &domain.Preview{
		DataURI:   "data:" + input.MimeType + ";base64," + base64.StdEncoding.EncodeToString(data),
		Thumbnail: imaging.Fit(img, z.thumbSize, z.thumbSize, imaging.Lanczos),
		Width:     b.Dx(),
		Height:    b.Dy(),
	}, nil
}

// Open streams the accepted file's bytes
func (z *Zone) Open(input domain.ImageInput) (io.ReadCloser, error) {
	f, err := z.fs.Open(input.Path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", input.Name, err)
	}
	return f, nil
}

// FormatSize formats a byte count in human-readable form
func FormatSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}

	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}

	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}

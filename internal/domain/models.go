package domain

import "image"

// Intake limits shared by the drop zone and the status line
const (
	MaxImageSize     int64 = 5_000_000
	DefaultNeighbors       = 5
	MaxNeighbors           = 20
)

// Accepted MIME types. image/jpg is not a registered type but browsers and
// some services still emit it, so it stays in the set.
const (
	MimePNG  = "image/png"
	MimeJPG  = "image/jpg"
	MimeJPEG = "image/jpeg"
)

// AcceptedMimeTypes lists the MIME types the drop zone accepts
var AcceptedMimeTypes = []string{MimePNG, MimeJPG, MimeJPEG}

// IsAcceptedMime reports whether mime is one of AcceptedMimeTypes
func IsAcceptedMime(mime string) bool {
	for _, m := range AcceptedMimeTypes {
		if m == mime {
			return true
		}
	}
	return false
}

// ImageInput is the single file currently held by the form.
// The zero value is the empty placeholder the schema rejects.
type ImageInput struct {
	Path     string // location in the intake filesystem
	Name     string // base name sent as the multipart filename
	Size     int64  // bytes
	MimeType string
}

// IsEmpty reports whether no real file is held
func (i ImageInput) IsEmpty() bool {
	return i.Size == 0
}

// Preview is a displayable, non-authoritative encoding of an ImageInput
type Preview struct {
	DataURI   string      // data:<mime>;base64,<bytes>
	Thumbnail image.Image // downscaled copy for terminal rendering
	Width     int         // original pixel width
	Height    int         // original pixel height
}

// RetrievedImage is one ranked entry returned by the search service
type RetrievedImage struct {
	Source string `json:"source"`
	Label  string `json:"label"`
}

// SubmissionStatus tracks whether a search request is in flight
type SubmissionStatus int

const (
	StatusIdle SubmissionStatus = iota
	StatusSubmitting
)

func (s SubmissionStatus) String() string {
	switch s {
	case StatusSubmitting:
		return "submitting"
	default:
		return "idle"
	}
}

// Field names a form field that can carry a validation error
type Field string

const (
	FieldImage     Field = "image"
	FieldNeighbors Field = "neighbors"
)

// FieldErrors maps a field to its first failing rule message
type FieldErrors map[Field]string

// OK reports whether no field failed
func (e FieldErrors) OK() bool {
	return len(e) == 0
}

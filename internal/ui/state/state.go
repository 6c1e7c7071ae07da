package state

import (
	"strconv"

	"imagefinder/internal/domain"
	"imagefinder/internal/intake"
	"imagefinder/internal/validation"
)

// Severity of a notification
type Severity int

const (
	SeveritySuccess Severity = iota
	SeverityError
)

// Notice is a transient notification shown to the user
type Notice struct {
	Severity Severity
	Text     string
	ID       int // increments per notice so stale dismiss timers can be ignored
}

// Submission is a validated request snapshot handed to the search pipeline
type Submission struct {
	ID        int
	Image     domain.ImageInput
	Neighbors int
}

// FormState is the single source of truth for the widget
type FormState struct {
	// Field values
	Image     domain.ImageInput
	Neighbors string // raw text, coerced on validation

	// Derived from intake
	Preview    *domain.Preview
	Rejection  *intake.Rejection
	Generation uint64 // bumps per accepted drop; stale decode results are ignored

	// Validation
	Errors domain.FieldErrors

	// Submission
	Status       domain.SubmissionStatus
	SubmissionID int // id of the request in flight, or of the last one
	Results      []domain.RetrievedImage

	Notice   *Notice
	noticeID int
}

// NewFormState creates the initial state
func NewFormState(defaultNeighbors int) *FormState {
	if defaultNeighbors <= 0 {
		defaultNeighbors = domain.DefaultNeighbors
	}
	return &FormState{
		Neighbors: strconv.Itoa(defaultNeighbors),
		Errors:    domain.FieldErrors{},
	}
}

// SetImage replaces the held image with a newly accepted drop. The previous
// file and its preview are discarded and a new generation is returned for
// the pending decode.
func (s *FormState) SetImage(input domain.ImageInput) uint64 {
	s.Image = input
	s.Preview = nil
	s.Rejection = nil
	delete(s.Errors, domain.FieldImage)
	s.Generation++
	return s.Generation
}

// PreviewReady applies a finished decode. Returns false if gen is stale.
func (s *FormState) PreviewReady(gen uint64, preview *domain.Preview) bool {
	if gen != s.Generation {
		return false
	}
	s.Preview = preview
	delete(s.Errors, domain.FieldImage)
	return true
}

// PreviewFailed resets the image field after a decode failure. Returns false if gen is stale.
func (s *FormState) PreviewFailed(gen uint64) bool {
	if gen != s.Generation {
		return false
	}
	s.Preview = nil
	s.Image = domain.ImageInput{}
	return true
}

// Reject records a refused drop without touching the image or preview
func (s *FormState) Reject(r *intake.Rejection) {
	s.Rejection = r
}

// SetNeighbors updates the raw neighbor text without validating it
func (s *FormState) SetNeighbors(raw string) {
	s.Neighbors = raw
}

// Blur recomputes the error for a field that lost focus
func (s *FormState) Blur(field domain.Field) {
	var msg string
	switch field {
	case domain.FieldImage:
		msg = validation.ValidateImage(s.Image)
	case domain.FieldNeighbors:
		msg = validation.ValidateNeighbors(s.Neighbors)
	default:
		return
	}
	s.setError(field, msg)
}

func (s *FormState) setError(field domain.Field, msg string) {
	if msg == "" {
		delete(s.Errors, field)
		return
	}
	s.Errors[field] = msg
}

// Validate runs the full schema and stores the result
func (s *FormState) Validate() domain.FieldErrors {
	s.Errors = validation.Validate(s.Image, s.Neighbors)
	return s.Errors
}

// IsSubmitting reports whether a request is in flight
func (s *FormState) IsSubmitting() bool {
	return s.Status == domain.StatusSubmitting
}

// BeginSubmit validates and moves to Submitting. It returns false while a
// request is already in flight or when validation fails.
func (s *FormState) BeginSubmit() (Submission, bool) {
	if s.IsSubmitting() {
		return Submission{}, false
	}
	if !s.Validate().OK() {
		return Submission{}, false
	}
	neighbors, _ := validation.ParseNeighbors(s.Neighbors)

	s.Status = domain.StatusSubmitting
	s.SubmissionID++
	return Submission{
		ID:        s.SubmissionID,
		Image:     s.Image,
		Neighbors: neighbors,
	}, true
}

// CompleteSubmit replaces the results with a successful response.
// Returns false if id is not the request in flight.
func (s *FormState) CompleteSubmit(id int, results []domain.RetrievedImage) bool {
	if !s.inFlight(id) {
		return false
	}
	s.Status = domain.StatusIdle
	s.Results = results
	return true
}

// FailSubmit ends a failed request. Results from earlier searches stay.
// Returns false if id is not the request in flight.
func (s *FormState) FailSubmit(id int) bool {
	if !s.inFlight(id) {
		return false
	}
	s.Status = domain.StatusIdle
	return true
}

// CancelSubmit abandons the request in flight
func (s *FormState) CancelSubmit() bool {
	if !s.IsSubmitting() {
		return false
	}
	s.Status = domain.StatusIdle
	return true
}

func (s *FormState) inFlight(id int) bool {
	return s.IsSubmitting() && id == s.SubmissionID
}

// Notify replaces the current notice and returns its id
func (s *FormState) Notify(sev Severity, text string) int {
	s.noticeID++
	s.Notice = &Notice{Severity: sev, Text: text, ID: s.noticeID}
	return s.noticeID
}

// DismissNotice clears the notice if it is still the one with id
func (s *FormState) DismissNotice(id int) {
	if s.Notice != nil && s.Notice.ID == id {
		s.Notice = nil
	}
}

// Reset discards all state, as when the widget goes away
func (s *FormState) Reset(defaultNeighbors int) {
	gen, sub := s.Generation, s.SubmissionID
	*s = *NewFormState(defaultNeighbors)
	// keep counters moving so in-flight completions stay stale
	s.Generation = gen + 1
	s.SubmissionID = sub + 1
}

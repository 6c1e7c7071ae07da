// Package validation holds the acceptance rules for the two form inputs.
// File type and size rules belong to the intake zone and are not repeated
// here, so each underlying problem has exactly one message.
package validation

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"imagefinder/internal/domain"
)

// User-facing messages
const (
	MsgImageRequired     = "Please upload an image"
	MsgNeighborsNumeric  = "only numbers may be entered"
	MsgNeighborsInteger  = "Expected integer, received float"
	MsgNeighborsPositive = "you must retrieve at least one image"
	MsgNeighborsMax      = "only up to 20 images may be retrieved"
)

// input is the coerced candidate the struct rules run against
type input struct {
	ImageSize int64   `validate:"gt=0"`
	Neighbors float64 `validate:"gt=0,lte=20"`
}

// messages maps struct field + failing tag to the fixed message
var messages = map[string]map[string]string{
	"ImageSize": {"gt": MsgImageRequired},
	"Neighbors": {"gt": MsgNeighborsPositive, "lte": MsgNeighborsMax},
}

var validate = validator.New()

// Validate checks both fields and returns the first failing rule per field
func Validate(image domain.ImageInput, neighbors string) domain.FieldErrors {
	errs := domain.FieldErrors{}
	if msg := ValidateImage(image); msg != "" {
		errs[domain.FieldImage] = msg
	}
	if msg := ValidateNeighbors(neighbors); msg != "" {
		errs[domain.FieldNeighbors] = msg
	}
	return errs
}

// ValidateImage returns the image field's error message, or "" when accepted
func ValidateImage(image domain.ImageInput) string {
	return check("ImageSize", input{ImageSize: image.Size})
}

// ValidateNeighbors returns the neighbors field's error message, or "" when accepted
func ValidateNeighbors(raw string) string {
	_, msg := ParseNeighbors(raw)
	return msg
}

// ParseNeighbors coerces raw text to a neighbor count. Blank text coerces
// to zero and therefore fails the positivity rule rather than the numeric one.
func ParseNeighbors(raw string) (int, string) {
	n, msg := coerce(raw)
	if msg != "" {
		return 0, msg
	}
	if msg := check("Neighbors", input{Neighbors: n}); msg != "" {
		return 0, msg
	}
	return int(n), ""
}

func coerce(raw string) (float64, string) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, ""
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, MsgNeighborsNumeric
	}
	if math.IsNaN(n) {
		return 0, MsgNeighborsNumeric
	}
	if math.IsInf(n, 0) || n != math.Trunc(n) {
		return 0, MsgNeighborsInteger
	}
	return n, ""
}

// check validates only the named struct field and maps the failure
func check(field string, in input) string {
	err := validate.StructPartial(in, field)
	if err == nil {
		return ""
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}
	fe := verrs[0]
	if msg, ok := messages[fe.StructField()][fe.Tag()]; ok {
		return msg
	}
	return fe.Error()
}

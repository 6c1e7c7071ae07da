package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"imagefinder/internal/domain"
	"imagefinder/internal/intake"
	"imagefinder/internal/ui/state"
)

// Fixed user-facing text
const (
	Heading        = "Upload an image"
	ZoneHint       = "Click here or drag an image to upload it"
	ZoneLoading    = "Loading preview..."
	NeighborsLabel = "Number of images to retrieve"
	SearchLabel    = "Search"
	SearchingLabel = "Searching..."
)

// Focus identifies the focused control
type Focus int

const (
	FocusZone Focus = iota
	FocusNeighbors
	FocusSubmit
	focusCount
)

// Next returns the control after f, wrapping around
func (f Focus) Next() Focus {
	return (f + 1) % focusCount
}

// Prev returns the control before f, wrapping around
func (f Focus) Prev() Focus {
	return (f + focusCount - 1) % focusCount
}

// Field maps a focusable control to the form field it edits
func (f Focus) Field() (domain.Field, bool) {
	switch f {
	case FocusZone:
		return domain.FieldImage, true
	case FocusNeighbors:
		return domain.FieldNeighbors, true
	}
	return "", false
}

// ViewState contains everything Render needs
type ViewState struct {
	Form          *state.FormState
	Focus         Focus
	NeighborsView string // rendered text input
	Help          string
	Width         int
	Height        int
}

// Renderer handles rendering the form
type Renderer struct {
	styles *Styles
}

// NewRenderer creates a new renderer
func NewRenderer(styles *Styles) *Renderer {
	return &Renderer{styles: styles}
}

// Styles returns the styles in use
func (r *Renderer) Styles() *Styles {
	return r.styles
}

// Render renders the whole form
func (r *Renderer) Render(vs ViewState) string {
	s := r.styles
	form := vs.Form

	sections := []string{s.Title.Render(Heading)}
	if notice := r.renderNotice(form.Notice); notice != "" {
		sections = append(sections, notice)
	}
	sections = append(sections,
		r.renderZone(vs),
		r.renderNeighbors(vs),
		r.renderButton(vs),
	)
	if results := RenderResults(form.Results, s); results != "" {
		sections = append(sections, results)
	}
	if vs.Help != "" {
		sections = append(sections, s.Help.Render(vs.Help))
	}

	return s.Main.Render(strings.Join(sections, "\n\n"))
}

func (r *Renderer) renderNotice(n *state.Notice) string {
	if n == nil {
		return ""
	}
	if n.Severity == state.SeverityError {
		return r.styles.NoticeError.Render("✗ " + n.Text)
	}
	return r.styles.NoticeSuccess.Render("✓ " + n.Text)
}

func (r *Renderer) renderZone(vs ViewState) string {
	s := r.styles
	form := vs.Form
	imageErr := form.Errors[domain.FieldImage]
	destructive := form.Rejection != nil || imageErr != ""

	var body []string
	switch {
	case form.Preview != nil:
		body = append(body,
			RenderThumbnail(form.Preview.Thumbnail),
			fmt.Sprintf("%s  %s  %dx%d",
				form.Image.Name,
				intake.FormatSize(form.Image.Size),
				form.Preview.Width, form.Preview.Height),
		)
	case !form.Image.IsEmpty():
		body = append(body, s.Dim.Render(ZoneLoading), form.Image.Name)
	}
	body = append(body, s.Hint.Render(ZoneHint))

	zone := s.Zone
	switch {
	case destructive:
		zone = s.ZoneRejected
	case vs.Focus == FocusZone:
		zone = s.ZoneFocused
	}
	if vs.Width > 8 {
		zone = zone.Width(min(vs.Width-8, 72))
	}

	lines := []string{zone.Render(lipgloss.JoinVertical(lipgloss.Center, body...))}
	if form.Rejection != nil {
		lines = append(lines, s.FieldError.Render(form.Rejection.Message()))
	}
	if imageErr != "" {
		lines = append(lines, s.FieldError.Render(imageErr))
	}
	return strings.Join(lines, "\n")
}

func (r *Renderer) renderNeighbors(vs ViewState) string {
	s := r.styles
	errMsg := vs.Form.Errors[domain.FieldNeighbors]

	label := s.Label
	input := s.Input
	switch {
	case errMsg != "":
		label = s.LabelError
		input = s.InputError
	case vs.Focus == FocusNeighbors:
		input = s.InputFocused
	}

	lines := []string{label.Render(NeighborsLabel), input.Render(vs.NeighborsView)}
	if errMsg != "" {
		lines = append(lines, s.FieldError.Render(errMsg))
	}
	return strings.Join(lines, "\n")
}

func (r *Renderer) renderButton(vs ViewState) string {
	s := r.styles
	if vs.Form.IsSubmitting() {
		return s.ButtonDisabled.Render(SearchingLabel) + "  " + s.Dim.Render("esc to cancel")
	}
	if vs.Focus == FocusSubmit {
		return s.ButtonFocused.Render(SearchLabel)
	}
	return s.Button.Render(SearchLabel)
}

// RenderPicker renders the file picker in place of the form
func (r *Renderer) RenderPicker(picker string, help string) string {
	s := r.styles
	sections := []string{
		s.Title.Render(Heading),
		s.Hint.Render("Choose a png, jpg, or jpeg file"),
		picker,
	}
	if help != "" {
		sections = append(sections, s.Help.Render(help))
	}
	return s.Main.Render(strings.Join(sections, "\n\n"))
}

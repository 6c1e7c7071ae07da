package views

import (
	"github.com/charmbracelet/lipgloss"
)

// Styles contains all the style definitions for the UI
type Styles struct {
	Title          lipgloss.Style
	Label          lipgloss.Style
	LabelError     lipgloss.Style
	Zone           lipgloss.Style
	ZoneFocused    lipgloss.Style
	ZoneRejected   lipgloss.Style
	Hint           lipgloss.Style
	Dim            lipgloss.Style
	FieldError     lipgloss.Style
	Input          lipgloss.Style
	InputFocused   lipgloss.Style
	InputError     lipgloss.Style
	Button         lipgloss.Style
	ButtonFocused  lipgloss.Style
	ButtonDisabled lipgloss.Style
	ResultsHeading lipgloss.Style
	ResultLabel    lipgloss.Style
	ResultSource   lipgloss.Style
	NoticeSuccess  lipgloss.Style
	NoticeError    lipgloss.Style
	Help           lipgloss.Style
	Main           lipgloss.Style
}

// NewStyles creates a new Styles instance with default values
func NewStyles() *Styles {
	zone := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("241")).
		Padding(1, 4).
		Align(lipgloss.Center)

	input := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("241")).
		Padding(0, 1)

	button := lipgloss.NewStyle().
		Padding(0, 3).
		Bold(true).
		Foreground(lipgloss.Color("230")).
		Background(lipgloss.Color("62"))

	return &Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99")).
			MarginBottom(1),
		Label:          lipgloss.NewStyle().Bold(true),
		LabelError:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		Zone:           zone,
		ZoneFocused:    zone.BorderForeground(lipgloss.Color("99")),
		ZoneRejected:   zone.BorderForeground(lipgloss.Color("203")),
		Hint:           lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		Dim:            lipgloss.NewStyle().Faint(true),
		FieldError:     lipgloss.NewStyle().Foreground(lipgloss.Color("203")), // red
		Input:          input,
		InputFocused:   input.BorderForeground(lipgloss.Color("99")),
		InputError:     input.BorderForeground(lipgloss.Color("203")),
		Button:         button,
		ButtonFocused:  button.Background(lipgloss.Color("99")).Underline(true),
		ButtonDisabled: button.Background(lipgloss.Color("238")).Foreground(lipgloss.Color("245")),
		ResultsHeading: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99")).MarginTop(1),
		ResultLabel:    lipgloss.NewStyle().Foreground(lipgloss.Color("220")),
		ResultSource:   lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true),
		NoticeSuccess:  lipgloss.NewStyle().Foreground(lipgloss.Color("78")),  // green
		NoticeError:    lipgloss.NewStyle().Foreground(lipgloss.Color("203")), // red
		Help:           lipgloss.NewStyle().Faint(true),
		Main: lipgloss.NewStyle().
			Padding(1, 2),
	}
}

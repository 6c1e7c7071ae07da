package ui

import "imagefinder/internal/domain"

// dropMsg carries paths dropped before the program started
type dropMsg struct {
	paths []string
}

// previewMsg contains the result of decoding an accepted drop
type previewMsg struct {
	gen     uint64
	preview *domain.Preview
	err     error
}

// searchDoneMsg contains the result of a search request
type searchDoneMsg struct {
	id        int
	requestID string
	images    []domain.RetrievedImage
	err       error
}

// dismissNoticeMsg clears the notice with the given id
type dismissNoticeMsg struct {
	id int
}

// resultsPagerMsg contains the result of the results pager command
type resultsPagerMsg struct {
	err error
}

// pauseRenderingMsg signals to pause Bubble Tea rendering
type pauseRenderingMsg struct{}

// resumeRenderingMsg signals to resume Bubble Tea rendering
type resumeRenderingMsg struct{}

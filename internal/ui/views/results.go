package views

import (
	"fmt"
	"strings"

	"imagefinder/internal/domain"
)

// ResultsHeading is shown above a non-empty result list
const ResultsHeading = "Results"

// RenderResults renders the ranked images in service order, 1-indexed.
// An empty list renders nothing.
func RenderResults(results []domain.RetrievedImage, styles *Styles) string {
	if len(results) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(styles.ResultsHeading.Render(ResultsHeading))
	for i, img := range results {
		b.WriteString("\n")
		b.WriteString(styles.ResultLabel.Render(fmt.Sprintf("%d. %s", i+1, img.Label)))
		b.WriteString("\n   ")
		b.WriteString(styles.ResultSource.Render(img.Source))
	}
	return b.String()
}

package views

import (
	"fmt"
	"image"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// RenderThumbnail draws an image with upper half blocks: each cell shows
// two vertical pixels, the top one as foreground and the bottom one as background.
func RenderThumbnail(img image.Image) string {
	if img == nil {
		return ""
	}
	b := img.Bounds()
	var out strings.Builder
	for y := b.Min.Y; y < b.Max.Y; y += 2 {
		if y > b.Min.Y {
			out.WriteString("\n")
		}
		for x := b.Min.X; x < b.Max.X; x++ {
			top := hexColor(img, x, y)
			cell := lipgloss.NewStyle().Foreground(lipgloss.Color(top))
			if y+1 < b.Max.Y {
				cell = cell.Background(lipgloss.Color(hexColor(img, x, y+1)))
			}
			out.WriteString(cell.Render("▀"))
		}
	}
	return out.String()
}

func hexColor(img image.Image, x, y int) string {
	r, g, b, _ := img.At(x, y).RGBA()
	return fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8)
}

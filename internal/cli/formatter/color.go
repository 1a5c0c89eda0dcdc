package formatter

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"tandem/internal/notify"
	"tandem/internal/task"
)

// Gruvbox-inspired color palette.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
)

var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue   = lipgloss.NewStyle().Foreground(ColorBlue)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleFg     = lipgloss.NewStyle().Foreground(ColorFg)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold   = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
	StyleDone   = lipgloss.NewStyle().Foreground(ColorDim).Strikethrough(true)
)

// PriorityStyle colors a priority badge.
func PriorityStyle(p task.Priority) lipgloss.Style {
	switch p {
	case task.High:
		return StyleRed
	case task.Low:
		return StyleBlue
	default:
		return StyleYellow
	}
}

// PriorityBadge returns a colored label such as "● high".
func PriorityBadge(p task.Priority) string {
	return PriorityStyle(p).Render("● " + string(p))
}

func KindStyle(k notify.Kind) lipgloss.Style {
	switch k {
	case notify.Success:
		return StyleGreen
	case notify.Warning:
		return StyleYellow
	case notify.Danger:
		return StyleRed
	default:
		return StyleBlue
	}
}

// Header renders a section header with an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", len([]rune(upper)))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

func Dim(text string) string {
	return StyleDim.Render(text)
}

func Bold(text string) string {
	return StyleBold.Render(text)
}

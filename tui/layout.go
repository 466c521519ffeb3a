package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/reflow/truncate"
)

const (
	overlayPanelWidth  = 44
	overlayPanelHeight = 16
	minCanvasWidth     = 40
	minCanvasHeight    = 10
	tabBarHeight       = 1
	statusBarHeight    = 1
	borderSize         = 2
)

type viewTab int

const (
	tabPlot viewTab = iota
	tabComparisons
	tabClusters
)

var tabNames = []struct {
	name string
	tab  viewTab
}{
	{"Plot", tabPlot},
	{"Comparisons", tabComparisons},
	{"Clusters", tabClusters},
}

type layoutDimensions struct {
	totalWidth   int
	totalHeight  int
	canvasWidth  int
	canvasHeight int
}

func (m Model) calculateLayout() layoutDimensions {
	marginX := 2
	marginY := 2

	totalWidth := m.width - marginX
	totalHeight := m.height - marginY

	canvasHeight := totalHeight - tabBarHeight - statusBarHeight
	if m.err != nil {
		canvasHeight--
	}
	if canvasHeight < minCanvasHeight {
		canvasHeight = minCanvasHeight
	}

	canvasWidth := totalWidth
	if canvasWidth < minCanvasWidth {
		canvasWidth = minCanvasWidth
	}

	return layoutDimensions{
		totalWidth:   totalWidth,
		totalHeight:  totalHeight,
		canvasWidth:  canvasWidth,
		canvasHeight: canvasHeight,
	}
}

type styles struct {
	title       lipgloss.Style
	canvas      lipgloss.Style
	overlay     lipgloss.Style
	header      lipgloss.Style
	label       lipgloss.Style
	value       lipgloss.Style
	tabActive   lipgloss.Style
	tabInactive lipgloss.Style
	tabBar      lipgloss.Style
	statusBar   lipgloss.Style
	errorText   lipgloss.Style
}

func newStyles() styles {
	accentColor := lipgloss.Color("#FF87D7")
	borderColor := lipgloss.Color("#5F5FAF")
	canvasBorderColor := lipgloss.Color("#FF8700")
	dimColor := lipgloss.Color("#6C6C6C")
	bgColor := lipgloss.Color("#303030")

	return styles{
		title: lipgloss.NewStyle().
			Bold(true).
			Foreground(accentColor),

		canvas: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(canvasBorderColor),

		overlay: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(borderColor).
			Background(bgColor).
			Padding(0, 1),

		header: lipgloss.NewStyle().Bold(true).Foreground(accentColor),
		label:  lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		value:  lipgloss.NewStyle().Foreground(lipgloss.Color("255")),

		tabActive: lipgloss.NewStyle().
			Bold(true).
			Foreground(accentColor).
			Padding(0, 1),

		tabInactive: lipgloss.NewStyle().
			Foreground(dimColor).
			Padding(0, 1),

		tabBar: lipgloss.NewStyle().
			Foreground(dimColor),

		statusBar: lipgloss.NewStyle().
			Foreground(dimColor),

		errorText: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")),
	}
}

func (m Model) renderTabBar(s styles, width int) string {
	var parts []string
	for _, t := range tabNames {
		style := s.tabInactive
		if t.tab == m.activeTab {
			style = s.tabActive
		}
		parts = append(parts, style.Render(t.name))
	}

	tabRow := strings.Join(parts, s.tabBar.Render(" │ "))
	title := s.title.Render(m.title)

	gap := width - lipgloss.Width(tabRow) - lipgloss.Width(title)
	if gap < 1 {
		gap = 1
	}

	return tabRow + strings.Repeat(" ", gap) + title
}

func (m Model) renderPlotTab(s styles, layout layoutDimensions) string {
	canvasInnerWidth := layout.canvasWidth - borderSize
	canvasInnerHeight := layout.canvasHeight - borderSize

	canvasBox := s.canvas.
		Width(canvasInnerWidth).
		Height(canvasInnerHeight).
		Render(m.renderCanvas(canvasInnerWidth, canvasInnerHeight))

	if m.showMetadata && m.hasSelection() {
		canvasBox = m.overlayMetadataPanel(canvasBox, s, layout)
	}
	return canvasBox
}

func (m Model) overlayMetadataPanel(base string, s styles, layout layoutDimensions) string {
	panelInnerWidth := overlayPanelWidth - 4
	panelInnerHeight := overlayPanelHeight

	if panelInnerHeight > layout.canvasHeight-4 {
		panelInnerHeight = layout.canvasHeight - 4
	}

	panel := s.overlay.
		Width(panelInnerWidth).
		Height(panelInnerHeight).
		Render(m.renderMetadata(s, panelInnerWidth, panelInnerHeight))

	return overlayAt(base, panel, layout.canvasWidth-overlayPanelWidth-1, 1)
}

func overlayAt(base, overlay string, x, y int) string {
	bgLines, bgWidth := getLines(base)
	fgLines, fgWidth := getLines(overlay)
	bgHeight := len(bgLines)
	fgHeight := len(fgLines)

	if fgWidth >= bgWidth && fgHeight >= bgHeight {
		return overlay
	}

	if x > bgWidth-fgWidth {
		x = bgWidth - fgWidth
	}
	if y > bgHeight-fgHeight {
		y = bgHeight - fgHeight
	}
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}

	var b strings.Builder
	for i, bgLine := range bgLines {
		if i > 0 {
			b.WriteByte('\n')
		}
		if i < y || i >= y+fgHeight {
			b.WriteString(bgLine)
			continue
		}

		pos := 0
		if x > 0 {
			left := truncate.String(bgLine, uint(x))
			pos = ansi.StringWidth(left)
			b.WriteString(left)
			if pos < x {
				b.WriteString(strings.Repeat(" ", x-pos))
				pos = x
			}
		}

		fgLine := fgLines[i-y]
		b.WriteString(fgLine)
		pos += ansi.StringWidth(fgLine)

		right := ansi.TruncateLeft(bgLine, pos, "")
		lineWidth := ansi.StringWidth(bgLine)
		rightWidth := ansi.StringWidth(right)
		if rightWidth <= lineWidth-pos {
			b.WriteString(strings.Repeat(" ", lineWidth-rightWidth-pos))
		}
		b.WriteString(right)
	}

	return b.String()
}

func getLines(s string) ([]string, int) {
	lines := strings.Split(s, "\n")
	widest := 0
	for _, l := range lines {
		if w := ansi.StringWidth(l); widest < w {
			widest = w
		}
	}
	return lines, widest
}

// fit shortens text to width display cells, marking the cut with an ellipsis.
func fit(text string, width int) string {
	if width <= 0 {
		return ""
	}
	if ansi.StringWidth(text) <= width {
		return text
	}
	if width <= 3 {
		return truncate.String(text, uint(width))
	}
	return truncate.StringWithTail(text, uint(width), "...")
}

func (m Model) statusSummary() string {
	switch {
	case m.running && m.progress != nil:
		return fmt.Sprintf("t-SNE %d/%d cost %.4f", m.progress.Iteration, m.progress.MaxIterations, m.progress.Cost)
	case m.running:
		return "analyzing..."
	case m.result != nil:
		summary := fmt.Sprintf("%s %dD %s", m.result.Method, m.result.Dimensions, m.result.Layout)
		if m.result.PerplexityClamped {
			summary += fmt.Sprintf(" perplexity %.0f", m.result.EffectivePerplexity)
		}
		return summary
	default:
		return ""
	}
}

func (m Model) renderStatusBar(s styles, width int) string {
	var help string
	switch m.activeTab {
	case tabPlot:
		help = "↑↓: select │ /: info │ F: focus │ 1-3: tabs │ q: quit"
	case tabComparisons:
		help = "↑↓: scroll │ 1-3: tabs │ q: quit"
	default:
		help = "1-3: tabs │ q: quit"
	}

	right := m.statusSummary()
	if m.version != "" {
		right += "  " + m.version
	}

	padding := width - lipgloss.Width(help) - lipgloss.Width(right)
	if padding < 1 {
		padding = 1
	}

	return s.statusBar.Render(help + strings.Repeat(" ", padding) + right)
}

func (m Model) renderError(s styles) string {
	if m.err == nil {
		return ""
	}
	return s.errorText.Render("Error: " + m.err.Error())
}

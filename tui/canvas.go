package tui

import (
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	maxNeighbors   = 5
	maxPlotLabel   = 12
	canvasPadding  = 2
	emptyPlotLabel = "Waiting for the first layout..."
)

// clusterColors is indexed by quadrant cluster position.
var clusterColors = []lipgloss.Color{"#5FAFFF", "#87D787", "#D7AF5F", "#AF87D7", "#D75F87"}

type canvasCell struct {
	char  rune
	style lipgloss.Style
}

type canvasStyles struct {
	selectedDot   lipgloss.Style
	selectedLabel lipgloss.Style
	line          lipgloss.Style
	neighborDot   lipgloss.Style
	neighborLabel lipgloss.Style
	clusters      []lipgloss.Style
	unclustered   lipgloss.Style
}

func newCanvasStyles() canvasStyles {
	clusterStyles := make([]lipgloss.Style, len(clusterColors))
	for i, color := range clusterColors {
		clusterStyles[i] = lipgloss.NewStyle().Foreground(color)
	}
	return canvasStyles{
		selectedDot:   lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true),
		selectedLabel: lipgloss.NewStyle().Foreground(lipgloss.Color("118")).Bold(true),
		line:          lipgloss.NewStyle().Foreground(lipgloss.Color("117")),
		neighborDot:   lipgloss.NewStyle().Foreground(lipgloss.Color("213")).Bold(true),
		neighborLabel: lipgloss.NewStyle().Foreground(lipgloss.Color("228")).Bold(true),
		clusters:      clusterStyles,
		unclustered:   lipgloss.NewStyle().Foreground(lipgloss.Color("239")),
	}
}

func (s canvasStyles) forCluster(cluster int) lipgloss.Style {
	if cluster < 0 {
		return s.unclustered
	}
	return s.clusters[cluster%len(s.clusters)]
}

type gridPoint struct {
	row, column int
	index       int
	label       string
	cluster     int
	selected    bool
}

// renderCanvas plots the first two coordinates of every point, scaled to fill the canvas.
func (m Model) renderCanvas(width, height int) string {
	grid := make([][]canvasCell, height)
	for row := range grid {
		grid[row] = make([]canvasCell, width)
		for column := range grid[row] {
			grid[row][column] = canvasCell{char: ' ', style: lipgloss.NewStyle()}
		}
	}

	if len(m.points) == 0 {
		writeCentered(grid, emptyPlotLabel)
	} else {
		m.plotPoints(grid, width, height, newCanvasStyles())
	}

	var b strings.Builder
	for row, cells := range grid {
		for _, cell := range cells {
			b.WriteString(cell.style.Render(string(cell.char)))
		}
		if row < len(grid)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func writeCentered(grid [][]canvasCell, message string) {
	if len(grid) == 0 {
		return
	}
	row := len(grid) / 2
	start := (len(grid[row]) - len([]rune(message))) / 2
	if start < 0 {
		start = 0
	}
	for offset, char := range []rune(message) {
		if start+offset < len(grid[row]) {
			grid[row][start+offset] = canvasCell{char: char, style: lipgloss.NewStyle()}
		}
	}
}

func (m Model) plotPoints(grid [][]canvasCell, width, height int, styles canvasStyles) {
	points := m.gridPoints(width, height)

	neighbors := make(map[int]bool)
	var selected *gridPoint
	for i := range points {
		if points[i].selected {
			selected = &points[i]
			for _, n := range m.nearestNeighbors(points[i].index, maxNeighbors) {
				neighbors[n.index] = true
			}
			break
		}
	}

	if selected != nil {
		for _, target := range points {
			if neighbors[target.index] {
				drawLine(grid, selected.column, selected.row, target.column, target.row, styles.line)
			}
		}
	}

	priority := func(p gridPoint) int {
		switch {
		case p.selected:
			return 2
		case neighbors[p.index]:
			return 1
		default:
			return 0
		}
	}
	sort.SliceStable(points, func(i, j int) bool {
		return priority(points[i]) < priority(points[j])
	})

	for _, p := range points {
		if m.focusMode && selected != nil && !p.selected && !neighbors[p.index] {
			continue
		}

		marker, markerStyle, labelStyle := "○", styles.forCluster(p.cluster), styles.forCluster(p.cluster)
		markerStart := p.column
		switch {
		case p.selected:
			marker, markerStyle, labelStyle = "[*]", styles.selectedDot, styles.selectedLabel
			if markerStart > 0 {
				markerStart--
			}
		case neighbors[p.index]:
			marker, markerStyle, labelStyle = "◆", styles.neighborDot, styles.neighborLabel
		}

		markerRunes := []rune(marker)
		for offset, char := range markerRunes {
			if markerStart+offset < width {
				grid[p.row][markerStart+offset] = canvasCell{char: char, style: markerStyle}
			}
		}

		labelStart := markerStart + len(markerRunes) + 1
		label := []rune(p.label)
		if len(label) > maxPlotLabel {
			label = label[:maxPlotLabel]
		}
		for offset, char := range label {
			if labelStart+offset < width {
				grid[p.row][labelStart+offset] = canvasCell{char: char, style: labelStyle}
			}
		}
	}
}

// gridPoints maps layout coordinates onto canvas cells. The y axis is flipped so larger
// values are drawn higher up, matching the quadrant names.
func (m Model) gridPoints(width, height int) []gridPoint {
	minX, maxX := m.points[0].Coords[0], m.points[0].Coords[0]
	minY, maxY := m.points[0].Coords[1], m.points[0].Coords[1]
	for _, p := range m.points {
		minX, maxX = min(minX, p.Coords[0]), max(maxX, p.Coords[0])
		minY, maxY = min(minY, p.Coords[1]), max(maxY, p.Coords[1])
	}

	rangeX, rangeY := maxX-minX, maxY-minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}

	plotWidth := max(width-2*canvasPadding, 1)
	plotHeight := max(height-2*canvasPadding, 1)

	points := make([]gridPoint, len(m.points))
	for i, p := range m.points {
		column := canvasPadding + int((p.Coords[0]-minX)/rangeX*float64(plotWidth-1))
		row := canvasPadding + int((maxY-p.Coords[1])/rangeY*float64(plotHeight-1))

		cluster := -1
		if i < len(m.clusterOf) {
			cluster = m.clusterOf[i]
		}
		points[i] = gridPoint{
			row:      clamp(row, 0, height-1),
			column:   clamp(column, 0, width-1),
			index:    i,
			label:    p.Label,
			cluster:  cluster,
			selected: i == m.selectedIndex,
		}
	}
	return points
}

func clamp(v, low, high int) int {
	return max(low, min(v, high))
}

// drawLine marks the empty cells on the Bresenham line between two cells.
func drawLine(grid [][]canvasCell, x0, y0, x1, y1 int, style lipgloss.Style) {
	dx := abs(x1 - x0)
	dy := abs(y1 - y0)
	stepX, stepY := 1, 1
	if x0 > x1 {
		stepX = -1
	}
	if y0 > y1 {
		stepY = -1
	}

	errTerm := dx - dy
	x, y := x0, y0
	for {
		if y >= 0 && y < len(grid) && x >= 0 && x < len(grid[y]) && grid[y][x].char == ' ' {
			grid[y][x] = canvasCell{char: '·', style: style}
		}
		if x == x1 && y == y1 {
			return
		}
		doubled := 2 * errTerm
		if doubled > -dy {
			errTerm -= dy
			x += stepX
		}
		if doubled < dx {
			errTerm += dx
			y += stepY
		}
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

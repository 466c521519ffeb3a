// Package tui is a terminal viewer for analysis results. It plots the reduced layout,
// lists pairwise comparisons and quadrant clusters, and follows a nonlinear reduction
// frame by frame while it runs.
package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/alDuncanson/embscope/analysis"
	"github.com/alDuncanson/embscope/projection"
	"github.com/alDuncanson/embscope/similarity"
)

// ProgressMsg carries an intermediate layout from a running analysis.
type ProgressMsg analysis.Progress

// ResultMsg carries the outcome of an analysis.
type ResultMsg struct {
	Result *analysis.Result
	Err    error
}

// Model is the viewer state.
type Model struct {
	width, height int
	activeTab     viewTab

	result    *analysis.Result
	points    []analysis.ReducedPoint
	clusters  []analysis.Cluster
	clusterOf []int
	progress  *analysis.Progress
	running   bool
	err       error

	selectedIndex int
	showMetadata  bool
	focusMode     bool

	comparisons table.Model

	cancel  context.CancelFunc
	title   string
	version string
}

// NewModel returns a viewer waiting for an analysis. cancel, when set, is called on quit so
// a running analysis stops with the viewer.
func NewModel(version string, cancel context.CancelFunc) Model {
	comparisons := table.New(
		table.WithColumns(comparisonColumns(80)),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	return Model{
		width:         80,
		height:        24,
		running:       true,
		selectedIndex: -1,
		showMetadata:  true,
		comparisons:   comparisons,
		cancel:        cancel,
		title:         "embscope",
		version:       version,
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeTable()

	case ProgressMsg:
		progress := analysis.Progress(msg)
		m.progress = &progress
		m.setPoints(progress.Points, projection.QuadrantClusters(coordsOf(progress.Points), labelsOf(progress.Points)))

	case ResultMsg:
		m.running = false
		if msg.Err != nil {
			m.err = msg.Err
			return m, nil
		}
		if msg.Result == nil {
			return m, nil
		}
		m.result = msg.Result
		m.setPoints(msg.Result.Points, msg.Result.Clusters)
		m.comparisons.SetRows(comparisonRows(msg.Result.Comparisons))
	}

	return m, nil
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc", "q":
		if m.cancel != nil {
			m.cancel()
		}
		return m, tea.Quit

	case "1":
		m.activeTab = tabPlot
	case "2":
		m.activeTab = tabComparisons
	case "3":
		m.activeTab = tabClusters
	case "tab":
		m.activeTab = (m.activeTab + 1) % viewTab(len(tabNames))

	default:
		if m.activeTab == tabComparisons {
			var cmd tea.Cmd
			m.comparisons, cmd = m.comparisons.Update(msg)
			return m, cmd
		}
		if m.activeTab == tabPlot {
			m.handlePlotKey(msg.String())
		}
	}

	return m, nil
}

func (m *Model) handlePlotKey(key string) {
	switch key {
	case "down", "j":
		if len(m.points) > 0 {
			m.selectedIndex = (m.selectedIndex + 1) % len(m.points)
		}
	case "up", "k":
		if len(m.points) > 0 {
			m.selectedIndex--
			if m.selectedIndex < 0 {
				m.selectedIndex = len(m.points) - 1
			}
		}
	case "/":
		m.showMetadata = !m.showMetadata
	case "f", "F":
		m.focusMode = !m.focusMode
	}
}

func (m *Model) setPoints(points []analysis.ReducedPoint, clusters []analysis.Cluster) {
	m.points = points
	m.clusters = clusters
	m.clusterOf = make([]int, len(points))
	for i := range m.clusterOf {
		m.clusterOf[i] = -1
	}
	for c, cluster := range clusters {
		for _, index := range cluster.Indices {
			if index < len(m.clusterOf) {
				m.clusterOf[index] = c
			}
		}
	}
	if m.selectedIndex >= len(points) {
		m.selectedIndex = len(points) - 1
	}
}

func (m Model) hasSelection() bool {
	return m.selectedIndex >= 0 && m.selectedIndex < len(m.points)
}

func (m *Model) resizeTable() {
	layout := m.calculateLayout()
	m.comparisons.SetColumns(comparisonColumns(layout.totalWidth))
	m.comparisons.SetWidth(layout.totalWidth)
	m.comparisons.SetHeight(max(layout.canvasHeight-1, 3))
}

type neighbor struct {
	index      int
	label      string
	similarity float64
}

// nearestNeighbors ranks the other records by cosine similarity of their original vectors.
// Vectors are only known once the analysis has finished.
func (m Model) nearestNeighbors(index, limit int) []neighbor {
	if m.result == nil || index < 0 || index >= len(m.result.Records) {
		return nil
	}

	selected := m.result.Records[index]
	var neighbors []neighbor
	for i, candidate := range m.result.Records {
		if i == index {
			continue
		}
		score, err := similarity.CosineSimilarity(selected.Vector, candidate.Vector)
		if err != nil {
			continue
		}
		neighbors = append(neighbors, neighbor{index: i, label: candidate.Label, similarity: score})
	}

	sort.SliceStable(neighbors, func(i, j int) bool {
		return neighbors[i].similarity > neighbors[j].similarity
	})
	if len(neighbors) > limit {
		neighbors = neighbors[:limit]
	}
	return neighbors
}

// bestMatch finds the record closest to the one at index, ignoring records that share
// its label. The returned Index refers to result records.
func (m Model) bestMatch(index int) (similarity.Match, bool) {
	if m.result == nil || index < 0 || index >= len(m.result.Records) {
		return similarity.Match{}, false
	}

	selected := m.result.Records[index]
	candidates := make([]similarity.Item, 0, len(m.result.Records)-1)
	positions := make([]int, 0, len(m.result.Records)-1)
	for i, record := range m.result.Records {
		if i == index {
			continue
		}
		candidates = append(candidates, similarity.Item{Label: record.Label, Vector: record.Vector})
		positions = append(positions, i)
	}

	match, ok, err := similarity.MostSimilar(similarity.Item{Label: selected.Label, Vector: selected.Vector}, candidates)
	if err != nil || !ok {
		return similarity.Match{}, false
	}
	match.Index = positions[match.Index]
	return match, true
}

func (m Model) renderMetadata(s styles, width, height int) string {
	if !m.hasSelection() {
		return ""
	}

	point := m.points[m.selectedIndex]
	lines := []string{
		s.header.Render("Selected"),
		s.value.Render(fit(point.Label, width)),
		"",
		s.label.Render("Coords: ") + s.value.Render(formatCoords(point.Coords)),
	}
	if c := m.clusterOf[m.selectedIndex]; c >= 0 && c < len(m.clusters) {
		lines = append(lines, s.label.Render("Cluster: ")+s.value.Render(m.clusters[c].Name))
	}
	if m.result != nil && m.selectedIndex < len(m.result.Records) {
		lines = append(lines, s.label.Render("Dim: ")+s.value.Render(fmt.Sprintf("%d", len(m.result.Records[m.selectedIndex].Vector))))
	}

	if match, ok := m.bestMatch(m.selectedIndex); ok {
		reading := similarity.Interpret(match.Similarity)
		lines = append(lines, "", s.header.Render("Best match"),
			s.value.Render(fit(match.Label, width)),
			fit(fmt.Sprintf("%.3f %s", match.Similarity, reading.Label), width))
	}

	if neighbors := m.nearestNeighbors(m.selectedIndex, maxNeighbors); len(neighbors) > 0 {
		lines = append(lines, "", s.header.Render("Nearest"))
		for _, n := range neighbors {
			lines = append(lines, fmt.Sprintf("%.3f %s", n.similarity, fit(n.label, width-7)))
		}
	}

	for len(lines) < height {
		lines = append(lines, "")
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	return strings.Join(lines, "\n")
}

func comparisonColumns(width int) []table.Column {
	labelWidth := max((width-40)/2, 12)
	return []table.Column{
		{Title: "Text A", Width: labelWidth},
		{Title: "Text B", Width: labelWidth},
		{Title: "Cosine", Width: 8},
		{Title: "Euclid", Width: 8},
		{Title: "Meaning", Width: 18},
	}
}

// comparisonRows lists comparisons from most to least similar.
func comparisonRows(comparisons []analysis.Comparison) []table.Row {
	sorted := append([]analysis.Comparison(nil), comparisons...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Metrics.Cosine > sorted[j].Metrics.Cosine
	})

	rows := make([]table.Row, len(sorted))
	for i, c := range sorted {
		rows[i] = table.Row{
			c.LabelA,
			c.LabelB,
			fmt.Sprintf("%.4f", c.Metrics.Cosine),
			fmt.Sprintf("%.4f", c.Metrics.Euclidean),
			c.Interpretation,
		}
	}
	return rows
}

func (m Model) renderComparisonsTab(s styles, layout layoutDimensions) string {
	if len(m.comparisons.Rows()) == 0 {
		message := "No comparisons yet"
		if !m.running {
			message = "Fewer than two records, nothing to compare"
		}
		return lipgloss.Place(layout.canvasWidth, layout.canvasHeight, lipgloss.Center, lipgloss.Center, s.label.Render(message))
	}
	return lipgloss.NewStyle().Height(layout.canvasHeight).Render(m.comparisons.View())
}

func (m Model) renderClustersTab(s styles, layout layoutDimensions) string {
	if len(m.clusters) == 0 {
		return lipgloss.Place(layout.canvasWidth, layout.canvasHeight, lipgloss.Center, lipgloss.Center, s.label.Render("No clusters"))
	}

	canvas := newCanvasStyles()
	var lines []string
	for i, cluster := range m.clusters {
		header := canvas.forCluster(i).Bold(true).Render(fmt.Sprintf("● %s (%d)", cluster.Name, len(cluster.Members)))
		lines = append(lines, header+"  "+s.label.Render("centroid "+formatCoords(cluster.Centroid)))
		for _, member := range cluster.Members {
			lines = append(lines, "  "+fit(member, layout.canvasWidth-2))
		}
		lines = append(lines, "")
	}

	if len(lines) > layout.canvasHeight {
		lines = append(lines[:layout.canvasHeight-1], s.label.Render("..."))
	}
	return lipgloss.NewStyle().Height(layout.canvasHeight).Render(strings.Join(lines, "\n"))
}

func (m Model) View() string {
	s := newStyles()
	layout := m.calculateLayout()

	var content string
	switch m.activeTab {
	case tabComparisons:
		content = m.renderComparisonsTab(s, layout)
	case tabClusters:
		content = m.renderClustersTab(s, layout)
	default:
		content = m.renderPlotTab(s, layout)
	}

	parts := []string{m.renderTabBar(s, layout.totalWidth), content}
	if m.err != nil {
		parts = append(parts, m.renderError(s))
	}
	parts = append(parts, m.renderStatusBar(s, layout.totalWidth))

	return lipgloss.NewStyle().Padding(1, 1).Render(strings.Join(parts, "\n"))
}

func formatCoords(coords []float64) string {
	parts := make([]string, len(coords))
	for i, c := range coords {
		parts[i] = fmt.Sprintf("%.2f", c)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func coordsOf(points []analysis.ReducedPoint) [][]float64 {
	coords := make([][]float64, len(points))
	for i, p := range points {
		coords[i] = p.Coords
	}
	return coords
}

func labelsOf(points []analysis.ReducedPoint) []string {
	labels := make([]string, len(points))
	for i, p := range points {
		labels[i] = p.Label
	}
	return labels
}

package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alDuncanson/embscope/analysis"
	"github.com/alDuncanson/embscope/projection"
	"github.com/alDuncanson/embscope/similarity"
)

func testResult() *analysis.Result {
	records := []analysis.Record{
		{ID: "1", Label: "cat", Vector: []float64{1, 0, 0}},
		{ID: "2", Label: "kitten", Vector: []float64{0.9, 0.1, 0}},
		{ID: "3", Label: "car", Vector: []float64{0, 0, 1}},
		{ID: "4", Label: "truck", Vector: []float64{0, 0.1, 0.9}},
	}
	points := []analysis.ReducedPoint{
		{ID: "1", Label: "cat", Coords: []float64{1, 1}},
		{ID: "2", Label: "kitten", Coords: []float64{1.2, 0.8}},
		{ID: "3", Label: "car", Coords: []float64{-1, -1}},
		{ID: "4", Label: "truck", Coords: []float64{-1.1, -0.9}},
	}
	coords := make([][]float64, len(points))
	for i, p := range points {
		coords[i] = p.Coords
	}

	return &analysis.Result{
		Records:  records,
		Points:   points,
		Clusters: projection.QuadrantClusters(coords, []string{"cat", "kitten", "car", "truck"}),
		Comparisons: []analysis.Comparison{
			{LabelA: "cat", LabelB: "car", Metrics: similarity.Metrics{Cosine: 0.1}, Interpretation: "very different"},
			{LabelA: "cat", LabelB: "kitten", Metrics: similarity.Metrics{Cosine: 0.99}, Interpretation: "extremely similar"},
		},
		Method:     analysis.MethodLinear,
		Dimensions: 2,
		Layout:     projection.LayoutComputed,
	}
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	model, ok := next.(Model)
	require.True(t, ok)
	return model
}

func key(s string) tea.KeyMsg {
	switch s {
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModel_ProgressThenResult(t *testing.T) {
	m := NewModel("test", nil)
	m = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})

	m = update(t, m, ProgressMsg{
		Iteration:     50,
		MaxIterations: 500,
		Cost:          1.5,
		Points:        testResult().Points,
	})
	assert.True(t, m.running)
	assert.Len(t, m.points, 4)
	assert.NotEmpty(t, m.clusters, "live frames are clustered for coloring")
	assert.Contains(t, ansi.Strip(m.View()), "t-SNE 50/500")

	m = update(t, m, ResultMsg{Result: testResult()})
	assert.False(t, m.running)
	assert.NotNil(t, m.result)
	assert.Len(t, m.comparisons.Rows(), 2)
}

func TestModel_ResultError(t *testing.T) {
	m := update(t, NewModel("", nil), ResultMsg{Err: errors.New("embedding failed")})

	assert.False(t, m.running)
	assert.Contains(t, ansi.Strip(m.View()), "Error: embedding failed")
}

func TestModel_SelectionWraps(t *testing.T) {
	m := update(t, NewModel("", nil), ResultMsg{Result: testResult()})

	m = update(t, m, key("up"))
	assert.Equal(t, 3, m.selectedIndex)
	m = update(t, m, key("down"))
	assert.Equal(t, 0, m.selectedIndex)
}

func TestModel_NearestNeighbors(t *testing.T) {
	m := update(t, NewModel("", nil), ResultMsg{Result: testResult()})

	neighbors := m.nearestNeighbors(0, 2)
	require.Len(t, neighbors, 2)
	assert.Equal(t, "kitten", neighbors[0].label)
	assert.Greater(t, neighbors[0].similarity, neighbors[1].similarity)
}

func TestModel_BestMatch(t *testing.T) {
	m := update(t, NewModel("", nil), ResultMsg{Result: testResult()})

	match, ok := m.bestMatch(0)
	require.True(t, ok)
	assert.Equal(t, "kitten", match.Label)
	assert.Equal(t, "kitten", m.result.Records[match.Index].Label)

	match, ok = m.bestMatch(2)
	require.True(t, ok)
	assert.Equal(t, m.nearestNeighbors(2, 1)[0].label, match.Label)
	assert.Equal(t, m.nearestNeighbors(2, 1)[0].index, match.Index)

	_, ok = update(t, NewModel("", nil), ProgressMsg{Points: testResult().Points}).bestMatch(0)
	assert.False(t, ok)
}

func TestModel_NoNeighborsWhileRunning(t *testing.T) {
	m := update(t, NewModel("", nil), ProgressMsg{Points: testResult().Points})
	assert.Empty(t, m.nearestNeighbors(0, 5))
}

func TestModel_TabsRender(t *testing.T) {
	m := update(t, NewModel("", nil), tea.WindowSizeMsg{Width: 120, Height: 30})
	m = update(t, m, ResultMsg{Result: testResult()})

	m = update(t, m, key("1"))
	plot := ansi.Strip(m.View())
	assert.Contains(t, plot, "truck")

	m = update(t, m, key("2"))
	comparisons := ansi.Strip(m.View())
	assert.Less(t, strings.Index(comparisons, "extremely similar"), strings.Index(comparisons, "very different"),
		"comparisons are listed most similar first")

	m = update(t, m, key("3"))
	clusters := ansi.Strip(m.View())
	assert.Contains(t, clusters, projection.QuadrantTopRight)
	assert.Contains(t, clusters, projection.QuadrantBottomLeft)
}

func TestModel_QuitCancels(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	m := NewModel("", cancel)

	_, cmd := m.Update(key("ctrl+c"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
}

func TestComparisonRows_SortedByCosine(t *testing.T) {
	rows := comparisonRows(testResult().Comparisons)
	require.Len(t, rows, 2)
	assert.Equal(t, "kitten", rows[0][1])
	assert.Equal(t, "0.9900", rows[0][2])
}

func TestOverlayAt(t *testing.T) {
	base := "aaaaa\naaaaa\naaaaa"
	got := overlayAt(base, "XX", 1, 1)
	assert.Equal(t, "aaaaa\naXXaa\naaaaa", got)
}

func TestFit(t *testing.T) {
	assert.Equal(t, "short", fit("short", 10))
	assert.Equal(t, "a long...", fit("a long sentence", 9))
	assert.Equal(t, "", fit("anything", 0))
}

func TestDrawLine(t *testing.T) {
	grid := make([][]canvasCell, 3)
	for i := range grid {
		grid[i] = []canvasCell{{char: ' '}, {char: ' '}, {char: ' '}}
	}
	drawLine(grid, 0, 0, 2, 2, newCanvasStyles().line)

	for i := 0; i < 3; i++ {
		assert.Equal(t, '·', grid[i][i].char)
	}
	assert.Equal(t, ' ', grid[0][2].char)
}

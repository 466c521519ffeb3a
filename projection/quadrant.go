package projection

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Quadrant names, in the order clusters are emitted.
const (
	QuadrantTopRight    = "Top-Right"
	QuadrantTopLeft     = "Top-Left"
	QuadrantBottomRight = "Bottom-Right"
	QuadrantBottomLeft  = "Bottom-Left"
)

var quadrantOrder = []string{QuadrantTopRight, QuadrantTopLeft, QuadrantBottomRight, QuadrantBottomLeft}

// Cluster is one coarse group of reduced points.
type Cluster struct {
	Name     string    `json:"name" yaml:"name"`
	Centroid []float64 `json:"centroid" yaml:"centroid"`
	Members  []string  `json:"members" yaml:"members"`
	Indices  []int     `json:"indices" yaml:"indices"`
}

// QuadrantClusters splits reduced points into up to four groups around the median x and
// median y. A point whose coordinate equals the median lands on the Right (x) or Top (y)
// side. Only the first two coordinates decide membership; centroids average every
// coordinate.
//
// This is a coarse, deterministic partition for display. It does not minimize any distance
// and two close points on either side of a median end up in different groups.
func QuadrantClusters(coords [][]float64, labels []string) []Cluster {
	if len(coords) < 2 {
		return []Cluster{}
	}

	xs := make([]float64, len(coords))
	ys := make([]float64, len(coords))
	for i, point := range coords {
		xs[i] = point[0]
		ys[i] = point[1]
	}
	medianX := median(xs)
	medianY := median(ys)

	members := make(map[string][]int, len(quadrantOrder))
	for i, point := range coords {
		name := quadrantOf(point[0], point[1], medianX, medianY)
		members[name] = append(members[name], i)
	}

	clusters := make([]Cluster, 0, len(quadrantOrder))
	for _, name := range quadrantOrder {
		indices := members[name]
		if len(indices) == 0 {
			continue
		}

		memberLabels := make([]string, len(indices))
		for j, index := range indices {
			if index < len(labels) {
				memberLabels[j] = labels[index]
			}
		}

		clusters = append(clusters, Cluster{
			Name:     name,
			Centroid: centroid(coords, indices),
			Members:  memberLabels,
			Indices:  indices,
		})
	}
	return clusters
}

func quadrantOf(x, y, medianX, medianY float64) string {
	right := x >= medianX
	top := y >= medianY
	switch {
	case top && right:
		return QuadrantTopRight
	case top:
		return QuadrantTopLeft
	case right:
		return QuadrantBottomRight
	default:
		return QuadrantBottomLeft
	}
}

// median returns the middle value, or the mean of the two middle values for even counts.
// stat.Quantile with the empirical kind returns a lower element for even counts, which
// would move the tie boundary.
func median(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	middle := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[middle]
	}
	return (sorted[middle-1] + sorted[middle]) / 2
}

func centroid(coords [][]float64, indices []int) []float64 {
	dimensions := len(coords[indices[0]])
	center := make([]float64, dimensions)
	column := make([]float64, len(indices))
	for d := 0; d < dimensions; d++ {
		for j, index := range indices {
			column[j] = coords[index][d]
		}
		center[d] = stat.Mean(column, nil)
	}
	return center
}

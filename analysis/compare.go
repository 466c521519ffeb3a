package analysis

import (
	"context"
	"errors"
	"fmt"

	"github.com/alDuncanson/embscope/similarity"
)

// Compare computes all four metrics for one pair of records and interprets their cosine
// similarity.
func (p *Pipeline) Compare(ctx context.Context, a, b Record) (Comparison, error) {
	if err := ctx.Err(); err != nil {
		return Comparison{}, err
	}
	if len(a.Vector) == 0 || len(b.Vector) == 0 {
		return Comparison{}, fmt.Errorf("%w: empty vector", ErrInvalidInput)
	}
	for _, record := range []Record{a, b} {
		if component, ok := firstNonFinite(record.Vector); ok {
			return Comparison{}, fmt.Errorf("%w: %q has a non-finite value at component %d", ErrInvalidInput, record.Label, component)
		}
	}
	comparison, err := compare(a, b)
	if err != nil {
		return Comparison{}, err
	}
	comparison.IndexB = 1
	return comparison, nil
}

// CompareTexts embeds two texts and compares them.
func (p *Pipeline) CompareTexts(ctx context.Context, a, b string) (Comparison, error) {
	records, err := p.EmbedRecords(ctx, []string{a, b})
	if err != nil {
		return Comparison{}, err
	}
	return p.Compare(ctx, records[0], records[1])
}

// compareAll returns one comparison per unordered pair, ordered by (i, j) with i < j.
func compareAll(ctx context.Context, records []Record) ([]Comparison, error) {
	n := len(records)
	comparisons := make([]Comparison, 0, n*(n-1)/2)
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for j := i + 1; j < n; j++ {
			comparison, err := compare(records[i], records[j])
			if err != nil {
				return nil, err
			}
			comparison.IndexA, comparison.IndexB = i, j
			comparisons = append(comparisons, comparison)
		}
	}
	return comparisons, nil
}

func compare(a, b Record) (Comparison, error) {
	metrics, err := similarity.Compute(a.Vector, b.Vector)
	if err != nil {
		var mismatch *similarity.ErrDimensionMismatch
		if errors.As(err, &mismatch) {
			return Comparison{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
		return Comparison{}, err
	}

	interpretation := similarity.Interpret(metrics.Cosine)
	return Comparison{
		LabelA:         a.Label,
		LabelB:         b.Label,
		Metrics:        metrics,
		Interpretation: interpretation.Label,
		Confidence:     interpretation.Confidence,
	}, nil
}

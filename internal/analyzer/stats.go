package analyzer

import (
	"math"
	"sort"
)

// mean returns the arithmetic mean of sample, 0 for an empty sample.
func mean(sample []int) float64 {
	if len(sample) == 0 {
		return 0
	}
	sum := 0
	for _, v := range sample {
		sum += v
	}
	return float64(sum) / float64(len(sample))
}

// median returns the standard median of sample, 0 for an empty sample.
// Even-length samples average the two middle values.
func median(sample []int) float64 {
	n := len(sample)
	if n == 0 {
		return 0
	}
	sorted := make([]int, n)
	copy(sorted, sample)
	sort.Ints(sorted)
	if n%2 == 1 {
		return float64(sorted[n/2])
	}
	return float64(sorted[n/2-1]+sorted[n/2]) / 2
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// counter accumulates label frequencies while preserving the order in which
// labels were first seen, so equal-count entries rank in encounter order.
type counter struct {
	counts map[string]int
	order  []string
}

func newCounter() *counter {
	return &counter{counts: make(map[string]int)}
}

func (c *counter) Add(label string) {
	if _, seen := c.counts[label]; !seen {
		c.order = append(c.order, label)
	}
	c.counts[label]++
}

type labelCount struct {
	label string
	count int
}

// Ranked returns all labels sorted by descending count. The sort is stable:
// ties keep first-seen order.
func (c *counter) Ranked() []labelCount {
	ranked := make([]labelCount, 0, len(c.order))
	for _, label := range c.order {
		ranked = append(ranked, labelCount{label: label, count: c.counts[label]})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].count > ranked[j].count
	})
	return ranked
}

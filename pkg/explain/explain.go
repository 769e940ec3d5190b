// Package explain attributes a linear score to its input features.
//
// Contributions keep the scorer's sign: the model predicts survival, so a
// negative contribution lowers survival probability and raises mortality risk.
package explain

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/synaptica-ai/afi-risk/pkg/features"
)

// Row is one feature's share of the score. Value is what the model saw;
// Display is only for people.
type Row struct {
	Feature         string  `json:"feature"`
	Display         string  `json:"input_value"`
	Value           float64 `json:"model_value"`
	Weight          float64 `json:"weight"`
	Contribution    float64 `json:"contribution"`
	AbsContribution float64 `json:"abs_contribution"`
}

// Table is ordered by AbsContribution descending; ties keep feature order.
type Table []Row

// Explain computes value*weight for every feature of v. Display is optional;
// missing entries fall back to the formatted model value.
func Explain(v features.Vector, weights []float64) (Table, error) {
	if len(v.Values) != len(weights) || len(v.Names) != len(weights) {
		return nil, fmt.Errorf("explaining %d features with %d weights", len(v.Values), len(weights))
	}
	table := make(Table, len(weights))
	for i, w := range weights {
		c := v.Values[i] * w
		var display string
		if i < len(v.Display) {
			display = v.Display[i]
		}
		if display == "" {
			display = formatValue(v.Values[i])
		}
		table[i] = Row{
			Feature:         v.Names[i],
			Display:         display,
			Value:           v.Values[i],
			Weight:          w,
			Contribution:    c,
			AbsContribution: math.Abs(c),
		}
	}
	sort.SliceStable(table, func(i, j int) bool {
		return table[i].AbsContribution > table[j].AbsContribution
	})
	return table, nil
}

// ByContribution returns a copy ordered from most risk-increasing to most
// protective.
func (t Table) ByContribution() Table {
	out := make(Table, len(t))
	copy(out, t)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Contribution < out[j].Contribution
	})
	return out
}

// Top returns the first n rows of ByContribution.
func (t Table) Top(n int) Table {
	sorted := t.ByContribution()
	if n < len(sorted) {
		sorted = sorted[:n]
	}
	return sorted
}

// Sum reconstructs score minus intercept.
func (t Table) Sum() float64 {
	var sum float64
	for _, r := range t {
		sum += r.Contribution
	}
	return sum
}

// MaxAbs is the largest absolute contribution in the table.
func (t Table) MaxAbs() float64 {
	var m float64
	for _, r := range t {
		if r.AbsContribution > m {
			m = r.AbsContribution
		}
	}
	return m
}

// FormatImpact renders a contribution with an explicit plus sign when positive.
func FormatImpact(c float64) string {
	if c > 0 {
		return fmt.Sprintf("+%.2f", c)
	}
	return fmt.Sprintf("%.2f", c)
}

// RiskBar draws a proportional text bar followed by the sign of c.
// Contributions below 0.01 in magnitude get a blank bar.
func RiskBar(c, maxAbs float64, width int) string {
	if math.Abs(c) < 0.01 || maxAbs == 0 {
		return " "
	}
	n := int(math.Abs(c) / maxAbs * float64(width))
	sign := "-"
	if c > 0 {
		sign = "+"
	}
	return strings.Repeat("|", n) + " " + sign
}

func formatValue(v float64) string {
	return fmt.Sprintf("%g", v)
}

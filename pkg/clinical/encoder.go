package clinical

import (
	"errors"
	"fmt"
)

// UnknownCategoryError reports a label that has no entry in its code table.
// It is never defaulted to a baseline code.
type UnknownCategoryError struct {
	Table string
	Label string
}

func (e *UnknownCategoryError) Error() string {
	if e.Table == "" {
		return fmt.Sprintf("no code table for label %q", e.Label)
	}
	return fmt.Sprintf("unknown %s category %q", e.Table, e.Label)
}

func IsUnknownCategory(err error) bool {
	var target *UnknownCategoryError
	return errors.As(err, &target)
}

// Encoder resolves categorical selections to severity codes.
type Encoder struct {
	codes  map[string]map[string]float64
	labels map[string][]string
}

func NewEncoder(cat Catalog) *Encoder {
	e := &Encoder{
		codes:  make(map[string]map[string]float64, len(cat.Tables)),
		labels: make(map[string][]string, len(cat.Tables)),
	}
	for _, table := range cat.Tables {
		codes := make(map[string]float64, len(table.Entries))
		labels := make([]string, 0, len(table.Entries))
		for _, entry := range table.Entries {
			codes[entry.Label] = entry.Code
			labels = append(labels, entry.Label)
		}
		e.codes[table.Name] = codes
		e.labels[table.Name] = labels
	}
	return e
}

func (e *Encoder) Encode(table, label string) (float64, error) {
	codes, ok := e.codes[table]
	if !ok {
		return 0, &UnknownCategoryError{Table: table, Label: label}
	}
	code, ok := codes[label]
	if !ok {
		return 0, &UnknownCategoryError{Table: table, Label: label}
	}
	return code, nil
}

// Labels lists the selectable labels of a table in catalog order.
func (e *Encoder) Labels(table string) []string {
	labels := e.labels[table]
	out := make([]string, len(labels))
	copy(out, labels)
	return out
}

func (e *Encoder) HasTable(table string) bool {
	_, ok := e.codes[table]
	return ok
}

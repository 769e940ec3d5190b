package features

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
)

type valueKind uint8

const (
	kindNumber valueKind = iota + 1
	kindLabel
)

// Value is a single raw form input: either a number or a categorical label.
// The zero Value is invalid.
type Value struct {
	kind   valueKind
	number float64
	label  string
}

func Number(v float64) Value { return Value{kind: kindNumber, number: v} }

func Label(s string) Value { return Value{kind: kindLabel, label: s} }

func (v Value) IsNumber() bool { return v.kind == kindNumber }

func (v Value) IsLabel() bool { return v.kind == kindLabel }

// Float returns the numeric payload; ok is false for labels.
func (v Value) Float() (float64, bool) {
	return v.number, v.kind == kindNumber
}

// Text returns the label payload; ok is false for numbers.
func (v Value) Text() (string, bool) {
	return v.label, v.kind == kindLabel
}

func (v Value) String() string {
	switch v.kind {
	case kindNumber:
		return formatNumber(v.number)
	case kindLabel:
		return v.label
	default:
		return ""
	}
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case kindNumber:
		return json.Marshal(v.number)
	case kindLabel:
		return json.Marshal(v.label)
	default:
		return []byte("null"), nil
	}
}

func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return errors.New("value must be a number or a string")
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = Label(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("value must be a number or a string: %w", err)
	}
	f, err := n.Float64()
	if err != nil {
		return err
	}
	*v = Number(f)
	return nil
}

// Record is one patient submission keyed by feature name.
type Record map[string]Value

func (r Record) names() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

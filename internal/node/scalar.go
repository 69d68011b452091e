package node

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Port is the port of a listener as it was typed by the operator.  It may
// hold anything, use Parse to get the actual port number.
type Port string

// type check
var (
	_ json.Marshaler   = Port("")
	_ json.Unmarshaler = (*Port)(nil)
	_ yaml.Marshaler   = Port("")
	_ yaml.Unmarshaler = (*Port)(nil)
)

// PortOf returns the text form of the port number.
func PortOf(n uint16) (p Port) {
	return Port(strconv.FormatUint(uint64(n), 10))
}

// Parse returns the port number and true if p is an integer in [1, 65535].
func (p Port) Parse() (n uint16, ok bool) {
	v, err := strconv.ParseUint(strings.TrimSpace(string(p)), 10, 16)
	if err != nil || v == 0 {
		return 0, false
	}

	return uint16(v), true
}

// IsBlank returns true if nothing but whitespace was typed.
func (p Port) IsBlank() (ok bool) {
	return strings.TrimSpace(string(p)) == ""
}

// normalize returns the canonical text of a valid port and p itself
// otherwise.
func (p Port) normalize() (norm Port) {
	if n, ok := p.Parse(); ok {
		return PortOf(n)
	}

	return p
}

// MarshalJSON implements the json.Marshaler interface for Port.  Valid ports
// are encoded as numbers.
func (p Port) MarshalJSON() (b []byte, err error) {
	if n, ok := p.Parse(); ok {
		return json.Marshal(n)
	}

	return json.Marshal(string(p))
}

// UnmarshalJSON implements the json.Unmarshaler interface for *Port.
func (p *Port) UnmarshalJSON(b []byte) (err error) {
	s, err := scalarFromJSON(b)
	if err != nil {
		return fmt.Errorf("port: %w", err)
	}

	*p = Port(s)

	return nil
}

// MarshalYAML implements the yaml.Marshaler interface for Port.
func (p Port) MarshalYAML() (v any, err error) {
	if n, ok := p.Parse(); ok {
		return n, nil
	}

	return string(p), nil
}

// UnmarshalYAML implements the yaml.Unmarshaler interface for *Port.
func (p *Port) UnmarshalYAML(n *yaml.Node) (err error) {
	s, err := scalarFromYAML(n)
	if err != nil {
		return fmt.Errorf("port: %w", err)
	}

	*p = Port(s)

	return nil
}

// defaultRatio is the traffic accounting ratio used when none is set.
const defaultRatio = 1.0

// Ratio is the traffic accounting ratio as it was typed by the operator.
type Ratio string

// type check
var (
	_ json.Marshaler   = Ratio("")
	_ json.Unmarshaler = (*Ratio)(nil)
	_ yaml.Marshaler   = Ratio("")
	_ yaml.Unmarshaler = (*Ratio)(nil)
)

// RatioOf returns the text form of the ratio.
func RatioOf(f float64) (r Ratio) {
	return Ratio(strconv.FormatFloat(f, 'f', -1, 64))
}

// Parse returns the ratio and true if r is a finite decimal that is not
// negative.
func (r Ratio) Parse() (f float64, ok bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(string(r)), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0, false
	}

	return f, true
}

// IsBlank returns true if nothing but whitespace was typed.
func (r Ratio) IsBlank() (ok bool) {
	return strings.TrimSpace(string(r)) == ""
}

// Value returns the parsed ratio or the default one if r is blank or invalid.
func (r Ratio) Value() (f float64) {
	if f, ok := r.Parse(); ok {
		return f
	}

	return defaultRatio
}

// MarshalJSON implements the json.Marshaler interface for Ratio.
func (r Ratio) MarshalJSON() (b []byte, err error) {
	if f, ok := r.Parse(); ok {
		return json.Marshal(f)
	}

	return json.Marshal(string(r))
}

// UnmarshalJSON implements the json.Unmarshaler interface for *Ratio.
func (r *Ratio) UnmarshalJSON(b []byte) (err error) {
	s, err := scalarFromJSON(b)
	if err != nil {
		return fmt.Errorf("ratio: %w", err)
	}

	*r = Ratio(s)

	return nil
}

// MarshalYAML implements the yaml.Marshaler interface for Ratio.
func (r Ratio) MarshalYAML() (v any, err error) {
	if f, ok := r.Parse(); ok {
		return f, nil
	}

	return string(r), nil
}

// UnmarshalYAML implements the yaml.Unmarshaler interface for *Ratio.
func (r *Ratio) UnmarshalYAML(n *yaml.Node) (err error) {
	s, err := scalarFromYAML(n)
	if err != nil {
		return fmt.Errorf("ratio: %w", err)
	}

	*r = Ratio(s)

	return nil
}

// scalarFromJSON returns the text of a JSON string or number.  null is
// decoded as an empty string.
func scalarFromJSON(b []byte) (s string, err error) {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		return "", nil
	case len(b) > 0 && b[0] == '"':
		err = json.Unmarshal(b, &s)

		return s, err
	default:
		var num json.Number
		err = json.Unmarshal(b, &num)

		return num.String(), err
	}
}

// scalarFromYAML returns the text of a YAML scalar.  null is decoded as an
// empty string.
func scalarFromYAML(n *yaml.Node) (s string, err error) {
	if n.Kind != yaml.ScalarNode {
		return "", fmt.Errorf("line %d: expected a scalar", n.Line)
	}

	if n.Tag == "!!null" {
		return "", nil
	}

	return n.Value, nil
}

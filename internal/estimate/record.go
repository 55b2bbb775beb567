package estimate

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/estima/internal/errors"
)

// Record is the serializable form of an Estimate, the boundary a storage
// layer reads and writes.
type Record struct {
	Expected float64 `json:"expected" yaml:"expected"`
	Sigma    float64 `json:"sigma" yaml:"sigma"`
	Source   *Input  `json:"source,omitempty" yaml:"source,omitempty"`
	Shape    int     `json:"shape,omitempty" yaml:"shape,omitempty"`
}

// ToRecord exports the estimate.
func (e Estimate) ToRecord() Record {
	r := Record{Expected: e.expected, Sigma: e.sigma, Shape: e.Shape()}
	if src, ok := e.Source(); ok {
		r.Source = &src
	}
	return r
}

// FromRecord rebuilds an estimate. A record with a non-degenerate source is
// rebuilt from that triple; one without keeps its expected value and sigma.
func FromRecord(r Record) (Estimate, error) {
	if r.Sigma < 0 {
		return Estimate{}, errors.NewInvalidDistributionError(fmt.Sprintf("negative sigma %g", r.Sigma))
	}
	if r.Source != nil && !r.Source.IsPoint() {
		in := *r.Source
		if in.Shape == 0 {
			in.Shape = r.Shape
		}
		return FromInput(in)
	}
	e := New(r.Expected, r.Sigma)
	e.shape = shapeOrDefault(r.Shape)
	return e, nil
}

// MarshalJSON implements json.Marshaler.
func (e Estimate) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.ToRecord())
}

// UnmarshalJSON implements json.Unmarshaler.
func (e *Estimate) UnmarshalJSON(data []byte) error {
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	parsed, err := FromRecord(r)
	if err != nil {
		return err
	}
	*e = parsed
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (e Estimate) MarshalYAML() (any, error) {
	return e.ToRecord(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (e *Estimate) UnmarshalYAML(node *yaml.Node) error {
	var r Record
	if err := node.Decode(&r); err != nil {
		return err
	}
	parsed, err := FromRecord(r)
	if err != nil {
		return err
	}
	*e = parsed
	return nil
}

package plot

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadLabels reads captions from a YAML file on top of a base preset.
// Keys left out keep the base caption; unknown keys are an error.
//
//	base: ru
//	benchmark: IMOEX
//	returns_title: Strategy vs IMOEX
func LoadLabels(path string) (Labels, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Labels{}, err
	}
	return ParseLabels(data)
}

// ParseLabels decodes a YAML caption document
func ParseLabels(data []byte) (Labels, error) {
	var doc struct {
		Base   string `yaml:"base"`
		Labels `yaml:",inline"`
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return Labels{}, fmt.Errorf("invalid labels file: %w", err)
	}

	base, ok := LabelsFor(doc.Base)
	if !ok {
		return Labels{}, fmt.Errorf("invalid labels file: unknown base %q", doc.Base)
	}

	return base.merge(doc.Labels), nil
}

// merge returns l with every non-empty caption of o applied
func (l Labels) merge(o Labels) Labels {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&l.Strategy, o.Strategy)
	set(&l.Benchmark, o.Benchmark)
	set(&l.ReturnsTitle, o.ReturnsTitle)
	set(&l.ReturnsAxis, o.ReturnsAxis)
	set(&l.DrawdownTitle, o.DrawdownTitle)
	set(&l.DrawdownAxis, o.DrawdownAxis)
	set(&l.MaxDrawdown, o.MaxDrawdown)
	set(&l.Sharpe, o.Sharpe)
	return l
}

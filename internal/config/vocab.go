package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mamadbah2/wiptrace/internal/flow"
)

// Station is one configured production-line station.
type Station struct {
	Code string `yaml:"code"`
	Name string `yaml:"name"`
}

// Vocabulary carries every configured code table: the ordered station
// sequence, the series/model/container/status dictionaries and the
// per-series process flows.
type Vocabulary struct {
	Stations   []Station           `yaml:"stations"`
	Series     map[string]string   `yaml:"series"`
	Models     map[string]string   `yaml:"models"`
	Containers map[string]string   `yaml:"containers"`
	Statuses   map[string]string   `yaml:"statuses"`
	Flows      map[string][]string `yaml:"flows"`
}

// LoadVocabulary reads and validates the vocabulary YAML file.
func LoadVocabulary(path string) (*Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read vocabulary file %s: %w", path, err)
	}

	var vocab Vocabulary
	if err := yaml.Unmarshal(data, &vocab); err != nil {
		return nil, fmt.Errorf("parse vocabulary file %s: %w", path, err)
	}

	if err := vocab.Validate(); err != nil {
		return nil, fmt.Errorf("vocabulary file %s: %w", path, err)
	}

	return &vocab, nil
}

// Validate checks the vocabulary for the minimum the service needs to run.
func (v *Vocabulary) Validate() error {
	if len(v.Stations) == 0 {
		return fmt.Errorf("at least one station must be configured")
	}
	for _, st := range v.Stations {
		if strings.TrimSpace(st.Code) == "" {
			return fmt.Errorf("station with empty code")
		}
	}

	if len(v.Flows[flow.DefaultFlowKey]) == 0 {
		return fmt.Errorf("flows must include a %s sequence", flow.DefaultFlowKey)
	}

	return nil
}

// StationCodes returns the configured station codes in process order,
// uppercased.
func (v *Vocabulary) StationCodes() []string {
	codes := make([]string, 0, len(v.Stations))
	for _, st := range v.Stations {
		codes = append(codes, strings.ToUpper(strings.TrimSpace(st.Code)))
	}
	return codes
}

// HasSeries reports whether the series code exists in the vocabulary.
func (v *Vocabulary) HasSeries(code string) bool {
	_, ok := v.Series[code]
	return ok
}

// HasModel reports whether the model code exists in the vocabulary.
func (v *Vocabulary) HasModel(code string) bool {
	_, ok := v.Models[code]
	return ok
}

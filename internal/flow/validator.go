// Package flow checks that a scanned movement follows the configured process
// sequence for the product series.
package flow

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultFlowKey is the fallback sequence used when a series has no flow of
// its own.
const DefaultFlowKey = "DEFAULT"

// ErrNoFlow indicates that neither the series nor the default flow is
// configured.
var ErrNoFlow = errors.New("no process flow defined")

// Validator resolves per-series station sequences and answers legality and
// next-station questions against them.
type Validator struct {
	flows map[string][]string
}

// NewValidator builds a validator from the configured series flows. Station
// codes and series keys are normalized to uppercase once here.
func NewValidator(flows map[string][]string) *Validator {
	normalized := make(map[string][]string, len(flows))
	for series, stations := range flows {
		seq := make([]string, 0, len(stations))
		for _, st := range stations {
			seq = append(seq, strings.ToUpper(strings.TrimSpace(st)))
		}
		normalized[strings.ToUpper(strings.TrimSpace(series))] = seq
	}
	return &Validator{flows: normalized}
}

// Validate reports whether moving from prev to curr is the single legal next
// step of the series' flow. The returned error message names the expected
// station so it can go straight back to the operator.
func (v *Validator) Validate(series, prev, curr string) error {
	seq, err := v.flowFor(series)
	if err != nil {
		return err
	}

	prevUpper := strings.ToUpper(strings.TrimSpace(prev))
	currUpper := strings.ToUpper(strings.TrimSpace(curr))

	prevIndex := indexOf(seq, prevUpper)
	if prevIndex < 0 {
		return fmt.Errorf("previous station %s is not part of the %s flow", prev, seriesLabel(series))
	}

	if prevIndex+1 >= len(seq) {
		return fmt.Errorf("previous station %s is the last station of the %s flow", prev, seriesLabel(series))
	}

	if expected := seq[prevIndex+1]; currUpper != expected {
		return fmt.Errorf("after %s the next station must be %s, not %s", prev, expected, curr)
	}

	return nil
}

// NextStation returns the station following current in the series' flow, or
// "" when current is unknown or terminal.
func (v *Validator) NextStation(series, current string) string {
	seq, err := v.flowFor(series)
	if err != nil {
		return ""
	}

	idx := indexOf(seq, strings.ToUpper(strings.TrimSpace(current)))
	if idx < 0 || idx+1 >= len(seq) {
		return ""
	}
	return seq[idx+1]
}

func (v *Validator) flowFor(series string) ([]string, error) {
	key := strings.ToUpper(strings.TrimSpace(series))
	if seq, ok := v.flows[key]; ok && len(seq) > 0 {
		return seq, nil
	}
	if seq, ok := v.flows[DefaultFlowKey]; ok && len(seq) > 0 {
		return seq, nil
	}
	return nil, fmt.Errorf("%w for series %s", ErrNoFlow, series)
}

func seriesLabel(series string) string {
	if strings.TrimSpace(series) == "" {
		return DefaultFlowKey
	}
	return strings.ToUpper(strings.TrimSpace(series))
}

func indexOf(seq []string, station string) int {
	for i, st := range seq {
		if st == station {
			return i
		}
	}
	return -1
}

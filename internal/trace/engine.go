// Package trace rebuilds per-order station timelines and yield statistics
// from the raw movement event log. The engine is a stateless pure function
// over an in-memory event slice; no I/O, no cached state between calls.
package trace

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/wiptrace/internal/domain/models"
)

// Accepted event timestamp layouts. Go's parser also tolerates trailing
// fractional seconds without them appearing in the layout.
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006/01/02 15:04:05",
}

// Engine aggregates an order's events into a timeline. Station order comes
// from the configured rank table, not from event chronology: a downstream
// station may log its first event before an upstream station's last.
type Engine struct {
	ranks  map[string]int
	logger *zap.Logger
}

// NewEngine builds an engine ranking stations in the given process sequence.
// Codes absent from the sequence rank after all known codes.
func NewEngine(stations []string, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}

	ranks := make(map[string]int, len(stations))
	for i, code := range stations {
		ranks[strings.ToUpper(strings.TrimSpace(code))] = i
	}

	return &Engine{ranks: ranks, logger: logger}
}

type timedEvent struct {
	at     time.Time
	qty    int
	status string
}

type stationRecord struct {
	code string
	in   []timedEvent
	out  []timedEvent
}

// Build replays the order's full event history into a rank-ordered timeline
// plus whole-order statistics. Events with unparseable timestamps are skipped
// and counted; an empty input yields an empty timeline with zeroed
// statistics, never an error. Order and SKU on the report are left for the
// caller to fill.
func (e *Engine) Build(events []models.Event) *models.TraceReport {
	report := &models.TraceReport{
		StationTimeline: []models.TimelineEntry{},
		Statistics: models.TraceStatistics{
			TotalProcessTime:  formatDuration(0),
			StationYieldRates: map[string]float64{},
		},
	}

	stations, skipped := e.group(events)
	report.SkippedEvents = skipped
	if len(stations) == 0 {
		return report
	}

	// First station: lowest rank among stations with at least one OUT.
	firstStation := ""
	for _, st := range stations {
		if len(st.out) > 0 {
			firstStation = st.code
			break
		}
	}

	var (
		carry        *int // good output of the previously iterated station
		totalSeconds int
		finalStation string
		latestOut    time.Time
	)

	for _, st := range stations {
		inSum := sumQty(st.in)
		outSum := sumQty(st.out)
		goodSum := sumGoodQty(st.out)

		input := inSum
		if st.code != firstStation && carry != nil {
			input = *carry
		}

		entry := models.TimelineEntry{
			Station:       st.code,
			InputQty:      input,
			OutputQty:     outSum,
			OutputGoodQty: goodSum,
			OutputBadQty:  outSum - goodSum,
		}

		if len(st.in) > 0 {
			entry.FirstIn = st.in[0].at.Format(models.TimestampLayout)
		}
		if len(st.out) > 0 {
			last := st.out[len(st.out)-1].at
			entry.LastOut = last.Format(models.TimestampLayout)
			if last.After(latestOut) {
				latestOut = last
				finalStation = st.code
			}
		}
		if len(st.in) > 0 && len(st.out) > 0 {
			seconds := int(st.out[len(st.out)-1].at.Sub(st.in[0].at).Seconds())
			if seconds < 0 {
				seconds = 0
			}
			entry.Elapsed = formatDuration(seconds)
			totalSeconds += seconds

			if inSum > 0 {
				report.Statistics.StationYieldRates[st.code] = round2(float64(goodSum) / float64(inSum) * 100)
			} else {
				report.Statistics.StationYieldRates[st.code] = 0
			}
		}

		report.StationTimeline = append(report.StationTimeline, entry)

		g := goodSum
		carry = &g
	}

	stats := &report.Statistics
	stats.TotalProcessTime = formatDuration(totalSeconds)
	stats.FinalStation = finalStation

	for _, entry := range report.StationTimeline {
		if firstStation != "" && entry.Station == firstStation {
			stats.TotalQty = entry.OutputQty
		}
		if finalStation != "" && entry.Station == finalStation {
			stats.FinalGoodQty = entry.OutputGoodQty
		}
	}

	stats.TotalDefectQty = stats.TotalQty - stats.FinalGoodQty
	if stats.TotalQty > 0 {
		rate := round2(float64(stats.FinalGoodQty) / float64(stats.TotalQty) * 100)
		stats.FirstPassRate = rate
		stats.YieldRate = rate
	}

	return report
}

// group splits events per station into time-sorted IN and OUT lists and
// returns the stations in rank order.
func (e *Engine) group(events []models.Event) ([]*stationRecord, int) {
	byCode := make(map[string]*stationRecord)
	skipped := 0

	for _, ev := range events {
		at, err := ParseTimestamp(ev.Timestamp)
		if err != nil {
			skipped++
			e.logger.Debug("skip event with unparseable timestamp",
				zap.String("timestamp", ev.Timestamp),
				zap.String("order", ev.Order),
				zap.Error(err))
			continue
		}

		code := strings.ToUpper(strings.TrimSpace(ev.Process))
		st := byCode[code]
		if st == nil {
			st = &stationRecord{code: code}
			byCode[code] = st
		}

		te := timedEvent{at: at, qty: parseQty(ev.Qty), status: strings.TrimSpace(ev.Status)}
		switch strings.ToUpper(strings.TrimSpace(ev.Action)) {
		case models.ActionIn:
			st.in = append(st.in, te)
		case models.ActionOut:
			st.out = append(st.out, te)
		}
	}

	stations := make([]*stationRecord, 0, len(byCode))
	for _, st := range byCode {
		sort.SliceStable(st.in, func(i, j int) bool { return st.in[i].at.Before(st.in[j].at) })
		sort.SliceStable(st.out, func(i, j int) bool { return st.out[i].at.Before(st.out[j].at) })
		stations = append(stations, st)
	}

	sort.Slice(stations, func(i, j int) bool {
		ri, rj := e.rank(stations[i].code), e.rank(stations[j].code)
		if ri != rj {
			return ri < rj
		}
		return stations[i].code < stations[j].code
	})

	return stations, skipped
}

func (e *Engine) rank(code string) int {
	if r, ok := e.ranks[code]; ok {
		return r
	}
	return len(e.ranks)
}

// ParseTimestamp parses a log timestamp under any accepted layout.
func ParseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}

	var lastErr error
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func parseQty(value string) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	return n
}

func sumQty(events []timedEvent) int {
	total := 0
	for _, ev := range events {
		total += ev.qty
	}
	return total
}

func sumGoodQty(events []timedEvent) int {
	total := 0
	for _, ev := range events {
		if ev.status == models.StatusGood {
			total += ev.qty
		}
	}
	return total
}

func formatDuration(seconds int) string {
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, seconds%3600/60, seconds%60)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

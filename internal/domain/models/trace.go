package models

import "time"

// TimelineEntry is the per-station aggregate of one order's movements,
// rebuilt on every trace query. InputQty for stations beyond the first is the
// carried-forward good output of the preceding station, not the logged IN sum.
type TimelineEntry struct {
	Station       string `json:"station" bson:"station"`
	InputQty      int    `json:"input_qty" bson:"input_qty"`
	OutputQty     int    `json:"output_qty" bson:"output_qty"`
	OutputGoodQty int    `json:"output_good_qty" bson:"output_good_qty"`
	OutputBadQty  int    `json:"output_bad_qty" bson:"output_bad_qty"`
	FirstIn       string `json:"first_in,omitempty" bson:"first_in,omitempty"`
	LastOut       string `json:"last_out,omitempty" bson:"last_out,omitempty"`
	Elapsed       string `json:"elapsed,omitempty" bson:"elapsed,omitempty"`
}

// TraceStatistics summarizes yield across the whole order.
type TraceStatistics struct {
	TotalQty          int                `json:"total_qty" bson:"total_qty"`
	FinalStation      string             `json:"final_station" bson:"final_station"`
	FinalGoodQty      int                `json:"final_good_qty" bson:"final_good_qty"`
	TotalDefectQty    int                `json:"total_defect_qty" bson:"total_defect_qty"`
	FirstPassRate     float64            `json:"first_pass_rate" bson:"first_pass_rate"`
	YieldRate         float64            `json:"yield_rate" bson:"yield_rate"`
	TotalProcessTime  string             `json:"total_process_time" bson:"total_process_time"`
	StationYieldRates map[string]float64 `json:"station_yield_rates" bson:"station_yield_rates"`
}

// TraceReport is the full reply of a trace query: the station timeline in
// process-rank order plus order-level statistics. SkippedEvents counts log
// rows dropped for unparseable timestamps.
type TraceReport struct {
	Order           string          `json:"order" bson:"order"`
	SKU             string          `json:"sku" bson:"sku"`
	StationTimeline []TimelineEntry `json:"station_timeline" bson:"station_timeline"`
	Statistics      TraceStatistics `json:"statistics" bson:"statistics"`
	SkippedEvents   int             `json:"skipped_events" bson:"skipped_events"`
}

// TraceArchive is the MongoDB document persisted for each generated report.
type TraceArchive struct {
	Order     string      `bson:"order" json:"order"`
	Report    TraceReport `bson:"report" json:"report"`
	CreatedAt time.Time   `bson:"created_at" json:"created_at"`
}

package models

// Movement actions recorded in the event log.
const (
	ActionIn  = "IN"
	ActionOut = "OUT"
)

// StatusGood is the quality disposition for good units; any other status
// letter is a defect category.
const StatusGood = "G"

// TimestampLayout is the canonical layout written into the Logs worksheet.
const TimestampLayout = "2006-01-02 15:04:05"

// Event is one append-only movement row in the Logs worksheet. Fields mirror
// the worksheet columns verbatim, as strings, since the sheet is the source
// of truth; numeric interpretation happens at aggregation time.
type Event struct {
	Timestamp      string `json:"timestamp"`
	Action         string `json:"action"`
	Operator       string `json:"operator"`
	Order          string `json:"order"`
	Process        string `json:"process"`
	SKU            string `json:"sku"`
	Container      string `json:"container"`
	BoxSeq         string `json:"box_seq"`
	Qty            string `json:"qty"`
	Status         string `json:"status"`
	CycleTime      string `json:"cycle_time"`
	ScannedBarcode string `json:"scanned_barcode"`
	NewBarcode     string `json:"new_barcode"`
}

package sheets

import (
	"fmt"
	"strings"

	"github.com/mamadbah2/wiptrace/internal/domain/models"
)

// Columns is the worksheet column order. It must stay in sync with
// models.Event.
var Columns = []string{
	"timestamp",
	"action",
	"operator",
	"order",
	"process",
	"sku",
	"container",
	"box_seq",
	"qty",
	"status",
	"cycle_time",
	"scanned_barcode",
	"new_barcode",
}

// DecodeRows turns raw sheet rows into events. When the first row is a
// header it drives column resolution, including decorated headers; otherwise
// every row is decoded positionally.
func DecodeRows(rows [][]interface{}) []models.Event {
	if len(rows) == 0 {
		return nil
	}

	start := 0
	mapping := Columns
	if isHeaderRow(rows[0]) {
		mapping = headerMapping(rows[0])
		start = 1
	}

	events := make([]models.Event, 0, len(rows)-start)
	for _, row := range rows[start:] {
		if len(row) == 0 {
			continue
		}
		events = append(events, decodeRow(row, mapping))
	}

	return events
}

// EncodeEvent renders an event in worksheet column order.
func EncodeEvent(event models.Event) []interface{} {
	return []interface{}{
		event.Timestamp,
		event.Action,
		event.Operator,
		event.Order,
		event.Process,
		event.SKU,
		event.Container,
		event.BoxSeq,
		event.Qty,
		event.Status,
		event.CycleTime,
		event.ScannedBarcode,
		event.NewBarcode,
	}
}

// HeaderKey strips the decoration from a header cell: "order (工單號)" → "order".
func HeaderKey(header string) string {
	if i := strings.Index(header, "("); i >= 0 {
		header = header[:i]
	}
	return strings.TrimSpace(header)
}

func isHeaderRow(row []interface{}) bool {
	if len(row) == 0 {
		return false
	}
	return HeaderKey(cellString(row[0])) == Columns[0]
}

// headerMapping resolves each header position to a column name, falling back
// to the positional column for unrecognized headers.
func headerMapping(header []interface{}) []string {
	known := make(map[string]bool, len(Columns))
	for _, col := range Columns {
		known[col] = true
	}

	mapping := make([]string, len(header))
	for i, cell := range header {
		key := HeaderKey(cellString(cell))
		switch {
		case known[key]:
			mapping[i] = key
		case i < len(Columns):
			mapping[i] = Columns[i]
		}
	}
	return mapping
}

func decodeRow(row []interface{}, mapping []string) models.Event {
	var event models.Event
	for i, cell := range row {
		if i >= len(mapping) {
			break
		}
		setField(&event, mapping[i], cellString(cell))
	}
	return event
}

func setField(event *models.Event, column, value string) {
	switch column {
	case "timestamp":
		event.Timestamp = value
	case "action":
		event.Action = value
	case "operator":
		event.Operator = value
	case "order":
		event.Order = value
	case "process":
		event.Process = value
	case "sku":
		event.SKU = value
	case "container":
		event.Container = value
	case "box_seq":
		event.BoxSeq = value
	case "qty":
		event.Qty = value
	case "status":
		event.Status = value
	case "cycle_time":
		event.CycleTime = value
	case "scanned_barcode":
		event.ScannedBarcode = value
	case "new_barcode":
		event.NewBarcode = value
	}
}

func cellString(cell interface{}) string {
	if cell == nil {
		return ""
	}
	if s, ok := cell.(string); ok {
		return s
	}
	return fmt.Sprint(cell)
}

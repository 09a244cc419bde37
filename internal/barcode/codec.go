// Package barcode implements the fixed-width 34-character movement barcode:
// eight dash-separated fields
// [order 8]-[process 2]-[sku 5]-[container 2]-[box_seq 2]-[status 1]-[qty 4]-[checksum 3].
package barcode

import (
	"errors"
	"regexp"
	"strings"
)

// ErrMalformed indicates a barcode that does not match the fixed format.
var ErrMalformed = errors.New("malformed barcode")

// ProcessUnrouted is the sentinel process code on barcodes minted before the
// order enters the line.
const ProcessUnrouted = "ZZ"

var pattern = regexp.MustCompile(
	`^([A-Z0-9]{8})-([A-Z0-9]{2})-([A-Z0-9]{5})-([A-Z0-9]{2})-([0-9]{2})-([A-Z])-([0-9]{4})-([A-Z0-9]{3})$`)

// Fields holds the decoded barcode. Immutable once parsed.
type Fields struct {
	Order     string
	Process   string
	SKU       string
	Container string
	BoxSeq    string
	Status    string
	Qty       string
	Checksum  string
}

// Parse decodes a full barcode strictly. Any deviation from the fixed
// pattern (field width, alphabet, field count) yields nil.
func Parse(code string) *Fields {
	m := pattern.FindStringSubmatch(strings.TrimSpace(code))
	if m == nil {
		return nil
	}

	return &Fields{
		Order:     m[1],
		Process:   m[2],
		SKU:       m[3],
		Container: m[4],
		BoxSeq:    m[5],
		Status:    m[6],
		Qty:       m[7],
		Checksum:  m[8],
	}
}

// ParsePartial decodes incomplete barcodes, in particular the "order-ZZ[-sku]"
// form scanned before an order is routed. An optional "b=" prefix left over
// from URL-embedded codes is stripped. Order and process are normalized to
// their fixed widths; trailing fields are taken positionally when present and
// left empty otherwise. Returns nil when order or process is missing.
func ParsePartial(code string) *Fields {
	code = strings.TrimSpace(code)
	if rest, ok := strings.CutPrefix(code, "b="); ok {
		code = strings.TrimSpace(rest)
	}

	parts := strings.Split(code, "-")
	if len(parts) < 2 {
		return nil
	}

	order := strings.TrimSpace(parts[0])
	process := strings.TrimSpace(parts[1])
	if order == "" || process == "" {
		return nil
	}

	f := &Fields{
		Order:   padRight(order, 8),
		Process: padRight(process, 2),
	}
	if len(parts) > 2 {
		f.SKU = parts[2]
	}
	if len(parts) > 3 {
		f.Container = parts[3]
	}
	if len(parts) > 4 {
		f.BoxSeq = parts[4]
	}
	if len(parts) > 5 {
		f.Status = parts[5]
	}
	if len(parts) > 6 {
		f.Qty = parts[6]
	}
	if len(parts) > 7 {
		f.Checksum = parts[7]
	}

	return f
}

// SeriesOf returns the 2-character product series prefix of a SKU, or "" when
// the SKU is too short.
func SeriesOf(sku string) string {
	if len(sku) < 2 {
		return ""
	}
	return sku[:2]
}

// ModelOf returns the 3-character model suffix of a SKU, or "" when the SKU
// is too short.
func ModelOf(sku string) string {
	if len(sku) < 5 {
		return ""
	}
	return sku[2:5]
}

// Generate normalizes each field to its fixed width, joins with dashes and
// appends the checksum. Over-width values are silently truncated; numeric
// fields are left-zero-padded. Pure: identical inputs yield identical codes.
func Generate(order, process, sku, container, boxSeq, status, qty string) string {
	status = strings.ToUpper(status)
	if len(status) > 1 {
		status = status[:1]
	}

	data := strings.Join([]string{
		padRight(order, 8),
		padRight(process, 2),
		padRight(sku, 5),
		padRight(container, 2),
		padLeft(boxSeq, 2),
		status,
		padLeft(qty, 4),
	}, "-")

	return data + "-" + Checksum(data)
}

// GenerateFromPrevious re-mints a barcode as a unit leaves a station: order
// and SKU carry over, the process becomes newProcess, and each remaining
// field is replaced only when its override is non-empty. The previous barcode
// must parse strictly.
func GenerateFromPrevious(previous, newProcess, newContainer, newBoxSeq, newStatus, newQty string) (string, error) {
	parsed := Parse(previous)
	if parsed == nil {
		return "", ErrMalformed
	}

	return Generate(
		parsed.Order,
		newProcess,
		parsed.SKU,
		orElse(newContainer, parsed.Container),
		orElse(newBoxSeq, parsed.BoxSeq),
		orElse(newStatus, parsed.Status),
		orElse(newQty, parsed.Qty),
	), nil
}

// padRight uppercases and right-pads with '0' to width, truncating overflow.
func padRight(s string, width int) string {
	s = strings.ToUpper(s)
	for len(s) < width {
		s += "0"
	}
	return s[:width]
}

// padLeft left-zero-pads to width, truncating overflow from the right.
func padLeft(s string, width int) string {
	for len(s) < width {
		s = "0" + s
	}
	return s[:width]
}

func orElse(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}

package scan

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/wiptrace/internal/barcode"
	"github.com/mamadbah2/wiptrace/internal/config"
	"github.com/mamadbah2/wiptrace/internal/domain/models"
	"github.com/mamadbah2/wiptrace/internal/flow"
	"github.com/mamadbah2/wiptrace/internal/trace"
)

// validCode parses cleanly and carries a matching checksum.
const validCode = "251119AA-P1-ST352-A1-01-G-0100-CD5"

// badChecksumCode is structurally valid but its checksum field is wrong.
const badChecksumCode = "251119AA-P1-ST352-A1-01-G-0100-000"

type fakeLog struct {
	events   []models.Event
	appended []models.Event
	queryErr error
	writeErr error
}

func (f *fakeLog) EventsByOrder(ctx context.Context, order string) ([]models.Event, error) {
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	matched := make([]models.Event, 0)
	for _, ev := range f.events {
		if ev.Order == order {
			matched = append(matched, ev)
		}
	}
	return matched, nil
}

func (f *fakeLog) EventsByBarcode(ctx context.Context, code string) ([]models.Event, error) {
	return nil, nil
}

func (f *fakeLog) Append(ctx context.Context, event models.Event) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.appended = append(f.appended, event)
	return nil
}

func (f *fakeLog) Refresh(ctx context.Context) error { return nil }

type fakeArchive struct {
	saved   []models.TraceArchive
	saveErr error
}

func (f *fakeArchive) SaveTraceArchive(ctx context.Context, archive models.TraceArchive) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, archive)
	return nil
}

type fakeRenderer struct {
	svg string
	err error
}

func (f *fakeRenderer) RenderSVG(ctx context.Context, content string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.svg, nil
}

func testVocabulary() *config.Vocabulary {
	return &config.Vocabulary{
		Stations: []config.Station{{Code: "P1"}, {Code: "P2"}, {Code: "P3"}},
		Series:   map[string]string{"ST": "Standard", "AC": "Acoustic"},
		Models:   map[string]string{"352": "Rev A", "52": "Rev B"},
		Flows:    map[string][]string{"DEFAULT": {"P1", "P2", "P3"}},
	}
}

func newTestService(log *fakeLog, archive *fakeArchive, qr *fakeRenderer) *Service {
	vocab := testVocabulary()
	engine := trace.NewEngine(vocab.StationCodes(), nil)
	flows := flow.NewValidator(vocab.Flows)

	// The archive and renderer are optional and interface-typed; a typed nil
	// pointer would dodge the service's nil checks.
	svc := NewService(log, nil, engine, flows, vocab, nil, nil)
	if archive != nil {
		svc.archive = archive
	}
	if qr != nil {
		svc.qr = qr
	}
	svc.now = func() time.Time { return time.Date(2025, 1, 2, 8, 30, 0, 0, time.UTC) }
	return svc
}

func TestInbound(t *testing.T) {
	t.Run("records the movement", func(t *testing.T) {
		log := &fakeLog{}
		svc := newTestService(log, nil, nil)

		result, err := svc.Inbound(context.Background(), models.InboundRequest{
			Barcode:          validCode,
			OperatorID:       "OP01",
			CurrentStationID: "P2",
		})
		require.NoError(t, err)

		assert.Equal(t, "251119AA", result.Order)
		assert.Equal(t, "ST352", result.SKU)
		assert.Equal(t, "P2", result.CurrentStation)
		assert.Equal(t, "P1", result.PrevStation)

		require.Len(t, log.appended, 1)
		ev := log.appended[0]
		assert.Equal(t, "2025-01-02 08:30:00", ev.Timestamp)
		assert.Equal(t, models.ActionIn, ev.Action)
		assert.Equal(t, "OP01", ev.Operator)
		assert.Equal(t, "P2", ev.Process)
		assert.Equal(t, "0100", ev.Qty)
		assert.Equal(t, validCode, ev.ScannedBarcode)
		assert.Empty(t, ev.NewBarcode)
	})

	t.Run("rejects malformed barcode", func(t *testing.T) {
		log := &fakeLog{}
		svc := newTestService(log, nil, nil)

		_, err := svc.Inbound(context.Background(), models.InboundRequest{
			Barcode: "not-a-barcode", OperatorID: "OP01", CurrentStationID: "P2",
		})
		assert.ErrorIs(t, err, ErrMalformedBarcode)
		assert.Empty(t, log.appended)
	})

	t.Run("rejects checksum mismatch", func(t *testing.T) {
		log := &fakeLog{}
		svc := newTestService(log, nil, nil)

		_, err := svc.Inbound(context.Background(), models.InboundRequest{
			Barcode: badChecksumCode, OperatorID: "OP01", CurrentStationID: "P2",
		})
		assert.ErrorIs(t, err, ErrChecksumMismatch)
		assert.Empty(t, log.appended)
	})

	t.Run("rejects an out-of-sequence station", func(t *testing.T) {
		log := &fakeLog{}
		svc := newTestService(log, nil, nil)

		_, err := svc.Inbound(context.Background(), models.InboundRequest{
			Barcode: validCode, OperatorID: "OP01", CurrentStationID: "P3",
		})
		require.ErrorIs(t, err, ErrFlowRejected)
		assert.Contains(t, err.Error(), "P2")
		assert.Empty(t, log.appended)
	})

	t.Run("surfaces log write failure", func(t *testing.T) {
		log := &fakeLog{writeErr: errors.New("sheet unavailable")}
		svc := newTestService(log, nil, nil)

		_, err := svc.Inbound(context.Background(), models.InboundRequest{
			Barcode: validCode, OperatorID: "OP01", CurrentStationID: "P2",
		})
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrMalformedBarcode)
		assert.NotErrorIs(t, err, ErrFlowRejected)
		assert.Contains(t, err.Error(), "sheet unavailable")
	})
}

func TestOutbound(t *testing.T) {
	t.Run("mints the next barcode with carried fields", func(t *testing.T) {
		log := &fakeLog{}
		qr := &fakeRenderer{svg: "<svg/>"}
		svc := newTestService(log, nil, qr)

		result, err := svc.Outbound(context.Background(), models.OutboundRequest{
			Barcode:          validCode,
			OperatorID:       "OP01",
			CurrentStationID: "P2",
		})
		require.NoError(t, err)

		assert.True(t, strings.HasPrefix(result.NewBarcode, "251119AA-P2-ST352-A1-01-G-0100-"))
		assert.True(t, barcode.Verify(result.NewBarcode))
		assert.Equal(t, "P2", result.CurrentStation)
		assert.Equal(t, "P3", result.NextStation)
		assert.Equal(t, "<svg/>", result.QRCodeSVG)

		require.Len(t, log.appended, 1)
		ev := log.appended[0]
		assert.Equal(t, models.ActionOut, ev.Action)
		assert.Equal(t, "P2", ev.Process)
		assert.Equal(t, "A1", ev.Container)
		assert.Equal(t, "0100", ev.Qty)
		assert.Equal(t, validCode, ev.ScannedBarcode)
		assert.Equal(t, result.NewBarcode, ev.NewBarcode)
	})

	t.Run("request overrides replace carried fields", func(t *testing.T) {
		log := &fakeLog{}
		svc := newTestService(log, nil, nil)

		result, err := svc.Outbound(context.Background(), models.OutboundRequest{
			Barcode:          validCode,
			OperatorID:       "OP01",
			CurrentStationID: "P2",
			Container:        "B1",
			BoxSeq:           "02",
			Status:           "N",
			Qty:              "90",
		})
		require.NoError(t, err)

		assert.True(t, strings.HasPrefix(result.NewBarcode, "251119AA-P2-ST352-B1-02-N-0090-"))

		require.Len(t, log.appended, 1)
		ev := log.appended[0]
		assert.Equal(t, "B1", ev.Container)
		assert.Equal(t, "02", ev.BoxSeq)
		assert.Equal(t, "N", ev.Status)
		assert.Equal(t, "90", ev.Qty)
	})

	t.Run("terminal station has no next hop", func(t *testing.T) {
		svc := newTestService(&fakeLog{}, nil, nil)

		result, err := svc.Outbound(context.Background(), models.OutboundRequest{
			Barcode: validCode, OperatorID: "OP01", CurrentStationID: "P3",
		})
		require.NoError(t, err)
		assert.Empty(t, result.NextStation)
	})

	t.Run("qr failure degrades to an empty image", func(t *testing.T) {
		qr := &fakeRenderer{err: errors.New("renderer down")}
		svc := newTestService(&fakeLog{}, nil, qr)

		result, err := svc.Outbound(context.Background(), models.OutboundRequest{
			Barcode: validCode, OperatorID: "OP01", CurrentStationID: "P2",
		})
		require.NoError(t, err)
		assert.Empty(t, result.QRCodeSVG)
	})

	t.Run("rejects checksum mismatch before minting", func(t *testing.T) {
		log := &fakeLog{}
		svc := newTestService(log, nil, nil)

		_, err := svc.Outbound(context.Background(), models.OutboundRequest{
			Barcode: badChecksumCode, OperatorID: "OP01", CurrentStationID: "P2",
		})
		assert.ErrorIs(t, err, ErrChecksumMismatch)
		assert.Empty(t, log.appended)
	})
}

func TestFirstStation(t *testing.T) {
	baseRequest := func() models.FirstStationRequest {
		return models.FirstStationRequest{
			Order:            "251119ab",
			OperatorID:       "OP01",
			CurrentStationID: "P1",
			SeriesCode:       "st",
			ModelCode:        "352",
			Container:        "A1",
			BoxSeq:           "01",
			Status:           "G",
			Qty:              "0100",
		}
	}

	t.Run("mints the order's first barcode", func(t *testing.T) {
		log := &fakeLog{}
		qr := &fakeRenderer{svg: "<svg/>"}
		svc := newTestService(log, nil, qr)

		result, err := svc.FirstStation(context.Background(), baseRequest())
		require.NoError(t, err)

		assert.Equal(t, "251119AB", result.Order)
		assert.Equal(t, "ST352", result.SKU)
		assert.True(t, strings.HasPrefix(result.Barcode, "251119AB-P1-ST352-A1-01-G-0100-"))
		assert.True(t, barcode.Verify(result.Barcode))
		assert.Equal(t, "P2", result.NextStation)
		assert.Equal(t, "<svg/>", result.QRCodeSVG)

		require.Len(t, log.appended, 1)
		ev := log.appended[0]
		assert.Equal(t, models.ActionOut, ev.Action)
		assert.Equal(t, "251119AB", ev.Order)
		assert.Equal(t, "ST352", ev.SKU)
		assert.Empty(t, ev.ScannedBarcode)
		assert.Equal(t, result.Barcode, ev.NewBarcode)
	})

	t.Run("zero-pads short model codes", func(t *testing.T) {
		svc := newTestService(&fakeLog{}, nil, nil)

		req := baseRequest()
		req.ModelCode = "52"
		result, err := svc.FirstStation(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, "ST052", result.SKU)
	})

	t.Run("rejects unknown series", func(t *testing.T) {
		log := &fakeLog{}
		svc := newTestService(log, nil, nil)

		req := baseRequest()
		req.SeriesCode = "XX"
		_, err := svc.FirstStation(context.Background(), req)
		assert.ErrorIs(t, err, ErrUnknownSeries)
		assert.Empty(t, log.appended)
	})

	t.Run("rejects unknown model", func(t *testing.T) {
		log := &fakeLog{}
		svc := newTestService(log, nil, nil)

		req := baseRequest()
		req.ModelCode = "999"
		_, err := svc.FirstStation(context.Background(), req)
		assert.ErrorIs(t, err, ErrUnknownModel)
		assert.Empty(t, log.appended)
	})
}

func TestTrace(t *testing.T) {
	orderEvents := []models.Event{
		{Timestamp: "2025-01-01 08:00:00", Action: "IN", Order: "251119AA", Process: "P1", Qty: "100", Status: "G"},
		{Timestamp: "2025-01-01 09:00:00", Action: "OUT", Order: "251119AA", Process: "P1", Qty: "100", Status: "G"},
	}

	t.Run("builds and archives the report", func(t *testing.T) {
		log := &fakeLog{events: orderEvents}
		archive := &fakeArchive{}
		svc := newTestService(log, archive, nil)

		report, err := svc.Trace(context.Background(), models.TraceRequest{Barcode: validCode})
		require.NoError(t, err)

		assert.Equal(t, "251119AA", report.Order)
		assert.Equal(t, "ST352", report.SKU)
		require.Len(t, report.StationTimeline, 1)
		assert.Equal(t, 100, report.StationTimeline[0].OutputQty)

		require.Len(t, archive.saved, 1)
		assert.Equal(t, "251119AA", archive.saved[0].Order)
		assert.Equal(t, time.Date(2025, 1, 2, 8, 30, 0, 0, time.UTC), archive.saved[0].CreatedAt)
	})

	t.Run("tolerates a stale checksum on the scanned code", func(t *testing.T) {
		log := &fakeLog{events: orderEvents}
		svc := newTestService(log, nil, nil)

		report, err := svc.Trace(context.Background(), models.TraceRequest{Barcode: badChecksumCode})
		require.NoError(t, err)
		assert.Equal(t, "251119AA", report.Order)
	})

	t.Run("archive failure does not fail the query", func(t *testing.T) {
		log := &fakeLog{events: orderEvents}
		archive := &fakeArchive{saveErr: errors.New("mongo down")}
		svc := newTestService(log, archive, nil)

		report, err := svc.Trace(context.Background(), models.TraceRequest{Barcode: validCode})
		require.NoError(t, err)
		assert.NotNil(t, report)
	})

	t.Run("works without an archive", func(t *testing.T) {
		svc := newTestService(&fakeLog{events: orderEvents}, nil, nil)

		_, err := svc.Trace(context.Background(), models.TraceRequest{Barcode: validCode})
		assert.NoError(t, err)
	})

	t.Run("rejects malformed barcode", func(t *testing.T) {
		svc := newTestService(&fakeLog{}, nil, nil)

		_, err := svc.Trace(context.Background(), models.TraceRequest{Barcode: "???"})
		assert.ErrorIs(t, err, ErrMalformedBarcode)
	})

	t.Run("surfaces event log failure", func(t *testing.T) {
		log := &fakeLog{queryErr: errors.New("snapshot unavailable")}
		svc := newTestService(log, nil, nil)

		_, err := svc.Trace(context.Background(), models.TraceRequest{Barcode: validCode})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "snapshot unavailable")
	})
}

// Package scan orchestrates the four barcode operations: inbound, outbound,
// first-station minting and trace queries.
package scan

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/wiptrace/internal/barcode"
	"github.com/mamadbah2/wiptrace/internal/config"
	"github.com/mamadbah2/wiptrace/internal/domain/models"
	"github.com/mamadbah2/wiptrace/internal/eventlog"
	"github.com/mamadbah2/wiptrace/internal/flow"
	"github.com/mamadbah2/wiptrace/internal/repository/mongodb"
	"github.com/mamadbah2/wiptrace/internal/trace"
	"github.com/mamadbah2/wiptrace/pkg/clients/qrimage"
)

// ErrMalformedBarcode indicates the scanned string does not match the
// barcode format.
var ErrMalformedBarcode = errors.New("barcode cannot be parsed")

// ErrChecksumMismatch indicates a structurally valid barcode whose checksum
// disagrees with its content.
var ErrChecksumMismatch = errors.New("barcode checksum mismatch")

// ErrFlowRejected indicates the movement violates the configured process
// sequence.
var ErrFlowRejected = errors.New("process flow rejected")

// ErrUnknownSeries indicates a series code absent from the vocabulary.
var ErrUnknownSeries = errors.New("unknown series code")

// ErrUnknownModel indicates a model code absent from the vocabulary.
var ErrUnknownModel = errors.New("unknown model code")

// Service implements the scan operations against the injected collaborators.
type Service struct {
	log     eventlog.Log
	archive mongodb.Repository
	engine  *trace.Engine
	flows   *flow.Validator
	vocab   *config.Vocabulary
	qr      qrimage.Renderer
	logger  *zap.Logger
	now     func() time.Time
}

// NewService constructs a scan service. The archive and QR renderer are
// optional; when nil the corresponding feature is skipped.
func NewService(log eventlog.Log, archive mongodb.Repository, engine *trace.Engine, flows *flow.Validator, vocab *config.Vocabulary, qr qrimage.Renderer, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		log:     log,
		archive: archive,
		engine:  engine,
		flows:   flows,
		vocab:   vocab,
		qr:      qr,
		logger:  logger,
		now:     time.Now,
	}
}

// Inbound records a box entering a station after validating the scanned
// barcode and the process flow.
func (s *Service) Inbound(ctx context.Context, req models.InboundRequest) (*models.InboundResult, error) {
	parsed, err := s.verifiedParse(req.Barcode)
	if err != nil {
		return nil, err
	}

	series := barcode.SeriesOf(parsed.SKU)
	if err := s.flows.Validate(series, parsed.Process, req.CurrentStationID); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrFlowRejected, err)
	}

	event := models.Event{
		Timestamp:      s.now().Format(models.TimestampLayout),
		Action:         models.ActionIn,
		Operator:       req.OperatorID,
		Order:          parsed.Order,
		Process:        req.CurrentStationID,
		SKU:            parsed.SKU,
		Container:      parsed.Container,
		BoxSeq:         parsed.BoxSeq,
		Qty:            parsed.Qty,
		Status:         parsed.Status,
		CycleTime:      "0",
		ScannedBarcode: req.Barcode,
	}

	if err := s.log.Append(ctx, event); err != nil {
		return nil, fmt.Errorf("append inbound event: %w", err)
	}

	return &models.InboundResult{
		Order:          parsed.Order,
		SKU:            parsed.SKU,
		CurrentStation: req.CurrentStationID,
		PrevStation:    parsed.Process,
	}, nil
}

// Outbound records a box leaving a station and mints its replacement
// barcode, carrying over any field not overridden in the request.
func (s *Service) Outbound(ctx context.Context, req models.OutboundRequest) (*models.OutboundResult, error) {
	parsed, err := s.verifiedParse(req.Barcode)
	if err != nil {
		return nil, err
	}

	newCode, err := barcode.GenerateFromPrevious(req.Barcode, req.CurrentStationID, req.Container, req.BoxSeq, req.Status, req.Qty)
	if err != nil {
		return nil, ErrMalformedBarcode
	}

	event := models.Event{
		Timestamp:      s.now().Format(models.TimestampLayout),
		Action:         models.ActionOut,
		Operator:       req.OperatorID,
		Order:          parsed.Order,
		Process:        req.CurrentStationID,
		SKU:            parsed.SKU,
		Container:      orElse(req.Container, parsed.Container),
		BoxSeq:         orElse(req.BoxSeq, parsed.BoxSeq),
		Qty:            orElse(req.Qty, parsed.Qty),
		Status:         orElse(req.Status, parsed.Status),
		CycleTime:      "0",
		ScannedBarcode: req.Barcode,
		NewBarcode:     newCode,
	}

	if err := s.log.Append(ctx, event); err != nil {
		return nil, fmt.Errorf("append outbound event: %w", err)
	}

	return &models.OutboundResult{
		NewBarcode:     newCode,
		Order:          parsed.Order,
		CurrentStation: req.CurrentStationID,
		NextStation:    s.flows.NextStation(barcode.SeriesOf(parsed.SKU), req.CurrentStationID),
		QRCodeSVG:      s.renderQR(ctx, newCode),
	}, nil
}

// FirstStation mints the very first barcode of an order from manually
// entered data and records the first OUT movement.
func (s *Service) FirstStation(ctx context.Context, req models.FirstStationRequest) (*models.FirstStationResult, error) {
	seriesCode := strings.ToUpper(strings.TrimSpace(req.SeriesCode))
	if !s.vocab.HasSeries(seriesCode) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSeries, req.SeriesCode)
	}
	if !s.vocab.HasModel(strings.TrimSpace(req.ModelCode)) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownModel, req.ModelCode)
	}

	sku := seriesCode + zeroPad3(strings.TrimSpace(req.ModelCode))
	order := strings.ToUpper(strings.TrimSpace(req.Order))

	code := barcode.Generate(order, req.CurrentStationID, sku, req.Container, req.BoxSeq, req.Status, req.Qty)

	event := models.Event{
		Timestamp:  s.now().Format(models.TimestampLayout),
		Action:     models.ActionOut,
		Operator:   req.OperatorID,
		Order:      order,
		Process:    req.CurrentStationID,
		SKU:        sku,
		Container:  req.Container,
		BoxSeq:     req.BoxSeq,
		Qty:        req.Qty,
		Status:     req.Status,
		CycleTime:  "0",
		NewBarcode: code,
	}

	if err := s.log.Append(ctx, event); err != nil {
		return nil, fmt.Errorf("append first station event: %w", err)
	}

	return &models.FirstStationResult{
		Barcode:        code,
		Order:          order,
		SKU:            sku,
		CurrentStation: req.CurrentStationID,
		NextStation:    s.flows.NextStation(seriesCode, req.CurrentStationID),
		QRCodeSVG:      s.renderQR(ctx, code),
	}, nil
}

// Trace rebuilds the full trace report for the order embedded in the scanned
// barcode and archives it best-effort.
func (s *Service) Trace(ctx context.Context, req models.TraceRequest) (*models.TraceReport, error) {
	parsed := barcode.Parse(req.Barcode)
	if parsed == nil {
		return nil, ErrMalformedBarcode
	}

	events, err := s.log.EventsByOrder(ctx, parsed.Order)
	if err != nil {
		return nil, fmt.Errorf("load events for order %s: %w", parsed.Order, err)
	}

	report := s.engine.Build(events)
	report.Order = parsed.Order
	report.SKU = parsed.SKU

	if s.archive != nil {
		archive := models.TraceArchive{Order: parsed.Order, Report: *report, CreatedAt: s.now()}
		if err := s.archive.SaveTraceArchive(ctx, archive); err != nil {
			s.logger.Warn("trace archive failed", zap.String("order", parsed.Order), zap.Error(err))
		}
	}

	return report, nil
}

// verifiedParse runs the strict parse then the checksum check, mapping each
// failure to its sentinel so callers can log which rejection happened.
func (s *Service) verifiedParse(code string) (*barcode.Fields, error) {
	parsed := barcode.Parse(code)
	if parsed == nil {
		return nil, ErrMalformedBarcode
	}
	if !barcode.Verify(code) {
		return nil, ErrChecksumMismatch
	}
	return parsed, nil
}

func (s *Service) renderQR(ctx context.Context, code string) string {
	if s.qr == nil {
		return ""
	}

	svg, err := s.qr.RenderSVG(ctx, code)
	if err != nil {
		s.logger.Warn("qr render failed", zap.Error(err))
		return ""
	}
	return svg
}

func orElse(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}

func zeroPad3(code string) string {
	for len(code) < 3 {
		code = "0" + code
	}
	return code[:3]
}

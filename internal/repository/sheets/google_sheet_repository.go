// Package sheets adapts the Logs worksheet of a Google spreadsheet into the
// typed event store the rest of the service works with. Header alias
// resolution (production sheets decorate headers, e.g. "order (工單號)")
// happens here and nowhere else.
package sheets

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/mamadbah2/wiptrace/internal/config"
	"github.com/mamadbah2/wiptrace/internal/domain/models"
)

// Repository defines the persistence operations backing the event log.
type Repository interface {
	ReadEvents(ctx context.Context) ([]models.Event, error)
	AppendEvent(ctx context.Context, event models.Event) error
}

// GoogleSheetRepository implements Repository using the official Google
// Sheets API.
type GoogleSheetRepository struct {
	service       *sheetsapi.Service
	spreadsheetID string
	logRange      string
	logger        *zap.Logger
}

// NewGoogleSheetRepository builds a Google Sheets backed event store.
func NewGoogleSheetRepository(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger) (*GoogleSheetRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	service, err := sheetsapi.NewService(ctx,
		option.WithCredentialsFile(cfg.CredentialsPath),
		option.WithScopes(sheetsapi.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}

	return &GoogleSheetRepository{
		service:       service,
		spreadsheetID: cfg.SpreadsheetID,
		logRange:      cfg.LogRange,
		logger:        logger,
	}, nil
}

// ReadEvents fetches and decodes every logged movement row.
func (r *GoogleSheetRepository) ReadEvents(ctx context.Context) ([]models.Event, error) {
	resp, err := r.service.Spreadsheets.Values.Get(r.spreadsheetID, r.logRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read range %s: %w", r.logRange, err)
	}

	events := DecodeRows(resp.Values)
	r.logger.Debug("events loaded from sheet", zap.Int("count", len(events)))
	return events, nil
}

// AppendEvent appends one movement row to the Logs worksheet.
func (r *GoogleSheetRepository) AppendEvent(ctx context.Context, event models.Event) error {
	payload := &sheetsapi.ValueRange{Values: [][]interface{}{EncodeEvent(event)}}

	call := r.service.Spreadsheets.Values.Append(r.spreadsheetID, r.logRange, payload).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx)

	if _, err := call.Do(); err != nil {
		return fmt.Errorf("append row into range %s: %w", r.logRange, err)
	}

	r.logger.Debug("event appended to sheet",
		zap.String("order", event.Order),
		zap.String("action", event.Action),
		zap.String("process", event.Process))
	return nil
}

// EnsureHeader writes the column header row when the worksheet is empty.
func (r *GoogleSheetRepository) EnsureHeader(ctx context.Context) error {
	resp, err := r.service.Spreadsheets.Values.Get(r.spreadsheetID, r.logRange).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read range %s: %w", r.logRange, err)
	}
	if len(resp.Values) > 0 {
		return nil
	}

	header := make([]interface{}, len(Columns))
	for i, col := range Columns {
		header[i] = col
	}

	payload := &sheetsapi.ValueRange{Values: [][]interface{}{header}}
	call := r.service.Spreadsheets.Values.Append(r.spreadsheetID, r.logRange, payload).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx)

	if _, err := call.Do(); err != nil {
		return fmt.Errorf("write header row: %w", err)
	}

	r.logger.Info("header row created", zap.String("range", r.logRange))
	return nil
}

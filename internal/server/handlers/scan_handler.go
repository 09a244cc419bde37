package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/wiptrace/internal/domain/models"
	"github.com/mamadbah2/wiptrace/internal/service/scan"
)

// ScanHandler exposes the barcode movement and trace endpoints.
type ScanHandler struct {
	svc    *scan.Service
	logger *zap.Logger
}

// NewScanHandler constructs the HTTP handler adapter.
func NewScanHandler(svc *scan.Service, logger *zap.Logger) *ScanHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScanHandler{svc: svc, logger: logger}
}

// Inbound handles POST /api/scan/inbound.
func (h *ScanHandler) Inbound(c *gin.Context) {
	var req models.InboundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid inbound payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request body"})
		return
	}

	result, err := h.svc.Inbound(c.Request.Context(), req)
	if err != nil {
		h.reject(c, err, "inbound")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "inbound recorded", "data": result})
}

// Outbound handles POST /api/scan/outbound.
func (h *ScanHandler) Outbound(c *gin.Context) {
	var req models.OutboundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid outbound payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request body"})
		return
	}

	result, err := h.svc.Outbound(c.Request.Context(), req)
	if err != nil {
		h.reject(c, err, "outbound")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "outbound recorded", "data": result})
}

// FirstStation handles POST /api/scan/first.
func (h *ScanHandler) FirstStation(c *gin.Context) {
	var req models.FirstStationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid first station payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request body"})
		return
	}

	result, err := h.svc.FirstStation(c.Request.Context(), req)
	if err != nil {
		h.reject(c, err, "first station")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "first station outbound recorded", "data": result})
}

// Trace handles POST /api/scan/trace.
func (h *ScanHandler) Trace(c *gin.Context) {
	var req models.TraceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid trace payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request body"})
		return
	}

	report, err := h.svc.Trace(c.Request.Context(), req)
	if err != nil {
		h.reject(c, err, "trace")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": report})
}

// reject maps service errors onto HTTP statuses. Malformed barcodes and
// checksum mismatches both reach the operator as a 400, but are logged
// distinctly.
func (h *ScanHandler) reject(c *gin.Context, err error, operation string) {
	switch {
	case errors.Is(err, scan.ErrMalformedBarcode),
		errors.Is(err, scan.ErrChecksumMismatch),
		errors.Is(err, scan.ErrFlowRejected),
		errors.Is(err, scan.ErrUnknownSeries),
		errors.Is(err, scan.ErrUnknownModel):
		h.logger.Warn("scan rejected", zap.String("operation", operation), zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
	default:
		h.logger.Error("scan failed", zap.String("operation", operation), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "error": "failed to record movement"})
	}
}

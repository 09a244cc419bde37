package handlers

import (
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"

	"github.com/mamadbah2/wiptrace/internal/config"
	"github.com/mamadbah2/wiptrace/internal/domain/models"
)

// VocabHandler serves the configured code tables to scanning clients.
type VocabHandler struct {
	vocab *config.Vocabulary
}

// NewVocabHandler constructs the vocabulary option handler.
func NewVocabHandler(vocab *config.Vocabulary) *VocabHandler {
	return &VocabHandler{vocab: vocab}
}

// Series handles GET /api/config/series.
func (h *VocabHandler) Series(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": optionList(h.vocab.Series)})
}

// Models handles GET /api/config/models.
func (h *VocabHandler) Models(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": optionList(h.vocab.Models)})
}

// Containers handles GET /api/config/containers.
func (h *VocabHandler) Containers(c *gin.Context) {
	options := make([]models.ContainerOption, 0, len(h.vocab.Containers))
	for code, capacity := range h.vocab.Containers {
		options = append(options, models.ContainerOption{Code: code, Capacity: capacity})
	}
	sort.Slice(options, func(i, j int) bool { return options[i].Code < options[j].Code })

	c.JSON(http.StatusOK, gin.H{"success": true, "data": options})
}

func optionList(table map[string]string) []models.VocabOption {
	options := make([]models.VocabOption, 0, len(table))
	for code, name := range table {
		options = append(options, models.VocabOption{Code: code, Name: name})
	}
	sort.Slice(options, func(i, j int) bool { return options[i].Code < options[j].Code })
	return options
}

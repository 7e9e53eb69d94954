package handlers

import (
	"net/http"
	"strconv"

	"github.com/abdulazizuv1/yes-english-center-sub001/internal/services"
	"github.com/abdulazizuv1/yes-english-center-sub001/internal/utils"
	"github.com/gin-gonic/gin"
)

type ScoringHandler struct {
	BaseHandler
	scoringService services.ScoringService
}

func NewScoringHandler(scoringService services.ScoringService, logger utils.Logger) *ScoringHandler {
	return &ScoringHandler{
		BaseHandler:    NewBaseHandler(logger),
		scoringService: scoringService,
	}
}

// Preview scores a test document against answers without storing anything
// @Summary Preview score
// @Tags scoring
// @Accept json
// @Produce json
// @Param preview body services.PreviewRequest true "Test document and answers"
// @Success 200 {object} services.PreviewResponse
// @Failure 400 {object} ErrorResponse
// @Router /scoring/preview [post]
func (h *ScoringHandler) Preview(c *gin.Context) {
	var req services.PreviewRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Previewing score", "module", req.Module)

	resp, err := h.scoringService.Preview(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetBand converts a raw score to a band
// @Summary Band lookup
// @Tags scoring
// @Produce json
// @Param module path string true "listening or reading"
// @Param correct path int true "Correct answers (0-40)"
// @Success 200 {object} services.BandResponse
// @Failure 400 {object} ErrorResponse
// @Router /scoring/bands/{module}/{correct} [get]
func (h *ScoringHandler) GetBand(c *gin.Context) {
	correct, err := strconv.Atoi(c.Param("correct"))
	if err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid correct", nil, err.Error())
		return
	}

	resp, err := h.scoringService.BandLookup(c.Request.Context(), c.Param("module"), correct)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// OverallBand averages module bands
// @Summary Overall band
// @Tags scoring
// @Accept json
// @Produce json
// @Param bands body services.OverallBandRequest true "Module bands"
// @Success 200 {object} services.OverallBandResponse
// @Failure 400 {object} ErrorResponse
// @Router /scoring/bands/overall [post]
func (h *ScoringHandler) OverallBand(c *gin.Context) {
	var req services.OverallBandRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.scoringService.OverallBand(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

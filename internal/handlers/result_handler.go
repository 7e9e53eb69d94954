package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/abdulazizuv1/yes-english-center-sub001/internal/models"
	"github.com/abdulazizuv1/yes-english-center-sub001/internal/repositories"
	"github.com/abdulazizuv1/yes-english-center-sub001/internal/services"
	"github.com/abdulazizuv1/yes-english-center-sub001/internal/utils"
	"github.com/gin-gonic/gin"
)

type ResultHandler struct {
	BaseHandler
	resultService services.ResultService
	exportService services.ExportService
}

func NewResultHandler(resultService services.ResultService, exportService services.ExportService, logger utils.Logger) *ResultHandler {
	return &ResultHandler{
		BaseHandler:   NewBaseHandler(logger),
		resultService: resultService,
		exportService: exportService,
	}
}

// SubmitResult scores a submission and stores the result
// @Summary Submit answers
// @Tags results
// @Accept json
// @Produce json
// @Param submission body services.SubmitResultRequest true "Answers keyed by question id"
// @Success 201 {object} services.ResultResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /results [post]
func (h *ResultHandler) SubmitResult(c *gin.Context) {
	var req services.SubmitResultRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Submitting answers", "test_id", req.TestID, "student_id", req.StudentID)

	result, err := h.resultService.Submit(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// GetResult returns a stored result as it was scored
// @Summary Get result
// @Tags results
// @Produce json
// @Param id path uint true "Result ID"
// @Success 200 {object} services.ResultResponse
// @Failure 404 {object} ErrorResponse
// @Router /results/{id} [get]
func (h *ResultHandler) GetResult(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	result, err := h.resultService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ReviewResult recomputes a stored result and reports any disagreement
// @Summary Review result
// @Tags results
// @Produce json
// @Param id path uint true "Result ID"
// @Success 200 {object} services.ReviewResponse
// @Failure 404 {object} ErrorResponse
// @Router /results/{id}/review [get]
func (h *ResultHandler) ReviewResult(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Reviewing result", "result_id", id)

	review, err := h.resultService.Review(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, review)
}

// ExportResult downloads a result as an XLSX workbook
// @Summary Export result
// @Tags results
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path uint true "Result ID"
// @Success 200 {file} file
// @Failure 404 {object} ErrorResponse
// @Router /results/{id}/export [get]
func (h *ResultHandler) ExportResult(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	file, err := h.exportService.ExportResult(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	sendFile(c, file)
}

// GetStudentResults lists the results of a student, newest first
// @Summary Student results
// @Tags results
// @Produce json
// @Param student_id path string true "Student ID"
// @Param module query string false "listening or reading"
// @Param test_id query uint false "Test ID"
// @Param date_from query string false "RFC3339 lower bound"
// @Param date_to query string false "RFC3339 upper bound"
// @Success 200 {object} services.ResultListResponse
// @Router /results/student/{student_id} [get]
func (h *ResultHandler) GetStudentResults(c *gin.Context) {
	studentID := ParseStringIDParam(c, "student_id")
	if studentID == "" {
		return
	}

	filters, ok := h.parseResultFilters(c)
	if !ok {
		return
	}

	results, err := h.resultService.ListByStudent(c.Request.Context(), studentID, filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, results)
}

// GetStudentStats summarizes the results of a student
// @Summary Student statistics
// @Tags results
// @Produce json
// @Param student_id path string true "Student ID"
// @Success 200 {object} repositories.StudentStats
// @Router /results/student/{student_id}/stats [get]
func (h *ResultHandler) GetStudentStats(c *gin.Context) {
	studentID := ParseStringIDParam(c, "student_id")
	if studentID == "" {
		return
	}

	stats, err := h.resultService.GetStudentStats(c.Request.Context(), studentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// ExportStudentResults downloads the result history of a student
// @Summary Export student results
// @Tags results
// @Param student_id path string true "Student ID"
// @Success 200 {file} file
// @Router /results/student/{student_id}/export [get]
func (h *ResultHandler) ExportStudentResults(c *gin.Context) {
	studentID := ParseStringIDParam(c, "student_id")
	if studentID == "" {
		return
	}

	file, err := h.exportService.ExportStudentResults(c.Request.Context(), studentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	sendFile(c, file)
}

// Helper methods

func (h *ResultHandler) parseResultFilters(c *gin.Context) (repositories.ResultFilters, bool) {
	limit, offset := h.pagination(c)
	filters := repositories.ResultFilters{
		Limit:     limit,
		Offset:    offset,
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}

	if module := strings.ToLower(c.Query("module")); module != "" {
		m := models.TestModule(module)
		filters.Module = &m
	}

	if testIDStr := c.Query("test_id"); testIDStr != "" {
		if testID, err := strconv.ParseUint(testIDStr, 10, 32); err == nil {
			id := uint(testID)
			filters.TestID = &id
		}
	}

	for param, target := range map[string]**time.Time{
		"date_from": &filters.DateFrom,
		"date_to":   &filters.DateTo,
	} {
		value := c.Query(param)
		if value == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, value)
		if err != nil {
			h.RespondWithError(c, http.StatusBadRequest, "Invalid "+param, nil, "must be an RFC3339 timestamp")
			return filters, false
		}
		*target = &t
	}

	return filters, true
}

package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/abdulazizuv1/yes-english-center-sub001/internal/services"
	"github.com/gin-gonic/gin"
)

const maxStringIDLength = 100

// ParseStringIDParam reads a string path parameter. An empty or oversized
// value writes a 400 response and returns "".
func ParseStringIDParam(c *gin.Context, param string) string {
	idStr := strings.TrimSpace(c.Param(param))
	if idStr == "" || len(idStr) > maxStringIDLength {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + param,
			Details: fmt.Sprintf("ID must be between 1 and %d characters", maxStringIDLength),
		})
		return ""
	}
	return idStr
}

// sendFile writes an export as a download
func sendFile(c *gin.Context, file *services.ExportFile) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.FileName))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}

package handlers

import (
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"claims-dashboard/internal/core/services"
	"claims-dashboard/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// csvContentTypes are accepted when the file name lacks a .csv extension
var csvContentTypes = []string{"text/csv", "application/csv", "text/comma-separated-values", "application/vnd.ms-excel"}

// UploadHandler handles CSV claim imports
type UploadHandler struct {
	importService *services.ImportService
	maxBytes      int64
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(importService *services.ImportService, maxBytes int64) *UploadHandler {
	return &UploadHandler{importService: importService, maxBytes: maxBytes}
}

// Upload imports claims from a CSV file
// @Summary Import claims from CSV
// @Description Rows missing first name, last name, MRN, primary insurance or claim id are skipped
// @Tags Claims
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "CSV file"
// @Success 200 {object} response.Response{data=services.ImportResult}
// @Failure 400 {object} response.Response
// @Failure 413 {object} response.Response
// @Router /upload [post]
func (h *UploadHandler) Upload(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return response.BadRequest(c, "No file uploaded")
	}

	if !isCSV(file) {
		return response.BadRequest(c, "File must be a CSV")
	}
	if h.maxBytes > 0 && file.Size > h.maxBytes {
		return response.RequestEntityTooLarge(c, fmt.Sprintf("File exceeds %d MB", h.maxBytes/(1024*1024)))
	}

	content, err := readUpload(file)
	if err != nil {
		return respondError(c, err, "Failed to read upload")
	}

	result, err := h.importService.Import(c.UserContext(), file.Filename, content)
	if err != nil {
		return respondError(c, err, "Failed to process CSV")
	}

	return response.Success(c, fmt.Sprintf("Imported %d of %d rows", result.Imported, result.Total), result)
}

func isCSV(file *multipart.FileHeader) bool {
	if strings.EqualFold(filepath.Ext(file.Filename), ".csv") {
		return true
	}
	contentType := strings.ToLower(file.Header.Get(fiber.HeaderContentType))
	for _, ct := range csvContentTypes {
		if strings.HasPrefix(contentType, ct) {
			return true
		}
	}
	return false
}

func readUpload(file *multipart.FileHeader) ([]byte, error) {
	f, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return io.ReadAll(f)
}

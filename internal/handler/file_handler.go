package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/myadmit/admit-backend/internal/model"
	"github.com/myadmit/admit-backend/internal/response"
	"github.com/myadmit/admit-backend/internal/service"
	"github.com/myadmit/admit-backend/internal/validator"
)

// FileHandler handles profile document uploads.
type FileHandler struct {
	fileService *service.FileService
}

func NewFileHandler(fileService *service.FileService) *FileHandler {
	return &FileHandler{fileService: fileService}
}

// Upload godoc
// POST /api/v1/user/file
// Stores a multipart "file" as a profile document and returns its signed URL.
func (h *FileHandler) Upload(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}

	var form model.FileUploadForm
	if fields := validator.BindForm(c, &form); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrFileRequired)
		return
	}
	defer file.Close()

	original := form.OriginalFileName
	if original == "" {
		original = header.Filename
	}
	name := form.FileName
	if name == "" {
		name = original
	}

	url, err := h.fileService.Upload(c.Request.Context(), claims.UserID, claims.Email, &service.Upload{
		Body:             file,
		Size:             header.Size,
		ContentType:      header.Header.Get("Content-Type"),
		DocumentType:     model.DocumentType(form.DocumentType),
		FileName:         name,
		OriginalFileName: original,
	})
	if err != nil {
		failWithError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"url": url})
}

// List godoc
// GET /api/v1/user/files
func (h *FileHandler) List(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}

	listing, err := h.fileService.List(c.Request.Context(), claims.UserID, claims.Email)
	if err != nil {
		failWithError(c, err)
		return
	}

	response.Success(c, http.StatusOK, listing)
}

// Delete godoc
// DELETE /api/v1/user/files/:file_id
func (h *FileHandler) Delete(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	fileID, ok := parseUUIDParam(c, "file_id")
	if !ok {
		return
	}

	if err := h.fileService.Delete(c.Request.Context(), claims.UserID, claims.Email, fileID); err != nil {
		failWithError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "File deleted successfully"})
}

package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"pawmart/api/internal/storage"
)

// Upload endpoint messages.
const (
	MsgUploadArgsRequired   = "filename and contentType are required"
	MsgUploadsDisabled      = "Image uploads are not configured"
	MsgUploadURLFailed      = "Failed to generate upload URL"
	MsgUnsupportedImageType = "Only image uploads are accepted"
)

type uploadRequest struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
}

// RestUploadHandler hands out presigned S3 URLs for listing images.
type RestUploadHandler struct {
	storage storage.IS3Storage // nil when S3 is not configured
}

// NewRestUploadHandler creates a new RestUploadHandler. store may be nil.
func NewRestUploadHandler(store storage.IS3Storage) *RestUploadHandler {
	return &RestUploadHandler{storage: store}
}

// CreateListingImageUpload handles POST /uploads/listing-image
func (h *RestUploadHandler) CreateListingImageUpload(c *gin.Context) {
	if h.storage == nil {
		sendFailure(c, http.StatusServiceUnavailable, MsgUploadsDisabled)
		return
	}

	var req uploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendFailure(c, http.StatusBadRequest, MsgUploadArgsRequired)
		return
	}
	req.Filename = strings.TrimSpace(req.Filename)
	req.ContentType = strings.TrimSpace(req.ContentType)
	if req.Filename == "" || req.ContentType == "" {
		sendFailure(c, http.StatusBadRequest, MsgUploadArgsRequired)
		return
	}

	upload, err := h.storage.PresignListingImageUpload(c.Request.Context(), req.Filename, req.ContentType)
	if err != nil {
		if errors.Is(err, storage.ErrUnsupportedContentType) {
			sendFailure(c, http.StatusBadRequest, MsgUnsupportedImageType)
			return
		}
		log.Printf("Error generating presigned URL for %q: %v", req.Filename, err)
		_ = c.Error(err)
		sendFailure(c, http.StatusInternalServerError, MsgUploadURLFailed)
		return
	}
	sendData(c, http.StatusOK, upload, "")
}

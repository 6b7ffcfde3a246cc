package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/image-describer/internal/apperror"
	"github.com/sakif/image-describer/internal/auth"
	"github.com/sakif/image-describer/internal/service"
)

// maxUploadMemory caps how much multipart data is buffered in memory
// before spilling to temp files. Larger uploads still work, they just
// hit disk during parsing.
const maxUploadMemory = 10 << 20 // 10 MiB

// ImageHandler accepts an authenticated image upload and returns its
// generated description.
type ImageHandler struct {
	images *service.ImageService
	logger *slog.Logger
}

// NewImageHandler creates an ImageHandler.
func NewImageHandler(images *service.ImageService, logger *slog.Logger) *ImageHandler {
	return &ImageHandler{images: images, logger: logger}
}

// HandleUpload ingests one image and describes it.
//
// HTTP: POST /api/upload-image
// Auth: Required (RequireAuth middleware sets claims in context)
// REQUEST: multipart/form-data with
//   - "image": exactly one file attachment
//   - "descriptionLevel": basic | detailed | comprehensive (optional;
//     anything else, including absent, degrades to basic)
//
// RESPONSE:
//
//	{"success": true, "filename": "1756...-cat.jpg",
//	 "description": "...", "descriptionLevel": "comprehensive"}
//
// ORDER OF CHECKS:
// The attachment is validated BEFORE anything touches storage or the
// describer — a request with no file fails fast with 400 and leaves no
// artifact behind.
func (h *ImageHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		// Unreachable behind RequireAuth, but don't trust route wiring.
		writeError(w, apperror.Forbidden("authentication required"))
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeError(w, apperror.ValidationFailed("body", "expected multipart form data"))
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			writeError(w, apperror.ValidationFailed("image", "no image uploaded"))
			return
		}
		writeError(w, apperror.ValidationFailed("image", "invalid image attachment"))
		return
	}
	defer file.Close()

	level := r.FormValue("descriptionLevel")

	img, err := h.images.DescribeUpload(r.Context(), claims.UserID, header.Filename, file, level)
	if err != nil {
		h.logger.Error("upload failed",
			slog.Int64("userID", claims.UserID),
			slog.String("filename", header.Filename),
			slog.String("error", err.Error()),
		)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Success          bool   `json:"success"`
		Filename         string `json:"filename"`
		Description      string `json:"description"`
		DescriptionLevel string `json:"descriptionLevel"`
	}{
		Success:          true,
		Filename:         img.StoredName,
		Description:      img.Description,
		DescriptionLevel: img.DescriptionLevel,
	})
}

package httpserver

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"
	apperrors "github.com/swamyhotfoods/shopfront/internal/platform/errors"
)

const (
	logoFormField   = "logo"
	logoFileName    = "logo.png"
	sniffLen        = 512
	multipartSlack  = 64 << 10
	uploadURLPrefix = "/uploads/"
)

func (s *Server) registerUploadRoutes(g *echo.Group) {
	g.POST("/upload", s.handleUploadLogo)
}

// handleUploadLogo replaces the shop logo. Whatever the uploaded name, the file is
// stored as logo.png so the storefront can reference a fixed URL.
func (s *Server) handleUploadLogo(c echo.Context) error {
	maxBytes := s.config.UploadMaxBytes
	req := c.Request()
	req.Body = http.MaxBytesReader(c.Response(), req.Body, maxBytes+multipartSlack)

	fh, err := c.FormFile(logoFormField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return fileTooLarge(maxBytes)
		}
		return apperrors.ValidationError(`no file uploaded in form field "logo"`)
	}
	if fh.Size > maxBytes {
		return fileTooLarge(maxBytes)
	}

	src, err := fh.Open()
	if err != nil {
		return apperrors.InternalError("failed to open uploaded file", err)
	}
	defer func() { _ = src.Close() }()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(src, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return apperrors.InternalError("failed to read uploaded file", err)
	}
	head = head[:n]

	contentType := http.DetectContentType(head)
	if !strings.HasPrefix(contentType, "image/") {
		return apperrors.ValidationError("only image files are allowed").WithField("content_type", contentType)
	}

	if err := s.storeUpload(logoFileName, io.MultiReader(bytes.NewReader(head), src)); err != nil {
		return apperrors.InternalError("failed to store uploaded file", err)
	}

	slog.InfoContext(req.Context(), "Logo uploaded", "original_name", fh.Filename, "size", fh.Size, "content_type", contentType)

	response := map[string]string{
		"message": "Logo uploaded successfully",
		"path":    uploadURLPrefix + logoFileName,
	}
	if err := c.JSON(http.StatusOK, response); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

// storeUpload writes to a temp file first so readers never see a half-written logo.
func (s *Server) storeUpload(name string, r io.Reader) error {
	tmp, err := os.CreateTemp(s.config.UploadDir, "upload-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := io.Copy(tmp, r); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), filepath.Join(s.config.UploadDir, name)); err != nil {
		return fmt.Errorf("rename upload: %w", err)
	}
	return nil
}

func fileTooLarge(maxBytes int64) error {
	return apperrors.ValidationError("file too large").WithField("max_bytes", maxBytes)
}

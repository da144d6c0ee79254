package api

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/labstack/echo/v4"
)

// bindAndValidate decodes the request body into v and runs the struct
// validator on it.
func bindAndValidate(c echo.Context, v interface{}) error {
	if err := c.Bind(v); err != nil {
		var he *echo.HTTPError
		if errors.As(err, &he) {
			return BadRequestError("Invalid request body", fmt.Sprintf("%v", he.Message))
		}
		return BadRequestError("Invalid request body", err.Error())
	}
	if err := c.Validate(v); err != nil {
		return fromDomainError(err)
	}
	return nil
}

// uploadedFile returns the multipart "file" field, enforcing the configured
// size limit.
func (s *Server) uploadedFile(c echo.Context) (*multipart.FileHeader, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		return nil, BadRequestError("Missing file", "multipart field 'file' is required")
	}
	if limit := s.config.Import.MaxUploadSize; limit > 0 && fh.Size > limit {
		return nil, NewAPIError(http.StatusRequestEntityTooLarge,
			getHTTPMessage(http.StatusRequestEntityTooLarge),
			fmt.Sprintf("file %q is %d bytes, the limit is %d", fh.Filename, fh.Size, limit))
	}
	return fh, nil
}

// readUpload returns the content of an uploaded file.
func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer func() { _ = f.Close() }()
	return io.ReadAll(f)
}

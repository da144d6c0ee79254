package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"evalgo.org/assetd/internal/inventory"
	"evalgo.org/assetd/models"
)

// listAssets handles GET /api/v1/assets
func (s *Server) listAssets(c echo.Context) error {
	page, limit := parsePagination(c)

	filter := strings.ToLower(strings.TrimSpace(c.QueryParam("filter")))
	if filter != "" && filter != "incomplete" {
		return BadRequestError("Invalid filter parameter", "filter must be 'incomplete'. Got: "+filter)
	}

	result, err := s.inventory.List(c.Request().Context(), inventory.ListQuery{
		Search:     c.QueryParam("search"),
		Incomplete: filter == "incomplete",
		Page:       page,
		Limit:      limit,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}

// getAsset handles GET /api/v1/assets/:id
func (s *Server) getAsset(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	asset, err := s.inventory.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, asset)
}

// createAsset handles POST /api/v1/assets
func (s *Server) createAsset(c echo.Context) error {
	var asset models.Asset
	if err := bindAndValidate(c, &asset); err != nil {
		return err
	}

	created, err := s.inventory.Create(c.Request().Context(), &asset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, created)
}

// updateAsset handles PUT /api/v1/assets/:id
func (s *Server) updateAsset(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var asset models.Asset
	if err := bindAndValidate(c, &asset); err != nil {
		return err
	}

	updated, err := s.inventory.Update(c.Request().Context(), id, &asset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, updated)
}

// deleteAsset handles DELETE /api/v1/assets/:id
func (s *Server) deleteAsset(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := s.inventory.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// replaceAsset handles POST /api/v1/assets/:id/replace
func (s *Server) replaceAsset(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req inventory.ReplaceRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	successor, err := s.inventory.Replace(c.Request().Context(), id, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, ReplaceResponse{
		Message:  fmt.Sprintf("asset %d replaced by %s", id, models.Deref(successor.Code)),
		NewAsset: successor,
	})
}

// uploadAssets handles POST /api/v1/assets/upload
func (s *Server) uploadAssets(c echo.Context) error {
	fh, err := s.uploadedFile(c)
	if err != nil {
		return err
	}
	f, err := fh.Open()
	if err != nil {
		return fmt.Errorf("open upload: %w", err)
	}
	defer func() { _ = f.Close() }()

	n, err := s.importer.ImportAssets(c.Request().Context(), fh.Filename, f)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, ImportResponse{
		Message:  fmt.Sprintf("%d assets imported from %s", n, fh.Filename),
		Imported: n,
	})
}

// uploadBitLocker handles POST /api/v1/assets/:id/upload-bitlocker
func (s *Server) uploadBitLocker(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	fh, err := s.uploadedFile(c)
	if err != nil {
		return err
	}
	content, err := readUpload(fh)
	if err != nil {
		return err
	}

	key, err := s.importer.ImportBitLocker(c.Request().Context(), id, fh.Filename, content)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, RecoveryKeyResponse{
		Message:     fmt.Sprintf("recovery key for drive %s stored", key.Drive),
		RecoveryKey: key,
	})
}

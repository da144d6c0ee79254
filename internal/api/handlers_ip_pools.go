package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"evalgo.org/assetd/internal/network"
	"evalgo.org/assetd/models"
)

// listPool handles GET /api/v1/ip-pools
func (s *Server) listPool(c echo.Context) error {
	vlanID, err := queryID(c, "vlan_id")
	if err != nil {
		return err
	}
	entries, err := s.network.ListPool(c.Request().Context(), vlanID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, entries)
}

// getPoolAddress handles GET /api/v1/ip-pools/:id
func (s *Server) getPoolAddress(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	entry, err := s.network.GetAddress(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, entry)
}

// createPoolAddress handles POST /api/v1/ip-pools
func (s *Server) createPoolAddress(c echo.Context) error {
	var req PoolAddressRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	var entry *network.PoolEntry
	var err error
	if req.AssetID != nil {
		entry, err = s.network.CreateAssignedAddress(ctx, req.model(), *req.AssetID)
	} else {
		entry, err = s.network.CreateAddress(ctx, req.model())
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, entry)
}

// updatePoolAddress handles PUT /api/v1/ip-pools/:id
func (s *Server) updatePoolAddress(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req PoolAddressRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	entry, err := s.network.UpdateAddress(c.Request().Context(), id, req.model())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, entry)
}

// deletePoolAddress handles DELETE /api/v1/ip-pools/:id
func (s *Server) deletePoolAddress(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := s.network.DeleteAddress(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// assignPoolAddress handles POST /api/v1/ip-pools/:id/assignment
func (s *Server) assignPoolAddress(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req AssignmentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	entry, err := s.network.Assign(c.Request().Context(), id, req.AssetID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, entry)
}

// unassignPoolAddress handles DELETE /api/v1/ip-pools/:id/assignment
func (s *Server) unassignPoolAddress(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := s.network.Unassign(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// availableIPs handles GET /api/v1/ips?vlan_id=
func (s *Server) availableIPs(c echo.Context) error {
	raw := c.QueryParam("vlan_id")
	if raw == "" {
		return BadRequestError("Missing query parameter", "vlan_id is required")
	}
	vlanID, err := strconv.ParseUint(raw, 10, 0)
	if err != nil || vlanID == 0 {
		return BadRequestError("Invalid query parameter", "vlan_id must be a positive integer. Got: "+raw)
	}

	ips, err := s.network.AvailableByVLAN(c.Request().Context(), uint(vlanID))
	if err != nil {
		return err
	}
	if ips == nil {
		ips = []models.IPAddress{}
	}
	return c.JSON(http.StatusOK, ips)
}

// listVlans handles GET /api/v1/vlans
func (s *Server) listVlans(c echo.Context) error {
	vlans, err := s.network.ListVlans(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, vlans)
}

// createVlan handles POST /api/v1/vlans
func (s *Server) createVlan(c echo.Context) error {
	var req VlanRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	vlan, err := s.network.CreateVlan(c.Request().Context(), &models.Vlan{Tag: req.Tag, Name: req.Name})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, vlan)
}

// deleteVlan handles DELETE /api/v1/vlans/:id
func (s *Server) deleteVlan(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := s.network.DeleteVlan(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

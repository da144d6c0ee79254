package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"evalgo.org/assetd/models"
)

// listRacks handles GET /api/v1/racks
func (s *Server) listRacks(c echo.Context) error {
	racks, err := s.network.ListRacks(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, racks)
}

// getRack handles GET /api/v1/racks/:id
func (s *Server) getRack(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	rack, err := s.network.GetRack(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rack)
}

// createRack handles POST /api/v1/racks
func (s *Server) createRack(c echo.Context) error {
	var req RackRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	rack, err := s.network.CreateRack(c.Request().Context(), &models.Rack{
		Name:        req.Name,
		Location:    req.Location,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, rack)
}

// updateRack handles PUT /api/v1/racks/:id
func (s *Server) updateRack(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req RackRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	rack, err := s.network.UpdateRack(c.Request().Context(), id, &models.Rack{
		Name:        req.Name,
		Location:    req.Location,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rack)
}

// deleteRack handles DELETE /api/v1/racks/:id
func (s *Server) deleteRack(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := s.network.DeleteRack(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// nextLANID handles GET /api/v1/racks/:id/next-lan-id
func (s *Server) nextLANID(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	next, err := s.network.NextLANID(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, NextLANIDResponse{RackID: id, NextLANID: next})
}

// listSwitches handles GET /api/v1/switches
func (s *Server) listSwitches(c echo.Context) error {
	rackID, err := queryID(c, "rack_id")
	if err != nil {
		return err
	}
	switches, err := s.network.ListSwitches(c.Request().Context(), rackID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, switches)
}

// getSwitch handles GET /api/v1/switches/:id
func (s *Server) getSwitch(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	sw, err := s.network.GetSwitch(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sw)
}

// createSwitch handles POST /api/v1/switches
func (s *Server) createSwitch(c echo.Context) error {
	var req SwitchRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	sw, err := s.network.CreateSwitch(c.Request().Context(), req.model())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, sw)
}

// updateSwitch handles PUT /api/v1/switches/:id
func (s *Server) updateSwitch(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req SwitchRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	sw, err := s.network.UpdateSwitch(c.Request().Context(), id, req.model())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sw)
}

// deleteSwitch handles DELETE /api/v1/switches/:id
func (s *Server) deleteSwitch(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := s.network.DeleteSwitch(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// listPorts handles GET /api/v1/ports
func (s *Server) listPorts(c echo.Context) error {
	switchID, err := queryID(c, "switch_id")
	if err != nil {
		return err
	}
	ports, err := s.network.ListPorts(c.Request().Context(), switchID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ports)
}

// getPort handles GET /api/v1/ports/:id
func (s *Server) getPort(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	port, err := s.network.GetPort(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, port)
}

// createPort handles POST /api/v1/ports
func (s *Server) createPort(c echo.Context) error {
	var req PortRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if req.SwitchID == 0 {
		return ValidationError("Validation failed", map[string]string{"switch_id": "is required"})
	}
	port, err := s.network.AddPort(c.Request().Context(), req.model())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, port)
}

// updatePort handles PUT /api/v1/ports/:id
func (s *Server) updatePort(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req PortRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	port, err := s.network.UpdatePort(c.Request().Context(), id, req.model())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, port)
}

// deletePort handles DELETE /api/v1/ports/:id
func (s *Server) deletePort(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := s.network.DeletePort(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

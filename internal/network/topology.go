package network

import (
	"context"
	"fmt"
	"strings"

	"github.com/containerd/errdefs"

	"evalgo.org/assetd/internal/logging"
	"evalgo.org/assetd/internal/storage"
	"evalgo.org/assetd/models"
)

// MaxPortCount bounds the declared port count of a switch.
const MaxPortCount = 1024

// SwitchDetail is a switch with its ports ordered by number.
type SwitchDetail struct {
	models.Switch
	Ports []models.SwitchPort `json:"ports"`
}

// ListRacks returns all racks.
func (a *Allocator) ListRacks(ctx context.Context) ([]models.Rack, error) {
	return a.storage.Racks.List(a.storage.Session(ctx))
}

// GetRack returns one rack.
func (a *Allocator) GetRack(ctx context.Context, id uint) (*models.Rack, error) {
	return a.storage.Racks.Get(a.storage.Session(ctx), id)
}

// CreateRack adds a rack. (name, location) must be unique.
func (a *Allocator) CreateRack(ctx context.Context, r *models.Rack) (*models.Rack, error) {
	if err := cleanRack(r); err != nil {
		return nil, err
	}
	r.ID = 0
	if err := a.storage.Racks.Create(a.storage.Session(ctx), r); err != nil {
		return nil, err
	}
	return r, nil
}

// UpdateRack rewrites rack id.
func (a *Allocator) UpdateRack(ctx context.Context, id uint, r *models.Rack) (*models.Rack, error) {
	if err := cleanRack(r); err != nil {
		return nil, err
	}
	r.ID = id
	u := a.storage.Session(ctx)
	if err := a.storage.Racks.Update(u, r); err != nil {
		return nil, err
	}
	return a.storage.Racks.Get(u, id)
}

// DeleteRack removes an empty rack. Racks that still hold switches are refused.
func (a *Allocator) DeleteRack(ctx context.Context, id uint) error {
	return a.storage.InTx(ctx, func(u *storage.Unit) error {
		if _, err := a.storage.Racks.Get(u, id); err != nil {
			return err
		}
		switches, err := a.storage.Switches.List(u, &id)
		if err != nil {
			return err
		}
		if len(switches) > 0 {
			return fmt.Errorf("rack %d still holds %d switches: %w", id, len(switches), errdefs.ErrConflict)
		}
		return a.storage.Racks.Delete(u, id)
	})
}

func cleanRack(r *models.Rack) error {
	r.Name = strings.TrimSpace(r.Name)
	r.Location = strings.TrimSpace(r.Location)
	if r.Name == "" {
		return fmt.Errorf("rack name is required: %w", errdefs.ErrInvalidArgument)
	}
	return nil
}

// ListSwitches returns all switches, or those of one rack.
func (a *Allocator) ListSwitches(ctx context.Context, rackID *uint) ([]models.Switch, error) {
	return a.storage.Switches.List(a.storage.Session(ctx), rackID)
}

// GetSwitch returns a switch with its ports.
func (a *Allocator) GetSwitch(ctx context.Context, id uint) (*SwitchDetail, error) {
	u := a.storage.Session(ctx)
	sw, err := a.storage.Switches.Get(u, id)
	if err != nil {
		return nil, err
	}
	ports, err := a.storage.Ports.ListBySwitches(u, id)
	if err != nil {
		return nil, err
	}
	return &SwitchDetail{Switch: *sw, Ports: ports}, nil
}

// CreateSwitch inserts a switch and provisions ports 1..PortCount, all
// Disabled, in the same transaction.
func (a *Allocator) CreateSwitch(ctx context.Context, sw *models.Switch) (*SwitchDetail, error) {
	if err := cleanSwitch(sw); err != nil {
		return nil, err
	}
	sw.ID = 0

	err := a.storage.InTx(ctx, func(u *storage.Unit) error {
		if _, err := a.storage.Racks.Get(u, sw.RackID); err != nil {
			return err
		}
		if err := a.storage.Switches.Create(u, sw); err != nil {
			return err
		}
		return a.storage.Ports.CreateBatch(u, provision(sw.ID, 1, sw.PortCount))
	})
	if err != nil {
		return nil, err
	}

	a.log.Info().
		Str(logging.Event, "switch_created").
		Uint("switch_id", sw.ID).
		Int("port_count", sw.PortCount).
		Msg("switch provisioned")
	return a.GetSwitch(ctx, sw.ID)
}

// UpdateSwitch rewrites switch id. A changed port count appends or drops
// ports at the top of the range so numbering stays dense.
func (a *Allocator) UpdateSwitch(ctx context.Context, id uint, sw *models.Switch) (*SwitchDetail, error) {
	if err := cleanSwitch(sw); err != nil {
		return nil, err
	}

	err := a.storage.InTx(ctx, func(u *storage.Unit) error {
		current, err := a.storage.Switches.Get(u, id)
		if err != nil {
			return err
		}
		if sw.RackID != current.RackID {
			if _, err := a.storage.Racks.Get(u, sw.RackID); err != nil {
				return err
			}
		}

		sw.ID = id
		if err := a.storage.Switches.Update(u, sw); err != nil {
			return err
		}

		switch {
		case sw.PortCount > current.PortCount:
			return a.storage.Ports.CreateBatch(u, provision(id, current.PortCount+1, sw.PortCount))
		case sw.PortCount < current.PortCount:
			return a.storage.Ports.DeleteAbove(u, id, sw.PortCount)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return a.GetSwitch(ctx, id)
}

// DeleteSwitch removes a switch and its ports.
func (a *Allocator) DeleteSwitch(ctx context.Context, id uint) error {
	return a.storage.InTx(ctx, func(u *storage.Unit) error {
		if _, err := a.storage.Switches.Get(u, id); err != nil {
			return err
		}
		if err := a.storage.Ports.DeleteBySwitch(u, id); err != nil {
			return err
		}
		return a.storage.Switches.Delete(u, id)
	})
}

func cleanSwitch(sw *models.Switch) error {
	sw.Name = strings.TrimSpace(sw.Name)
	if sw.Name == "" {
		return fmt.Errorf("switch name is required: %w", errdefs.ErrInvalidArgument)
	}
	if sw.PortCount < 0 || sw.PortCount > MaxPortCount {
		return fmt.Errorf("port_count must be between 0 and %d: %w", MaxPortCount, errdefs.ErrInvalidArgument)
	}
	return nil
}

// provision builds Disabled ports numbered from..to.
func provision(switchID uint, from, to int) []models.SwitchPort {
	if to < from {
		return nil
	}
	ports := make([]models.SwitchPort, 0, to-from+1)
	for n := from; n <= to; n++ {
		ports = append(ports, models.SwitchPort{
			SwitchID:   switchID,
			PortNumber: n,
			Status:     models.PortDisabled,
		})
	}
	return ports
}

// ListPorts returns the ports of one switch, or of every switch.
func (a *Allocator) ListPorts(ctx context.Context, switchID *uint) ([]models.SwitchPort, error) {
	u := a.storage.Session(ctx)
	if switchID != nil {
		if _, err := a.storage.Switches.Get(u, *switchID); err != nil {
			return nil, err
		}
		return a.storage.Ports.ListBySwitches(u, *switchID)
	}

	switches, err := a.storage.Switches.List(u, nil)
	if err != nil {
		return nil, err
	}
	return a.storage.Ports.ListBySwitches(u, switchIDs(switches)...)
}

// GetPort returns one port.
func (a *Allocator) GetPort(ctx context.Context, id uint) (*models.SwitchPort, error) {
	return a.storage.Ports.Get(a.storage.Session(ctx), id)
}

// UpdatePort rewrites the wiring metadata of port id. Switch and number
// are fixed. An empty status keeps the current one; the other fields are
// replaced as given.
func (a *Allocator) UpdatePort(ctx context.Context, id uint, p *models.SwitchPort) (*models.SwitchPort, error) {
	if p.Status != "" && !models.ValidPortStatus(p.Status) {
		return nil, fmt.Errorf("unknown port status %q: %w", p.Status, errdefs.ErrInvalidArgument)
	}

	var updated *models.SwitchPort
	err := a.storage.InTx(ctx, func(u *storage.Unit) error {
		current, err := a.storage.Ports.Get(u, id)
		if err != nil {
			return err
		}
		if p.Status == "" {
			p.Status = current.Status
		}
		p.ID = id
		if err := a.storage.Ports.Update(u, p); err != nil {
			return err
		}
		updated, err = a.storage.Ports.Get(u, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// AddPort appends a port numbered PortCount+1 to p.SwitchID and bumps the
// switch's port count.
func (a *Allocator) AddPort(ctx context.Context, p *models.SwitchPort) (*models.SwitchPort, error) {
	if p.Status == "" {
		p.Status = models.PortDisabled
	}
	if !models.ValidPortStatus(p.Status) {
		return nil, fmt.Errorf("unknown port status %q: %w", p.Status, errdefs.ErrInvalidArgument)
	}

	err := a.storage.InTx(ctx, func(u *storage.Unit) error {
		sw, err := a.storage.Switches.Get(u, p.SwitchID)
		if err != nil {
			return err
		}
		if sw.PortCount >= MaxPortCount {
			return fmt.Errorf("switch %d already has %d ports: %w", sw.ID, sw.PortCount, errdefs.ErrConflict)
		}

		p.ID = 0
		p.PortNumber = sw.PortCount + 1
		ports := []models.SwitchPort{*p}
		if err := a.storage.Ports.CreateBatch(u, ports); err != nil {
			return err
		}
		*p = ports[0]

		sw.PortCount = p.PortNumber
		return a.storage.Switches.Update(u, sw)
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// DeletePort removes the highest-numbered port of its switch and lowers the
// port count. Any other port is refused to keep numbering dense.
func (a *Allocator) DeletePort(ctx context.Context, id uint) error {
	return a.storage.InTx(ctx, func(u *storage.Unit) error {
		p, err := a.storage.Ports.Get(u, id)
		if err != nil {
			return err
		}
		sw, err := a.storage.Switches.Get(u, p.SwitchID)
		if err != nil {
			return err
		}
		if p.PortNumber != sw.PortCount {
			return fmt.Errorf("only the highest-numbered port (%d) of switch %d can be removed: %w",
				sw.PortCount, sw.ID, errdefs.ErrConflict)
		}
		if err := a.storage.Ports.Delete(u, id); err != nil {
			return err
		}
		sw.PortCount--
		return a.storage.Switches.Update(u, sw)
	})
}

// NextLANID suggests the next cable number for a rack: one above the
// highest number in any cable ID of its ports, or 1. The suggestion is not
// reserved.
func (a *Allocator) NextLANID(ctx context.Context, rackID uint) (int, error) {
	u := a.storage.Session(ctx)
	if _, err := a.storage.Racks.Get(u, rackID); err != nil {
		return 0, err
	}
	switches, err := a.storage.Switches.List(u, &rackID)
	if err != nil {
		return 0, err
	}
	ports, err := a.storage.Ports.ListBySwitches(u, switchIDs(switches)...)
	if err != nil {
		return 0, err
	}

	ids := make([]*string, len(ports))
	for i := range ports {
		ids[i] = ports[i].CableID
	}
	return nextCableNumber(ids), nil
}

func switchIDs(switches []models.Switch) []uint {
	ids := make([]uint, len(switches))
	for i, sw := range switches {
		ids[i] = sw.ID
	}
	return ids
}

// Package network manages the IP address pool and the rack, switch and port
// topology.
//
// Address availability is never stored. An address is Assigned exactly when
// an IPAssignment references it; every listing derives the status from the
// assignment table at read time.
package network

import (
	"context"
	"fmt"
	"net/netip"
	"strings"

	"github.com/containerd/errdefs"
	"github.com/rs/zerolog"

	"evalgo.org/assetd/internal/logging"
	"evalgo.org/assetd/internal/storage"
	"evalgo.org/assetd/models"
)

// Allocator is the network resource service.
type Allocator struct {
	storage *storage.Storage
	log     zerolog.Logger
}

// NewAllocator creates an allocator over s.
func NewAllocator(s *storage.Storage, log zerolog.Logger) *Allocator {
	return &Allocator{storage: s, log: logging.For(log, "network")}
}

// PoolEntry is an address with its VLAN name and derived assignment state.
type PoolEntry struct {
	models.IPAddress
	VlanName  *string `json:"vlan_name"`
	AssetID   *uint   `json:"asset_id"`
	AssetName *string `json:"asset_name"`
	Status    string  `json:"status"`
}

// ListPool returns every pool address, or those of one VLAN.
func (a *Allocator) ListPool(ctx context.Context, vlanID *uint) ([]PoolEntry, error) {
	u := a.storage.Session(ctx)
	ips, err := a.storage.IPAddresses.List(u, vlanID)
	if err != nil {
		return nil, err
	}
	return a.describe(u, ips)
}

// GetAddress returns one pool address.
func (a *Allocator) GetAddress(ctx context.Context, id uint) (*PoolEntry, error) {
	u := a.storage.Session(ctx)
	ip, err := a.storage.IPAddresses.Get(u, id)
	if err != nil {
		return nil, err
	}
	entries, err := a.describe(u, []models.IPAddress{*ip})
	if err != nil {
		return nil, err
	}
	return &entries[0], nil
}

// CreateAddress adds an address to the pool.
func (a *Allocator) CreateAddress(ctx context.Context, ip *models.IPAddress) (*PoolEntry, error) {
	err := a.storage.InTx(ctx, func(u *storage.Unit) error {
		return a.createAddress(u, ip)
	})
	if err != nil {
		return nil, err
	}
	return a.GetAddress(ctx, ip.ID)
}

// CreateAssignedAddress adds an address to the pool and assigns it to
// assetID in the same transaction. Nothing is stored if the assignment fails.
func (a *Allocator) CreateAssignedAddress(ctx context.Context, ip *models.IPAddress, assetID uint) (*PoolEntry, error) {
	err := a.storage.InTx(ctx, func(u *storage.Unit) error {
		if err := a.createAddress(u, ip); err != nil {
			return err
		}
		return a.assign(u, ip.ID, assetID)
	})
	if err != nil {
		return nil, err
	}
	a.logAssigned(ip.ID, assetID)
	return a.GetAddress(ctx, ip.ID)
}

func (a *Allocator) createAddress(u *storage.Unit, ip *models.IPAddress) error {
	if err := a.checkAddress(u, ip); err != nil {
		return err
	}
	ip.ID = 0
	return a.storage.IPAddresses.Create(u, ip)
}

// UpdateAddress rewrites address, VLAN and description of pool entry id.
func (a *Allocator) UpdateAddress(ctx context.Context, id uint, ip *models.IPAddress) (*PoolEntry, error) {
	err := a.storage.InTx(ctx, func(u *storage.Unit) error {
		if _, err := a.storage.IPAddresses.Get(u, id); err != nil {
			return err
		}
		if err := a.checkAddress(u, ip); err != nil {
			return err
		}
		ip.ID = id
		return a.storage.IPAddresses.Update(u, ip)
	})
	if err != nil {
		return nil, err
	}
	return a.GetAddress(ctx, id)
}

// DeleteAddress removes a pool address. Assigned addresses are refused.
func (a *Allocator) DeleteAddress(ctx context.Context, id uint) error {
	return a.storage.InTx(ctx, func(u *storage.Unit) error {
		if _, err := a.storage.IPAddresses.Get(u, id); err != nil {
			return err
		}
		assignment, err := a.storage.Assignments.GetByAddress(u, id)
		if err != nil {
			return err
		}
		if assignment != nil {
			return fmt.Errorf("IP address is currently assigned to asset %d: %w", assignment.AssetID, errdefs.ErrConflict)
		}
		return a.storage.IPAddresses.Delete(u, id)
	})
}

// Assign binds pool address ipID to an asset.
func (a *Allocator) Assign(ctx context.Context, ipID, assetID uint) (*PoolEntry, error) {
	err := a.storage.InTx(ctx, func(u *storage.Unit) error {
		return a.assign(u, ipID, assetID)
	})
	if err != nil {
		return nil, err
	}
	a.logAssigned(ipID, assetID)
	return a.GetAddress(ctx, ipID)
}

func (a *Allocator) assign(u *storage.Unit, ipID, assetID uint) error {
	if _, err := a.storage.IPAddresses.Get(u, ipID); err != nil {
		return err
	}
	if _, err := a.storage.Assets.Get(u, assetID); err != nil {
		return err
	}
	current, err := a.storage.Assignments.GetByAddress(u, ipID)
	if err != nil {
		return err
	}
	if current != nil {
		return fmt.Errorf("IP address is already assigned to asset %d: %w", current.AssetID, errdefs.ErrConflict)
	}
	return a.storage.Assignments.Create(u, &models.IPAssignment{IPAddressID: ipID, AssetID: assetID})
}

func (a *Allocator) logAssigned(ipID, assetID uint) {
	a.log.Info().
		Str(logging.Event, "ip_assigned").
		Uint("ip_address_id", ipID).
		Uint(logging.AssetID, assetID).
		Msg("ip address assigned")
}

// Unassign releases pool address ipID.
func (a *Allocator) Unassign(ctx context.Context, ipID uint) error {
	err := a.storage.InTx(ctx, func(u *storage.Unit) error {
		if _, err := a.storage.IPAddresses.Get(u, ipID); err != nil {
			return err
		}
		return a.storage.Assignments.DeleteByAddress(u, ipID)
	})
	if err != nil {
		return err
	}
	a.log.Info().Str(logging.Event, "ip_unassigned").Uint("ip_address_id", ipID).Msg("ip address released")
	return nil
}

// AvailableByVLAN returns the unassigned addresses of a VLAN.
func (a *Allocator) AvailableByVLAN(ctx context.Context, vlanID uint) ([]models.IPAddress, error) {
	u := a.storage.Session(ctx)

	assigned, err := a.storage.Assignments.AssignedAddressIDs(u)
	if err != nil {
		return nil, err
	}
	taken := make(map[uint]struct{}, len(assigned))
	for _, id := range assigned {
		taken[id] = struct{}{}
	}

	ips, err := a.storage.IPAddresses.List(u, &vlanID)
	if err != nil {
		return nil, err
	}
	free := make([]models.IPAddress, 0, len(ips))
	for _, ip := range ips {
		if _, ok := taken[ip.ID]; !ok {
			free = append(free, ip)
		}
	}
	return free, nil
}

// checkAddress canonicalizes ip.Address and verifies the VLAN reference.
func (a *Allocator) checkAddress(u *storage.Unit, ip *models.IPAddress) error {
	addr, err := netip.ParseAddr(strings.TrimSpace(ip.Address))
	if err != nil {
		return fmt.Errorf("invalid IP address %q: %w", ip.Address, errdefs.ErrInvalidArgument)
	}
	ip.Address = addr.String()

	if ip.VlanID != nil {
		if _, err := a.storage.Vlans.Get(u, *ip.VlanID); err != nil {
			if errdefs.IsNotFound(err) {
				return fmt.Errorf("unknown vlan %d: %w", *ip.VlanID, errdefs.ErrInvalidArgument)
			}
			return err
		}
	}
	return nil
}

func (a *Allocator) describe(u *storage.Unit, ips []models.IPAddress) ([]PoolEntry, error) {
	vlans, err := a.storage.Vlans.List(u)
	if err != nil {
		return nil, err
	}
	vlanNames := make(map[uint]string, len(vlans))
	for _, v := range vlans {
		vlanNames[v.ID] = v.Name
	}

	assignments, err := a.storage.Assignments.List(u)
	if err != nil {
		return nil, err
	}
	owner := make(map[uint]uint, len(assignments))
	assetIDs := make([]uint, 0, len(assignments))
	for _, as := range assignments {
		owner[as.IPAddressID] = as.AssetID
		assetIDs = append(assetIDs, as.AssetID)
	}
	names, err := a.storage.Assets.DisplayNames(u, assetIDs)
	if err != nil {
		return nil, err
	}

	entries := make([]PoolEntry, len(ips))
	for i, ip := range ips {
		e := PoolEntry{IPAddress: ip, Status: models.IPStatusAvailable}
		if ip.VlanID != nil {
			if name, ok := vlanNames[*ip.VlanID]; ok {
				e.VlanName = &name
			}
		}
		if assetID, ok := owner[ip.ID]; ok {
			e.Status = models.IPStatusAssigned
			e.AssetID = &assetID
			if name, ok := names[assetID]; ok {
				e.AssetName = &name
			}
		}
		entries[i] = e
	}
	return entries, nil
}

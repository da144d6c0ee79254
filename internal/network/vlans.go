package network

import (
	"context"
	"fmt"
	"strings"

	"github.com/containerd/errdefs"

	"evalgo.org/assetd/internal/storage"
	"evalgo.org/assetd/models"
)

// ListVlans returns all VLANs ordered by tag.
func (a *Allocator) ListVlans(ctx context.Context) ([]models.Vlan, error) {
	return a.storage.Vlans.List(a.storage.Session(ctx))
}

// CreateVlan adds a VLAN. Tags are unique and lie in 1..4094.
func (a *Allocator) CreateVlan(ctx context.Context, v *models.Vlan) (*models.Vlan, error) {
	v.Name = strings.TrimSpace(v.Name)
	if v.Tag < 1 || v.Tag > 4094 {
		return nil, fmt.Errorf("vlan tag %d out of range 1-4094: %w", v.Tag, errdefs.ErrInvalidArgument)
	}
	if v.Name == "" {
		return nil, fmt.Errorf("vlan name is required: %w", errdefs.ErrInvalidArgument)
	}
	v.ID = 0
	if err := a.storage.Vlans.Create(a.storage.Session(ctx), v); err != nil {
		return nil, err
	}
	return v, nil
}

// DeleteVlan removes a VLAN that no pool address or switch port references.
func (a *Allocator) DeleteVlan(ctx context.Context, id uint) error {
	return a.storage.InTx(ctx, func(u *storage.Unit) error {
		if _, err := a.storage.Vlans.Get(u, id); err != nil {
			return err
		}
		ips, err := a.storage.IPAddresses.List(u, &id)
		if err != nil {
			return err
		}
		if len(ips) > 0 {
			return fmt.Errorf("vlan %d still holds %d pool addresses: %w", id, len(ips), errdefs.ErrConflict)
		}
		ports, err := a.storage.Ports.CountByVlan(u, id)
		if err != nil {
			return err
		}
		if ports > 0 {
			return fmt.Errorf("vlan %d is still set on %d switch ports: %w", id, ports, errdefs.ErrConflict)
		}
		return a.storage.Vlans.Delete(u, id)
	})
}

package api

import "evalgo.org/assetd/models"

// MessageResponse represents a simple message response.
type MessageResponse struct {
	Message string `json:"message"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status   string `json:"status"`
	Service  string `json:"service"`
	Version  string `json:"version"`
	Database string `json:"database,omitempty"`
	Error    string `json:"error,omitempty"`
}

// ImportResponse reports a bulk asset upload.
type ImportResponse struct {
	Message  string `json:"message"`
	Imported int    `json:"imported"`
}

// RecoveryKeyResponse reports a BitLocker upload.
type RecoveryKeyResponse struct {
	Message     string              `json:"message"`
	RecoveryKey *models.RecoveryKey `json:"recovery_key"`
}

// ReplaceResponse carries the successor created by a replacement.
type ReplaceResponse struct {
	Message  string        `json:"message"`
	NewAsset *models.Asset `json:"newAsset"`
}

// NextLANIDResponse is the advisory next cable number of a rack.
type NextLANIDResponse struct {
	RackID    uint `json:"rack_id"`
	NextLANID int  `json:"next_lan_id"`
}

// PoolAddressRequest creates or updates a pool address. AssetID, when set
// on create, assigns the new address right away.
type PoolAddressRequest struct {
	Address     string  `json:"address" validate:"required"`
	VlanID      *uint   `json:"vlan_id"`
	Description *string `json:"description"`
	AssetID     *uint   `json:"asset_id"`
}

func (r PoolAddressRequest) model() *models.IPAddress {
	return &models.IPAddress{Address: r.Address, VlanID: r.VlanID, Description: r.Description}
}

// AssignmentRequest binds a pool address to an asset.
type AssignmentRequest struct {
	AssetID uint `json:"asset_id" validate:"required"`
}

// VlanRequest creates a VLAN.
type VlanRequest struct {
	Tag  int    `json:"tag" validate:"min=1,max=4094"`
	Name string `json:"name" validate:"required"`
}

// RackRequest creates or updates a rack.
type RackRequest struct {
	Name        string  `json:"name" validate:"required"`
	Location    string  `json:"location"`
	Description *string `json:"description"`
}

// SwitchRequest creates or updates a switch. PortCount ports are
// provisioned on create and added or removed on update.
type SwitchRequest struct {
	RackID       uint    `json:"rack_id" validate:"required"`
	Name         string  `json:"name" validate:"required"`
	Model        *string `json:"model"`
	ManagementIP *string `json:"management_ip" validate:"omitempty,ip"`
	PortCount    int     `json:"port_count"`
}

// PortRequest updates a port, or appends one to SwitchID on create.
type PortRequest struct {
	SwitchID    uint    `json:"switch_id"`
	CableID     *string `json:"cable_id"`
	VlanID      *uint   `json:"vlan_id"`
	ConnectedTo *string `json:"connected_to"`
	Notes       *string `json:"notes"`
	Status      string  `json:"status" validate:"omitempty,oneof=Disabled Active Reserved Faulty"`
}

func (r PortRequest) model() *models.SwitchPort {
	return &models.SwitchPort{
		SwitchID:    r.SwitchID,
		CableID:     r.CableID,
		VlanID:      r.VlanID,
		ConnectedTo: r.ConnectedTo,
		Notes:       r.Notes,
		Status:      r.Status,
	}
}

func (r SwitchRequest) model() *models.Switch {
	return &models.Switch{
		RackID:       r.RackID,
		Name:         r.Name,
		Model:        r.Model,
		ManagementIP: r.ManagementIP,
		PortCount:    r.PortCount,
	}
}

package models

import "time"

// Derived IP address states.
const (
	IPStatusAssigned  = "Assigned"
	IPStatusAvailable = "Available"
)

// Switch port states.
const (
	PortDisabled = "Disabled"
	PortActive   = "Active"
	PortReserved = "Reserved"
	PortFaulty   = "Faulty"
)

// ValidPortStatus reports whether s is a known port status.
func ValidPortStatus(s string) bool {
	switch s {
	case PortDisabled, PortActive, PortReserved, PortFaulty:
		return true
	}
	return false
}

// Vlan is a layer-2 segment that pool addresses and ports can reference.
type Vlan struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Tag  int    `json:"tag" gorm:"not null;uniqueIndex"`
	Name string `json:"name" gorm:"size:128;not null"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName pins the table name.
func (Vlan) TableName() string { return "vlans" }

// IPAddress is one entry of the address pool. It has no "used" flag:
// availability is derived from the absence of an IPAssignment.
type IPAddress struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	Address     string  `json:"address" gorm:"size:64;not null;uniqueIndex"`
	VlanID      *uint   `json:"vlan_id" gorm:"index"`
	Description *string `json:"description" gorm:"size:255"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName pins the table name.
func (IPAddress) TableName() string { return "ip_addresses" }

// IPAssignment binds one pool address to one asset. The unique index on
// IPAddressID enforces at most one assignment per address.
type IPAssignment struct {
	ID          uint `json:"id" gorm:"primaryKey"`
	IPAddressID uint `json:"ip_address_id" gorm:"column:ip_address_id;not null;uniqueIndex"`
	AssetID     uint `json:"asset_id" gorm:"not null;index"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName pins the table name.
func (IPAssignment) TableName() string { return "ip_assignments" }

// Rack is a physical location grouping switches. Name is only unique
// together with Location.
type Rack struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	Name        string  `json:"name" gorm:"size:128;not null;uniqueIndex:idx_rack_name_location"`
	Location    string  `json:"location" gorm:"size:128;not null;default:'';uniqueIndex:idx_rack_name_location"`
	Description *string `json:"description" gorm:"size:255"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName pins the table name.
func (Rack) TableName() string { return "racks" }

// Switch is a network switch mounted in a rack. Its ports are numbered
// densely 1..PortCount.
type Switch struct {
	ID           uint    `json:"id" gorm:"primaryKey"`
	RackID       uint    `json:"rack_id" gorm:"not null;index"`
	Name         string  `json:"name" gorm:"size:128;not null"`
	Model        *string `json:"model" gorm:"size:128"`
	ManagementIP *string `json:"management_ip" gorm:"column:management_ip;size:64"`
	PortCount    int     `json:"port_count" gorm:"not null;default:0"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName pins the table name.
func (Switch) TableName() string { return "switches" }

// SwitchPort carries the wiring metadata of one switch port.
type SwitchPort struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	SwitchID    uint    `json:"switch_id" gorm:"not null;uniqueIndex:idx_port_switch_number"`
	PortNumber  int     `json:"port_number" gorm:"not null;uniqueIndex:idx_port_switch_number"`
	CableID     *string `json:"cable_id" gorm:"size:64"`
	VlanID      *uint   `json:"vlan_id"`
	ConnectedTo *string `json:"connected_to" gorm:"size:255"`
	Notes       *string `json:"notes" gorm:"type:text"`
	Status      string  `json:"status" gorm:"size:32;not null;default:Disabled"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName pins the table name.
func (SwitchPort) TableName() string { return "switch_ports" }

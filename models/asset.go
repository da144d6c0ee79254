package models

import "time"

// Asset status values.
const (
	StatusActive   = "Active"
	StatusReplaced = "Replaced"
	StatusInRepair = "In Repair"
	StatusRetired  = "Retired"
)

// ValidStatus reports whether s is a known asset status.
func ValidStatus(s string) bool {
	switch s {
	case StatusActive, StatusReplaced, StatusInRepair, StatusRetired:
		return true
	}
	return false
}

// Asset is a tracked piece of IT hardware.
//
// Code is the organization-wide asset identifier. It is always stored in
// normalized form (see inventory.NormalizeCode) and carries a unique index,
// so two spellings of the same code can never coexist.
//
// Every descriptive attribute is a pointer: nil means "not recorded", which
// the incomplete filter treats the same as an empty string.
//
// Example JSON representation:
//
//	{
//	  "id": 42,
//	  "code": "PC0042",
//	  "name": "Finance laptop",
//	  "hostname": "FIN-LT-042",
//	  "user_name": "j.doe",
//	  "department": "Finance",
//	  "status": "Active",
//	  "licenses": [{"program": "Visio", "license_key": "XXXX"}]
//	}
type Asset struct {
	ID uint `json:"id" gorm:"primaryKey"`

	// Code is the normalized asset code (unique when present)
	Code *string `json:"code" gorm:"size:64;uniqueIndex"`

	// Name is the display name shown in listings and IP pool views
	Name *string `json:"name" gorm:"size:255"`

	// Hardware
	Brand        *string `json:"brand" gorm:"size:128"`
	Model        *string `json:"model" gorm:"size:128"`
	SerialNumber *string `json:"serial_number" gorm:"size:128;index"`
	CPU          *string `json:"cpu" gorm:"column:cpu;size:128"`
	RAM          *string `json:"ram" gorm:"column:ram;size:64"`
	Storage      *string `json:"storage" gorm:"size:64"`

	// Software
	OperatingSystem *string `json:"operating_system" gorm:"size:128"`
	WindowsKey      *string `json:"windows_key" gorm:"size:64"`
	OfficeVersion   *string `json:"office_version" gorm:"size:64"`
	OfficeKey       *string `json:"office_key" gorm:"size:64"`
	Antivirus       *string `json:"antivirus" gorm:"size:128"`

	// Network identity
	Hostname   *string `json:"hostname" gorm:"size:128;index"`
	IPAddress  *string `json:"ip_address" gorm:"column:ip_address;size:64"`
	MACAddress *string `json:"mac_address" gorm:"column:mac_address;size:32"`

	// Registration flags
	DomainJoined *bool `json:"domain_joined"`
	MDMEnrolled  *bool `json:"mdm_enrolled" gorm:"column:mdm_enrolled"`

	// Assignment
	UserName       *string `json:"user_name" gorm:"size:128;index"`
	Department     *string `json:"department" gorm:"size:128"`
	Location       *string `json:"location" gorm:"size:128"`
	Classification *string `json:"classification" gorm:"size:64"`

	// Lifecycle dates
	PurchaseDate   *Date `json:"purchase_date"`
	StartDate      *Date `json:"start_date"`
	WarrantyExpiry *Date `json:"warranty_expiry"`

	// Status is one of the Status* constants
	Status string `json:"status" gorm:"size:32;not null;default:Active;index"`

	Notes *string `json:"notes" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Children are loaded explicitly by the inventory store, never by gorm.
	RecoveryKeys []RecoveryKey  `json:"recovery_keys,omitempty" gorm:"-"`
	Licenses     []LicenseEntry `json:"licenses,omitempty" gorm:"-"`
}

// TableName pins the table name.
func (Asset) TableName() string { return "assets" }

// DisplayName returns the best human label for the asset.
func (a *Asset) DisplayName() string {
	switch {
	case a.Name != nil && *a.Name != "":
		return *a.Name
	case a.Hostname != nil && *a.Hostname != "":
		return *a.Hostname
	case a.Code != nil:
		return *a.Code
	}
	return ""
}

// RecoveryKey is a BitLocker recovery key for one drive of an asset.
type RecoveryKey struct {
	ID      uint   `json:"id" gorm:"primaryKey"`
	AssetID uint   `json:"asset_id" gorm:"not null;uniqueIndex:idx_recovery_asset_drive"`
	Drive   string `json:"drive" gorm:"size:8;not null;uniqueIndex:idx_recovery_asset_drive"`
	Key     string `json:"recovery_key" gorm:"column:recovery_key;size:128;not null"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName pins the table name.
func (RecoveryKey) TableName() string { return "recovery_keys" }

// LicenseEntry records a licensed program installed on an asset.
type LicenseEntry struct {
	ID         uint    `json:"id" gorm:"primaryKey"`
	AssetID    uint    `json:"asset_id" gorm:"not null;index"`
	Program    string  `json:"program" gorm:"size:255;not null"`
	LicenseKey *string `json:"license_key" gorm:"size:255"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName pins the table name.
func (LicenseEntry) TableName() string { return "license_entries" }

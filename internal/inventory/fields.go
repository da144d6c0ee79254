package inventory

import (
	"strings"

	"evalgo.org/assetd/internal/storage"
	"evalgo.org/assetd/models"
)

// CompletenessFields are the asset columns the incomplete filter checks.
// The list is maintained by hand: adding a column to models.Asset does not
// change what "incomplete" means until it is added here.
var CompletenessFields = []storage.Column{
	{Name: "code", Text: true},
	{Name: "name", Text: true},
	{Name: "brand", Text: true},
	{Name: "model", Text: true},
	{Name: "serial_number", Text: true},
	{Name: "cpu", Text: true},
	{Name: "ram", Text: true},
	{Name: "storage", Text: true},
	{Name: "operating_system", Text: true},
	{Name: "windows_key", Text: true},
	{Name: "office_version", Text: true},
	{Name: "office_key", Text: true},
	{Name: "antivirus", Text: true},
	{Name: "hostname", Text: true},
	{Name: "ip_address", Text: true},
	{Name: "mac_address", Text: true},
	{Name: "domain_joined"},
	{Name: "mdm_enrolled"},
	{Name: "user_name", Text: true},
	{Name: "department", Text: true},
	{Name: "location", Text: true},
	{Name: "classification", Text: true},
	{Name: "purchase_date"},
	{Name: "start_date"},
	{Name: "warranty_expiry"},
}

// SearchColumns are matched by the free-text search.
var SearchColumns = []string{
	"code",
	"name",
	"hostname",
	"ip_address",
	"serial_number",
	"user_name",
	"department",
	"location",
}

// CarryLicenses is the carry-over name that moves license entries.
// "license_entries" and "licenseEntries" are accepted as well.
const CarryLicenses = "licenses"

var licenseKeys = []string{fieldKey(CarryLicenses), fieldKey("license_entries")}

type transferable struct {
	name string
	// move copies the field from src to dst and clears it on src
	move func(dst, src *models.Asset)
}

// transferableFields is the allow-list of scalar fields a replacement may
// carry over. name doubles as the column name.
var transferableFields = []transferable{
	{"hostname", func(d, s *models.Asset) { d.Hostname, s.Hostname = s.Hostname, nil }},
	{"ip_address", func(d, s *models.Asset) { d.IPAddress, s.IPAddress = s.IPAddress, nil }},
	{"mac_address", func(d, s *models.Asset) { d.MACAddress, s.MACAddress = s.MACAddress, nil }},
	{"domain_joined", func(d, s *models.Asset) { d.DomainJoined, s.DomainJoined = s.DomainJoined, nil }},
	{"mdm_enrolled", func(d, s *models.Asset) { d.MDMEnrolled, s.MDMEnrolled = s.MDMEnrolled, nil }},
	{"antivirus", func(d, s *models.Asset) { d.Antivirus, s.Antivirus = s.Antivirus, nil }},
	{"user_name", func(d, s *models.Asset) { d.UserName, s.UserName = s.UserName, nil }},
	{"department", func(d, s *models.Asset) { d.Department, s.Department = s.Department, nil }},
	{"location", func(d, s *models.Asset) { d.Location, s.Location = s.Location, nil }},
	{"classification", func(d, s *models.Asset) { d.Classification, s.Classification = s.Classification, nil }},
	{"office_version", func(d, s *models.Asset) { d.OfficeVersion, s.OfficeVersion = s.OfficeVersion, nil }},
	{"office_key", func(d, s *models.Asset) { d.OfficeKey, s.OfficeKey = s.OfficeKey, nil }},
}

// TransferableFields returns the names of the scalar fields a replacement
// may carry over.
func TransferableFields() []string {
	names := make([]string, len(transferableFields))
	for i, f := range transferableFields {
		names[i] = f.name
	}
	return names
}

// DefaultCarryOver is used when a replacement request names no fields.
func DefaultCarryOver() []string {
	return append(TransferableFields(), CarryLicenses)
}

// fieldKey folds snake_case and camelCase spellings onto one key, so
// "ip_address", "ipAddress" and "IPAddress" select the same field.
func fieldKey(name string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), "_", ""))
}

// carryPlan is the resolved carry-over selection of one replacement.
type carryPlan struct {
	fields   []transferable
	licenses bool
}

// planCarryOver intersects requested with the allow-list. Unknown names are
// dropped; nil selects DefaultCarryOver.
func planCarryOver(requested []string) carryPlan {
	if requested == nil {
		requested = DefaultCarryOver()
	}

	want := make(map[string]bool, len(requested))
	for _, name := range requested {
		want[fieldKey(name)] = true
	}

	var plan carryPlan
	for _, f := range transferableFields {
		if want[fieldKey(f.name)] {
			plan.fields = append(plan.fields, f)
		}
	}
	for _, k := range licenseKeys {
		plan.licenses = plan.licenses || want[k]
	}
	return plan
}

// columns lists the database columns the plan clears on the old asset.
func (p carryPlan) columns() []string {
	cols := make([]string, len(p.fields))
	for i, f := range p.fields {
		cols[i] = f.name
	}
	return cols
}

package importer

import (
	"strings"

	"evalgo.org/assetd/models"
)

var textColumns = map[string]func(a *models.Asset) **string{
	"code":             func(a *models.Asset) **string { return &a.Code },
	"name":             func(a *models.Asset) **string { return &a.Name },
	"brand":            func(a *models.Asset) **string { return &a.Brand },
	"model":            func(a *models.Asset) **string { return &a.Model },
	"serial_number":    func(a *models.Asset) **string { return &a.SerialNumber },
	"cpu":              func(a *models.Asset) **string { return &a.CPU },
	"ram":              func(a *models.Asset) **string { return &a.RAM },
	"storage":          func(a *models.Asset) **string { return &a.Storage },
	"operating_system": func(a *models.Asset) **string { return &a.OperatingSystem },
	"windows_key":      func(a *models.Asset) **string { return &a.WindowsKey },
	"office_version":   func(a *models.Asset) **string { return &a.OfficeVersion },
	"office_key":       func(a *models.Asset) **string { return &a.OfficeKey },
	"antivirus":        func(a *models.Asset) **string { return &a.Antivirus },
	"hostname":         func(a *models.Asset) **string { return &a.Hostname },
	"ip_address":       func(a *models.Asset) **string { return &a.IPAddress },
	"mac_address":      func(a *models.Asset) **string { return &a.MACAddress },
	"user_name":        func(a *models.Asset) **string { return &a.UserName },
	"department":       func(a *models.Asset) **string { return &a.Department },
	"location":         func(a *models.Asset) **string { return &a.Location },
	"classification":   func(a *models.Asset) **string { return &a.Classification },
	"notes":            func(a *models.Asset) **string { return &a.Notes },
}

var flagColumns = map[string]func(a *models.Asset) **bool{
	"domain_joined": func(a *models.Asset) **bool { return &a.DomainJoined },
	"mdm_enrolled":  func(a *models.Asset) **bool { return &a.MDMEnrolled },
}

var dateColumns = map[string]func(a *models.Asset) **models.Date{
	"purchase_date":   func(a *models.Asset) **models.Date { return &a.PurchaseDate },
	"start_date":      func(a *models.Asset) **models.Date { return &a.StartDate },
	"warranty_expiry": func(a *models.Asset) **models.Date { return &a.WarrantyExpiry },
}

const statusColumn = "status"

// aliases maps common spreadsheet headings onto asset fields.
var aliases = map[string]string{
	"asset_code":    "code",
	"asset_no":      "code",
	"asset_number":  "code",
	"asset_name":    "name",
	"serial":        "serial_number",
	"serial_no":     "serial_number",
	"processor":     "cpu",
	"memory":        "ram",
	"disk":          "storage",
	"os":            "operating_system",
	"ip":            "ip_address",
	"mac":           "mac_address",
	"user":          "user_name",
	"username":      "user_name",
	"assigned_to":   "user_name",
	"dept":          "department",
	"mdm":           "mdm_enrolled",
	"domain":        "domain_joined",
	"warranty":      "warranty_expiry",
	"warranty_date": "warranty_expiry",
	"purchased":     "purchase_date",
}

var fieldByKey map[string]string

func init() {
	fieldByKey = make(map[string]string)
	add := func(header, field string) {
		fieldByKey[foldHeader(header)] = field
	}
	for name := range textColumns {
		add(name, name)
	}
	for name := range flagColumns {
		add(name, name)
	}
	for name := range dateColumns {
		add(name, name)
	}
	add(statusColumn, statusColumn)
	for alias, field := range aliases {
		add(alias, field)
	}
}

// NormalizeHeader lower-cases a header cell and turns spaces and hyphens
// into underscores: "Serial Number" becomes "serial_number".
func NormalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.Map(func(r rune) rune {
		if r == ' ' || r == '-' {
			return '_'
		}
		return r
	}, h)
}

// foldHeader also drops underscores so camelCase headings match.
func foldHeader(h string) string {
	return strings.ReplaceAll(NormalizeHeader(h), "_", "")
}

// fieldFor returns the asset field a header cell maps to.
func fieldFor(header string) (string, bool) {
	f, ok := fieldByKey[foldHeader(header)]
	return f, ok
}

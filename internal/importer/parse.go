package importer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/containerd/errdefs"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"evalgo.org/assetd/internal/inventory"
	"evalgo.org/assetd/models"
)

// DateLayouts are tried in order for date cells.
var DateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"2006/01/02",
	"02.01.2006",
}

// ParseCSV reads a header-driven CSV export into assets. Unknown columns
// are ignored. UTF-8 and UTF-16 (with BOM) input is accepted.
func ParseCSV(r io.Reader) ([]models.Asset, error) {
	cr := csv.NewReader(decodeText(r))
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("csv file is empty: %w", errdefs.ErrInvalidArgument)
	}
	if err != nil {
		return nil, fmt.Errorf("invalid csv: %v: %w", err, errdefs.ErrInvalidArgument)
	}
	m, err := newMapper(header, false)
	if err != nil {
		return nil, err
	}

	var assets []models.Asset
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("invalid csv: %v: %w", err, errdefs.ErrInvalidArgument)
		}
		if a, ok := m.row(rec); ok {
			assets = append(assets, a)
		}
	}
	return assets, nil
}

// ParseXLSX reads the first worksheet of an .xlsx workbook with the same
// column mapping as ParseCSV. Date cells stored as serial numbers are
// converted.
func ParseXLSX(r io.Reader) ([]models.Asset, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("invalid xlsx workbook: %v: %w", err, errdefs.ErrInvalidArgument)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("xlsx workbook has no sheets: %w", errdefs.ErrInvalidArgument)
	}
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %v: %w", sheets[0], err, errdefs.ErrInvalidArgument)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q is empty: %w", sheets[0], errdefs.ErrInvalidArgument)
	}

	m, err := newMapper(rows[0], true)
	if err != nil {
		return nil, err
	}
	var assets []models.Asset
	for _, rec := range rows[1:] {
		if a, ok := m.row(rec); ok {
			assets = append(assets, a)
		}
	}
	return assets, nil
}

// mapper turns records into assets by header position.
type mapper struct {
	fields      []string // per column; "" for ignored columns
	serialDates bool
}

func newMapper(header []string, serialDates bool) (*mapper, error) {
	m := &mapper{fields: make([]string, len(header)), serialDates: serialDates}
	known := 0
	for i, h := range header {
		if f, ok := fieldFor(h); ok {
			m.fields[i] = f
			known++
		}
	}
	if known == 0 {
		return nil, fmt.Errorf("header row names no asset columns: %w", errdefs.ErrInvalidArgument)
	}
	return m, nil
}

// row maps one record. Records with no values are skipped.
func (m *mapper) row(rec []string) (models.Asset, bool) {
	a := models.Asset{Status: models.StatusActive}
	seen := false
	for i, raw := range rec {
		if i >= len(m.fields) || m.fields[i] == "" {
			continue
		}
		v := cell(raw)
		if v == nil {
			continue
		}
		seen = true
		m.set(&a, m.fields[i], *v)
	}
	if !seen {
		return a, false
	}
	if a.Code != nil {
		code := inventory.NormalizeCode(*a.Code)
		if code == "" {
			a.Code = nil
		} else {
			a.Code = &code
		}
	}
	return a, true
}

func (m *mapper) set(a *models.Asset, field, v string) {
	if get, ok := textColumns[field]; ok {
		*get(a) = &v
		return
	}
	if get, ok := flagColumns[field]; ok {
		*get(a) = ParseFlag(v)
		return
	}
	if get, ok := dateColumns[field]; ok {
		d := ParseDate(v)
		if d == nil && m.serialDates {
			d = serialDate(v)
		}
		*get(a) = d
		return
	}
	if field == statusColumn {
		if s, ok := matchStatus(v); ok {
			a.Status = s
		}
	}
}

// cell trims raw and maps "" and "N/A" (any case) to nil.
func cell(raw string) *string {
	v := strings.TrimSpace(raw)
	if v == "" || strings.EqualFold(v, "N/A") {
		return nil
	}
	return &v
}

// ParseDate parses v with DateLayouts. Unparsable values yield nil.
func ParseDate(v string) *models.Date {
	v = strings.TrimSpace(v)
	for _, layout := range DateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return models.Ptr(models.NewDate(t))
		}
	}
	return nil
}

func serialDate(v string) *models.Date {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || f <= 0 {
		return nil
	}
	t, err := excelize.ExcelDateToTime(f, false)
	if err != nil {
		return nil
	}
	return models.Ptr(models.NewDate(t))
}

// ParseFlag reads yes/no, true/false and 1/0. Anything else yields nil.
func ParseFlag(v string) *bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "yes", "y", "true", "1":
		return models.Ptr(true)
	case "no", "n", "false", "0":
		return models.Ptr(false)
	}
	return nil
}

func matchStatus(v string) (string, bool) {
	for _, s := range []string{models.StatusActive, models.StatusReplaced, models.StatusInRepair, models.StatusRetired} {
		if strings.EqualFold(strings.TrimSpace(v), s) {
			return s, true
		}
	}
	return "", false
}

// decodeText strips a UTF-8 BOM and converts UTF-16 input marked by a BOM to
// UTF-8.
func decodeText(r io.Reader) io.Reader {
	return transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
}

func decodeBytes(b []byte) string {
	out, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), b)
	if err != nil {
		return string(bytes.ToValidUTF8(b, nil))
	}
	return string(out)
}

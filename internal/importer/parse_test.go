package importer

import (
	"bytes"
	"strings"
	"testing"

	"github.com/containerd/errdefs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/unicode"

	"evalgo.org/assetd/models"
)

func TestNormalizeHeader(t *testing.T) {
	assert.Equal(t, "serial_number", NormalizeHeader(" Serial Number "))
	assert.Equal(t, "mac_address", NormalizeHeader("MAC-Address"))

	for header, field := range map[string]string{
		"Serial Number": "serial_number",
		"serialNumber":  "serial_number",
		"IP":            "ip_address",
		"Asset Code":    "code",
		"Warranty":      "warranty_expiry",
		"Status":        "status",
	} {
		got, ok := fieldFor(header)
		assert.True(t, ok, header)
		assert.Equal(t, field, got, header)
	}
	_, ok := fieldFor("favourite colour")
	assert.False(t, ok)
}

func TestParseCSV(t *testing.T) {
	input := "Code,Name,Serial Number,Domain Joined,Start Date,Purchase Date,Department,Status,Comment\n" +
		"ab-12,Reception PC,SN1,yes,not-a-date,2023-05-17,N/A,In Repair,ignored\n" +
		" pc 7 ,,SN2,0,15/03/2022,,n/a,,\n" +
		",,,,,,,,\n"

	assets, err := ParseCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, assets, 2)

	first := assets[0]
	assert.Equal(t, "AB12", *first.Code)
	assert.Equal(t, "Reception PC", *first.Name)
	assert.Equal(t, "SN1", *first.SerialNumber)
	assert.True(t, *first.DomainJoined)
	assert.Nil(t, first.StartDate, "unparsable dates become null")
	require.NotNil(t, first.PurchaseDate)
	assert.Equal(t, "2023-05-17", first.PurchaseDate.Format("2006-01-02"))
	assert.Nil(t, first.Department)
	assert.Equal(t, models.StatusInRepair, first.Status)

	second := assets[1]
	assert.Equal(t, "PC7", *second.Code)
	assert.Nil(t, second.Name)
	assert.False(t, *second.DomainJoined)
	require.NotNil(t, second.StartDate)
	assert.Equal(t, "2022-03-15", second.StartDate.Format("2006-01-02"))
	assert.Nil(t, second.Department)
	assert.Equal(t, models.StatusActive, second.Status)
}

func TestParseCSVErrors(t *testing.T) {
	_, err := ParseCSV(strings.NewReader(""))
	assert.True(t, errdefs.IsInvalidArgument(err))

	_, err = ParseCSV(strings.NewReader("colour,shape\nred,round\n"))
	assert.True(t, errdefs.IsInvalidArgument(err))

	_, err = ParseCSV(strings.NewReader("code,name\n\"unterminated,x\n"))
	assert.True(t, errdefs.IsInvalidArgument(err))
}

func TestParseCSVWithBOM(t *testing.T) {
	utf8BOM := "\ufeffcode,hostname\nPC1,desk-1\n"
	assets, err := ParseCSV(strings.NewReader(utf8BOM))
	require.NoError(t, err)
	require.Len(t, assets, 1)
	assert.Equal(t, "desk-1", *assets[0].Hostname)

	utf16, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().String("code,hostname\nPC2,desk-2\n")
	require.NoError(t, err)
	assets, err = ParseCSV(strings.NewReader(utf16))
	require.NoError(t, err)
	require.Len(t, assets, 1)
	assert.Equal(t, "PC2", *assets[0].Code)
}

func TestParseDateAndFlag(t *testing.T) {
	for _, v := range []string{"2024-03-01", "01/03/2024", "2024/03/01", "01.03.2024"} {
		d := ParseDate(v)
		require.NotNil(t, d, v)
		assert.Equal(t, "2024-03-01", d.Format("2006-01-02"), v)
	}
	assert.Nil(t, ParseDate("not-a-date"))
	assert.Nil(t, ParseDate("31/02/2024"))

	assert.True(t, *ParseFlag("Yes"))
	assert.True(t, *ParseFlag("TRUE"))
	assert.False(t, *ParseFlag("no"))
	assert.False(t, *ParseFlag("0"))
	assert.Nil(t, ParseFlag("maybe"))
}

func TestParseXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"Asset Code", "Hostname", "Warranty Expiry", "Start Date", "MDM Enrolled"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"lt-1", "LT-ONE", 45352, "2024-01-15", "yes"}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]interface{}{"lt-2", "N/A", "soon", "", "no"}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	assets, err := ParseXLSX(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Len(t, assets, 2)

	assert.Equal(t, "LT1", *assets[0].Code)
	assert.Equal(t, "LT-ONE", *assets[0].Hostname)
	require.NotNil(t, assets[0].WarrantyExpiry)
	assert.Equal(t, "2024-03-01", assets[0].WarrantyExpiry.Format("2006-01-02"))
	require.NotNil(t, assets[0].StartDate)
	assert.Equal(t, "2024-01-15", assets[0].StartDate.Format("2006-01-02"))
	assert.True(t, *assets[0].MDMEnrolled)

	assert.Nil(t, assets[1].Hostname)
	assert.Nil(t, assets[1].WarrantyExpiry)
	assert.Nil(t, assets[1].StartDate)
	assert.False(t, *assets[1].MDMEnrolled)

	_, err = ParseXLSX(strings.NewReader("not a zip"))
	assert.True(t, errdefs.IsInvalidArgument(err))
}

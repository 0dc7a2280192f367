package claimcsv

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var importTime = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func TestReadRows(t *testing.T) {
	input := "\xEF\xBB\xBF Patient First Name ,Patient Last Name,MRN,Remarks\n" +
		"Jane,Doe,MRN-1,\"said \"\"hi\"\", left\"\n" +
		"\n" +
		"John,\"Smith\nJr\",MRN-2\n"

	rows, err := ReadRows(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "Jane", rows[0]["Patient First Name"])
	assert.Equal(t, `said "hi", left`, rows[0]["Remarks"])
	assert.Equal(t, "Smith\nJr", rows[1]["Patient Last Name"])
	assert.Equal(t, "", rows[1]["Remarks"])
}

func TestReadRowsKeepsBlankRecords(t *testing.T) {
	input := ",,\n" +
		"MRN,Claim ID,Primary Insurance\n" +
		",,\n" +
		"MRN-1,C-1,Aetna\n" +
		" , ,\n"

	rows, err := ReadRows(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 3, "blank lines before the header are skipped, after it they are rows")
	assert.Equal(t, "MRN-1", rows[1]["MRN"])

	_, ok := MapRow(rows[0], importTime)
	assert.False(t, ok)
	_, ok = MapRow(rows[2], importTime)
	assert.False(t, ok)
}

func TestReadRowsHeaderOnly(t *testing.T) {
	rows, err := ReadRows(strings.NewReader("MRN,Claim ID\n"))
	require.NoError(t, err)
	assert.Empty(t, rows)

	rows, err = ReadRows(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestMapRowAliasesAndDefaults(t *testing.T) {
	row := Row{
		"FirstName":           "Jane",
		"Last Name":           "Doe",
		"mrn":                 "MRN-1",
		"DOB":                 "03/04/1980",
		"dos":                 "not a date",
		"Charge":              "$1,250.75",
		"Payer":               "Aetna",
		"Member ID":           "M-1",
		"Claim ID":            "",
		"ClaimID":             "C-1",
		"NPI":                 "",
		"Secondary Member ID": "S-9",
	}

	rec, ok := MapRow(row, importTime)
	require.True(t, ok)
	assert.Equal(t, "Jane", rec.PatientFirstName)
	assert.Equal(t, "Doe", rec.PatientLastName)
	assert.Equal(t, "C-1", rec.ClaimID)
	assert.Equal(t, time.Date(1980, 3, 4, 0, 0, 0, 0, time.UTC), rec.DateOfBirth)
	assert.Equal(t, importTime, rec.DateOfService)
	assert.True(t, rec.ChargeAmount.Equal(decimal.RequireFromString("1250.75")))
	assert.Equal(t, DefaultProviderFirstName, rec.ProviderFirstName)
	assert.Equal(t, DefaultProviderLastName, rec.ProviderLastName)
	assert.Equal(t, DefaultProviderNPI, rec.ProviderNPI)
	assert.Empty(t, rec.SecondaryInsurance)
	assert.Empty(t, rec.SecondaryMemberID, "member id ignored without secondary insurance")
}

func TestMapRowLongFormDates(t *testing.T) {
	tests := []struct {
		value string
		want  time.Time
	}{
		{"March 4, 1980", time.Date(1980, 3, 4, 0, 0, 0, 0, time.UTC)},
		{"Mar 4, 1980", time.Date(1980, 3, 4, 0, 0, 0, 0, time.UTC)},
		{"1980-03-04 05:00", time.Date(1980, 3, 4, 5, 0, 0, 0, time.UTC)},
		{"1980-03-04", time.Date(1980, 3, 4, 0, 0, 0, 0, time.UTC)},
		{"03/04/1980", time.Date(1980, 3, 4, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			row := Row{
				"Patient First Name": "Jane",
				"Patient Last Name":  "Doe",
				"MRN":                "MRN-1",
				"Primary Insurance":  "Aetna",
				"Claim ID":           "C-1",
				"DOB":                tt.value,
				"Date of Service":    tt.value,
			}
			rec, ok := MapRow(row, importTime)
			require.True(t, ok)
			assert.Equal(t, tt.want, rec.DateOfBirth)
			assert.Equal(t, tt.want, rec.DateOfService)
		})
	}
}

func TestMapRowDropsIncomplete(t *testing.T) {
	base := Row{
		"Patient First Name": "Jane",
		"Patient Last Name":  "Doe",
		"MRN":                "MRN-1",
		"Primary Insurance":  "Aetna",
		"Claim ID":           "C-1",
	}
	_, ok := MapRow(base, importTime)
	require.True(t, ok)

	for key := range base {
		row := Row{}
		for k, v := range base {
			row[k] = v
		}
		delete(row, key)
		_, ok := MapRow(row, importTime)
		assert.False(t, ok, "row without %q must be dropped", key)
	}
}

func TestParseAmount(t *testing.T) {
	assert.Equal(t, "0", ParseAmount("").String())
	assert.Equal(t, "0", ParseAmount("abc").String())
	assert.Equal(t, "0", ParseAmount("-5").String())
	assert.Equal(t, "99.5", ParseAmount(" 99.50 ").String())
}

func TestWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	record := make([]string, len(ExportHeaders))
	record[0] = `Ann "Annie"`
	record[1] = "O'Neil, Jr"
	require.NoError(t, w.Write(record))
	require.NoError(t, w.Flush())
	assert.Equal(t, 1, w.Rows())

	lines := strings.Split(buf.String(), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, strings.Join(ExportHeaders, ","), lines[0])
	assert.True(t, strings.HasPrefix(lines[1], `"Ann ""Annie""","O'Neil, Jr",""`))
	assert.False(t, strings.HasSuffix(buf.String(), "\n"))

	assert.Error(t, w.Write([]string{"too", "short"}))
}

func TestWriterEmptyExport(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.Flush())
	assert.Equal(t, strings.Join(ExportHeaders, ","), buf.String())
}

func TestExportReimport(t *testing.T) {
	record := []string{
		"Jane", "Doe", "MRN-1", "1980-03-04", "2024-01-15", "150.25",
		"Aetna", "M-1", "Cigna", "S-1",
		"Greg", "House", "1234567890", "C-1",
		"PENDING", "", "", "", "", "", "", "", "", "",
		"Multi\nline, \"quoted\"", "", "",
	}

	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.Write(record))
	require.NoError(t, w.Flush())

	rows, err := ReadRows(&buf)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Multi\nline, \"quoted\"", rows[0]["Denial Description"])

	rec, ok := MapRow(rows[0], importTime)
	require.True(t, ok)
	assert.Equal(t, "Jane", rec.PatientFirstName)
	assert.Equal(t, "MRN-1", rec.MRN)
	assert.Equal(t, time.Date(1980, 3, 4, 0, 0, 0, 0, time.UTC), rec.DateOfBirth)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), rec.DateOfService)
	assert.Equal(t, "150.25", rec.ChargeAmount.String())
	assert.Equal(t, "Cigna", rec.SecondaryInsurance)
	assert.Equal(t, "S-1", rec.SecondaryMemberID)
	assert.Equal(t, "1234567890", rec.ProviderNPI)
	assert.Equal(t, "C-1", rec.ClaimID)
}


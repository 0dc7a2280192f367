// Package claimcsv reads and writes the claims CSV interchange format.
package claimcsv

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// ExportFilename is the attachment name used for downloads.
const ExportFilename = "claims-export.csv"

// ExportHeaders is the fixed column order of an export.
var ExportHeaders = []string{
	"Patient First Name",
	"Patient Last Name",
	"MRN",
	"Date of Birth",
	"Date of Service",
	"Charge Amount",
	"Primary Insurance",
	"Primary Member ID",
	"Secondary Insurance",
	"Secondary Member ID",
	"Provider First Name",
	"Provider Last Name",
	"Provider NPI",
	"Claim ID",
	"Stage",
	"Claim Status",
	"Claim Number",
	"Claim Received Date",
	"Check Number",
	"Check Date",
	"Paid Amount",
	"Payment Date",
	"Denial Codes",
	"Denied Line Items",
	"Denial Description",
	"Remarks",
	"Assigned To",
}

// Writer emits an export: a bare header line, then one line per record with
// every cell double-quoted. Lines are separated by "\n" with no trailing
// newline.
//
// encoding/csv only quotes cells that need it, so the always-quoted form is
// written here.
type Writer struct {
	w       *bufio.Writer
	started bool
	rows    int
}

// NewWriter returns a Writer on w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// Write appends one record. The header is written before the first record.
func (cw *Writer) Write(record []string) error {
	if len(record) != len(ExportHeaders) {
		return fmt.Errorf("claimcsv: record has %d fields, want %d", len(record), len(ExportHeaders))
	}
	if err := cw.writeHeader(); err != nil {
		return err
	}
	cells := make([]string, len(record))
	for i, cell := range record {
		cells[i] = quote(cell)
	}
	if _, err := cw.w.WriteString("\n" + strings.Join(cells, ",")); err != nil {
		return err
	}
	cw.rows++
	return nil
}

// Flush writes the header if nothing was written yet and flushes the buffer.
func (cw *Writer) Flush() error {
	if err := cw.writeHeader(); err != nil {
		return err
	}
	return cw.w.Flush()
}

// Rows returns the number of records written.
func (cw *Writer) Rows() int {
	return cw.rows
}

func (cw *Writer) writeHeader() error {
	if cw.started {
		return nil
	}
	cw.started = true
	_, err := cw.w.WriteString(strings.Join(ExportHeaders, ","))
	return err
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

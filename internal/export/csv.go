// Package export formats admin reports as CSV with the German conventions
// the back office expects: semicolon delimiter, UTF-8 BOM for Excel, decimal
// comma and "Ja"/"Nein" booleans.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"glowdesk/internal/money"
)

const utf8BOM = "\xef\xbb\xbf"

// Writer accumulates CSV rows in memory.
type Writer struct {
	buf *bytes.Buffer
	w   *csv.Writer
}

// NewWriter creates a CSV writer that emits the BOM and uses semicolons.
func NewWriter() *Writer {
	buf := &bytes.Buffer{}
	buf.WriteString(utf8BOM)

	w := csv.NewWriter(buf)
	w.Comma = ';'

	return &Writer{buf: buf, w: w}
}

// Write appends one record.
func (cw *Writer) Write(record []string) error {
	return cw.w.Write(record)
}

// Bytes flushes and returns the encoded document.
func (cw *Writer) Bytes() ([]byte, error) {
	cw.w.Flush()
	if err := cw.w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush csv: %w", err)
	}
	return cw.buf.Bytes(), nil
}

// FormatBool renders a boolean as "Ja" or "Nein".
func FormatBool(b bool) string {
	if b {
		return "Ja"
	}
	return "Nein"
}

// FormatInt renders an integer.
func FormatInt(n int) string {
	return fmt.Sprintf("%d", n)
}

// FormatAmount renders a minor-unit amount with a decimal comma ("49,90").
func FormatAmount(minor int64, currency string) (string, error) {
	d, err := money.FromMinorUnits(minor, currency)
	if err != nil {
		return "", err
	}
	exp, err := money.Exponent(currency)
	if err != nil {
		return "", err
	}
	return strings.ReplaceAll(d.StringFixed(exp), ".", ","), nil
}

// FormatDecimal renders a decimal with a decimal comma at the given scale.
func FormatDecimal(d decimal.Decimal, places int32) string {
	return strings.ReplaceAll(d.StringFixed(places), ".", ",")
}

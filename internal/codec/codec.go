package codec

import (
	"bytes"
	"encoding/base64"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
)

// Encode serializes a table into the binary form of mimeType. Columns are
// written in table order; absent and nil cells are written empty.
func Encode(table Table, mimeType string) ([]byte, error) {
	switch mimeType {
	case MimeCSV:
		return encodeCSV(table)
	case MimeXLSX:
		return encodeXLSX(table)
	default:
		return nil, fmt.Errorf("%w: no encoder for %q", ErrUnsupportedFormat, mimeType)
	}
}

// Decode parses raw bytes of mimeType into records. CSV input is read as
// ISO-8859-1 and XLSX input from its first sheet.
func Decode(data []byte, mimeType string) ([]Record, error) {
	switch mimeType {
	case MimeCSV:
		return decodeCSV(data)
	case MimeXLSX:
		return decodeXLSX(data)
	default:
		return nil, fmt.Errorf("%w: no decoder for %q", ErrUnsupportedFormat, mimeType)
	}
}

// DecodeBase64 decodes a base64 string, discarding a data-URL prefix
// (everything through the first comma) when present.
func DecodeBase64(s string) ([]byte, error) {
	if i := strings.IndexByte(s, ','); i >= 0 {
		s = s[i+1:]
	}
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\n', '\r', '\t':
			return -1
		}
		return r
	}, s)

	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		if raw, rawErr := base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "=")); rawErr == nil {
			return raw, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return data, nil
}

func encodeCSV(table Table) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(table.Columns); err != nil {
		return nil, err
	}

	row := make([]string, len(table.Columns))
	for _, rec := range table.Records {
		for i, col := range table.Columns {
			row[i] = formatCell(rec[col])
		}
		if len(row) == 1 && row[0] == "" {
			// A lone empty field would be a blank line, which readers skip.
			w.Flush()
			buf.WriteString("\"\"\n")
			continue
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeCSV(data []byte) ([]Record, error) {
	reader := csv.NewReader(charmap.ISO8859_1.NewDecoder().Reader(bytes.NewReader(data)))
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return toRecords(rows), nil
}

func encodeXLSX(table Table) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)

	header := make([]any, len(table.Columns))
	for i, col := range table.Columns {
		header[i] = col
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, err
	}

	for r, rec := range table.Records {
		row := make([]any, len(table.Columns))
		for i, col := range table.Columns {
			row[i] = xlsxCell(rec[col])
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func xlsxCell(v any) any {
	switch v.(type) {
	case nil:
		return ""
	case string, bool, int, int32, int64, float32, float64:
		return v
	default:
		return formatCell(v)
	}
}

func decodeXLSX(data []byte) ([]Record, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return []Record{}, nil
	}

	rows, err := sheetRows(f, sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return toRecords(rows), nil
}

// sheetRows reads every row up to the last one present in the sheet. Unlike
// GetRows, trailing rows whose cells are all empty are kept.
func sheetRows(f *excelize.File, sheet string) ([][]string, error) {
	it, err := f.Rows(sheet)
	if err != nil {
		return nil, err
	}
	defer it.Close()

	var rows [][]string
	for it.Next() {
		cols, err := it.Columns()
		if err != nil {
			return nil, err
		}
		rows = append(rows, cols)
	}
	if err := it.Error(); err != nil {
		return nil, err
	}
	return rows, nil
}

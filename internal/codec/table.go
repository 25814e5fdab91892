package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
)

// Mime types with tabular encoders and decoders.
const (
	MimeCSV  = "text/csv"
	MimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Supported reports whether mimeType has a tabular encoder and decoder.
func Supported(mimeType string) bool {
	return mimeType == MimeCSV || mimeType == MimeXLSX
}

// Record is a single row keyed by column name.
type Record map[string]any

// Table is an ordered set of records sharing a column layout.
type Table struct {
	Columns []string
	Records []Record
}

// NewTable builds a Table from records whose key order is unknown. Columns are
// the union of all keys, sorted for a stable layout.
func NewTable(records []Record) Table {
	seen := make(map[string]struct{})
	var columns []string
	for _, rec := range records {
		for key := range rec {
			if _, ok := seen[key]; !ok {
				seen[key] = struct{}{}
				columns = append(columns, key)
			}
		}
	}
	slices.Sort(columns)
	return Table{Columns: columns, Records: records}
}

// UnmarshalJSON decodes an array of objects, keeping columns in first-seen order.
func (t *Table) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	if err := expectDelim(dec, '['); err != nil {
		return err
	}

	seen := make(map[string]struct{})
	table := Table{Columns: []string{}, Records: []Record{}}

	for dec.More() {
		if err := expectDelim(dec, '{'); err != nil {
			return err
		}

		rec := Record{}
		for dec.More() {
			tok, err := dec.Token()
			if err != nil {
				return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
			}
			key := tok.(string)

			var value any
			if err := dec.Decode(&value); err != nil {
				return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
			}
			rec[key] = normalizeJSON(value)

			if _, ok := seen[key]; !ok {
				seen[key] = struct{}{}
				table.Columns = append(table.Columns, key)
			}
		}

		if err := expectDelim(dec, '}'); err != nil {
			return err
		}
		table.Records = append(table.Records, rec)
	}

	if err := expectDelim(dec, ']'); err != nil {
		return err
	}

	*t = table
	return nil
}

// MarshalJSON encodes the records as an array of objects.
func (t Table) MarshalJSON() ([]byte, error) {
	if t.Records == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(t.Records)
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("%w: expected %q, got %v", ErrInvalidPayload, want, tok)
	}
	return nil
}

func normalizeJSON(v any) any {
	n, ok := v.(json.Number)
	if !ok {
		return v
	}
	if i, err := n.Int64(); err == nil {
		return i
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return n.String()
}

// formatCell renders a value the way a delimited-text writer expects it.
// nil and missing values become empty cells.
func formatCell(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		if val {
			return "True"
		}
		return "False"
	case int:
		return strconv.Itoa(val)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case int64:
		return strconv.FormatInt(val, 10)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case json.Number:
		return val.String()
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(b)
	}
}

// missing mirrors the tokens a dataframe reader treats as absent before the
// empty-string fill is applied.
var missing = map[string]struct{}{
	"": {}, "#N/A": {}, "#N/A N/A": {}, "#NA": {}, "-1.#IND": {}, "-1.#QNAN": {},
	"-NaN": {}, "-nan": {}, "1.#IND": {}, "1.#QNAN": {}, "<NA>": {}, "N/A": {},
	"NA": {}, "NULL": {}, "NaN": {}, "None": {}, "n/a": {}, "nan": {}, "null": {},
}

func isMissing(cell string) bool {
	_, ok := missing[cell]
	return ok
}

// toRecords converts a header row plus data rows into records. Column types
// are inferred per column: int64 when every present cell is an integer,
// float64 when every present cell is numeric, bool for True/False columns,
// strings otherwise. Absent cells become "".
func toRecords(rows [][]string) []Record {
	if len(rows) == 0 {
		return []Record{}
	}

	header := headerNames(rows[0])
	data := rows[1:]

	kinds := make([]columnKind, len(header))
	for col := range header {
		kinds[col] = inferColumn(data, col)
	}

	records := make([]Record, 0, len(data))
	for _, row := range data {
		rec := make(Record, len(header))
		for col, name := range header {
			cell := ""
			if col < len(row) {
				cell = row[col]
			}
			rec[name] = kinds[col].convert(cell)
		}
		records = append(records, rec)
	}
	return records
}

func headerNames(row []string) []string {
	names := make([]string, len(row))
	for i, name := range row {
		name = strings.TrimSpace(name)
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		names[i] = name
	}
	return names
}

type columnKind int

const (
	kindString columnKind = iota
	kindInt
	kindFloat
	kindBool
)

func inferColumn(rows [][]string, col int) columnKind {
	isInt, isFloat, isBool := true, true, true
	present := false

	for _, row := range rows {
		if col >= len(row) || isMissing(row[col]) {
			continue
		}
		present = true
		cell := row[col]

		if _, err := strconv.ParseInt(cell, 10, 64); err != nil {
			isInt = false
		}
		if f, err := strconv.ParseFloat(cell, 64); err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
			isFloat = false
		}
		if lower := strings.ToLower(cell); lower != "true" && lower != "false" {
			isBool = false
		}
	}

	switch {
	case !present:
		return kindString
	case isInt:
		return kindInt
	case isFloat:
		return kindFloat
	case isBool:
		return kindBool
	default:
		return kindString
	}
}

func (k columnKind) convert(cell string) any {
	if isMissing(cell) {
		return ""
	}
	switch k {
	case kindInt:
		v, _ := strconv.ParseInt(cell, 10, 64)
		return v
	case kindFloat:
		v, _ := strconv.ParseFloat(cell, 64)
		return v
	case kindBool:
		return strings.EqualFold(cell, "true")
	default:
		return cell
	}
}

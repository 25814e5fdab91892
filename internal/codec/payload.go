package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Payload is upload content: either tabular records to be encoded, or a
// base64 string (optionally a data URL) carrying the bytes directly.
type Payload struct {
	table   *Table
	encoded string
}

// FromTable returns a tabular payload.
func FromTable(t Table) Payload {
	return Payload{table: &t}
}

// FromBase64 returns an encoded payload.
func FromBase64(s string) Payload {
	return Payload{encoded: s}
}

// IsTabular reports whether the payload carries records.
func (p Payload) IsTabular() bool {
	return p.table != nil
}

// IsEmpty reports whether the payload carries no content at all: it was never
// set, or is an empty base64 string.
func (p Payload) IsEmpty() bool {
	return p.table == nil && p.encoded == ""
}

// Table returns the records of a tabular payload.
func (p Payload) Table() (Table, bool) {
	if p.table == nil {
		return Table{}, false
	}
	return *p.table, true
}

// Bytes produces the binary content to transfer. Tabular payloads are
// encoded for mimeType; encoded payloads are base64-decoded.
func (p Payload) Bytes(mimeType string) ([]byte, error) {
	if p.table != nil {
		return Encode(*p.table, mimeType)
	}
	return DecodeBase64(p.encoded)
}

func (p *Payload) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return fmt.Errorf("%w: empty payload", ErrInvalidPayload)
	}

	switch trimmed[0] {
	case '[':
		var t Table
		if err := t.UnmarshalJSON(trimmed); err != nil {
			return err
		}
		*p = FromTable(t)
		return nil
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
		}
		*p = FromBase64(s)
		return nil
	default:
		return fmt.Errorf("%w: payload must be an array of records or a base64 string", ErrInvalidPayload)
	}
}

func (p Payload) MarshalJSON() ([]byte, error) {
	if p.table != nil {
		return p.table.MarshalJSON()
	}
	return json.Marshal(p.encoded)
}

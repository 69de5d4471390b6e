package core

import (
	"bytes"
	"encoding/json"
)

// Record is one CSV data row keyed by header name. Keys keep the column order
// of the file, which a plain map cannot do, so Record carries its own JSON
// encoding.
type Record struct {
	keys   []string
	values map[string]string
}

// RecordSequence is the rows of one file in file order.
type RecordSequence []Record

// NewRecord builds a Record by position. Missing trailing cells become "",
// cells beyond the header are dropped, and a repeated header name keeps its
// first position while the later cell wins.
func NewRecord(header, cells []string) Record {
	rec := Record{
		keys:   make([]string, 0, len(header)),
		values: make(map[string]string, len(header)),
	}
	for i, key := range header {
		value := ""
		if i < len(cells) {
			value = cells[i]
		}
		rec.Set(key, value)
	}
	return rec
}

// Set assigns value to key, appending key if it is new.
func (r *Record) Set(key, value string) {
	if r.values == nil {
		r.values = make(map[string]string)
	}
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

// Get returns the value stored under key.
func (r Record) Get(key string) (string, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Keys returns the keys in column order.
func (r Record) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Len returns the number of keys.
func (r Record) Len() int {
	return len(r.keys)
}

// Map returns an unordered copy of the record.
func (r Record) Map() map[string]string {
	out := make(map[string]string, len(r.values))
	for k, v := range r.values {
		out[k] = v
	}
	return out
}

// MarshalJSON encodes the record as an object with keys in column order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeJSONString(&buf, key); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		if err := writeJSONString(&buf, r.values[key]); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalJSON encodes an empty sequence as [] rather than null.
func (s RecordSequence) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, rec := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		b, err := rec.MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(b)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// writeJSONString writes s as a JSON string without HTML escaping, so cell
// text like "<b>" reaches clients unchanged.
func writeJSONString(buf *bytes.Buffer, s string) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	// Encode terminates with a newline.
	buf.Truncate(buf.Len() - 1)
	return nil
}

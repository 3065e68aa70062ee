package stream

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	om "github.com/cevaris/ordered_map"
	h "github.com/relloyd/tablesync/helper"
)

// Record is a single row keyed by field name.
// Fields keep the order in which they were first set.
type Record struct {
	data *om.OrderedMap // raw data values, which can represent null database values as nil interfaces.
}

// NewRecord creates a new empty Record.
func NewRecord() Record {
	return Record{data: om.NewOrderedMap()}
}

// NewRecordFromRow pairs each name with the value at the same position.
func NewRecordFromRow(names []string, values []interface{}) (Record, error) {
	if len(names) != len(values) {
		return Record{}, fmt.Errorf("unable to build record: %v field names supplied for %v values", len(names), len(values))
	}
	r := NewRecord()
	for idx, n := range names {
		r.SetData(n, values[idx])
	}
	return r, nil
}

func (sr Record) RecordIsNil() bool {
	return sr.data == nil
}

func (sr Record) SetData(name string, value interface{}) {
	sr.data.Set(name, value)
}

// GetData returns the value of field name and true, or nil and false if the field does not exist.
func (sr Record) GetData(name string) (interface{}, bool) {
	return sr.data.Get(name)
}

// GetDataAsStringUseUtcTime will convert the value of field name to a string.
// Times will be converted to UTC.
func (sr Record) GetDataAsStringUseUtcTime(name string) (string, error) {
	v, ok := sr.data.Get(name)
	if !ok {
		return "", fmt.Errorf("field %q does not exist in the record", name)
	}
	return h.GetStringFromInterfaceUseUtcTime(v)
}

func (sr Record) GetDataLen() int {
	return sr.data.Len()
}

// GetDataKeys returns the field names in order.
func (sr Record) GetDataKeys() []string {
	retval := make([]string, 0, sr.data.Len())
	iter := sr.data.IterFunc()
	for kv, ok := iter(); ok; kv, ok = iter() {
		retval = append(retval, kv.Key.(string))
	}
	return retval
}

// MarshalJSON writes the fields as a JSON object in field order.
// Times are written in UTC using the Snowflake time format and byte slices are hex encoded.
func (sr Record) MarshalJSON() ([]byte, error) {
	buf := bytes.Buffer{}
	buf.WriteString("{")
	iter := sr.data.IterFunc()
	first := true
	for kv, ok := iter(); ok; kv, ok = iter() { // for each field...
		if !first {
			buf.WriteString(",")
		}
		first = false
		k, err := json.Marshal(kv.Key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(jsonValue(kv.Value))
		if err != nil {
			return nil, fmt.Errorf("error marshalling the value of key %q to JSON: %w", kv.Key, err)
		}
		buf.Write(k)
		buf.WriteString(":")
		buf.Write(v)
	}
	buf.WriteString("}")
	return buf.Bytes(), nil
}

// GetJson returns the JSON representation of sr.
func (sr Record) GetJson() (string, error) {
	b, err := sr.MarshalJSON()
	return string(b), err
}

func jsonValue(v interface{}) interface{} {
	switch t := v.(type) {
	case time.Time:
		s, _ := h.GetStringFromInterfaceUseUtcTime(t)
		return s
	case []byte:
		return hex.EncodeToString(t)
	case fmt.Stringer:
		return t.String()
	}
	return v
}

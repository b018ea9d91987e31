// Package export turns reports into tabular records and printable documents
// and writes them out as CSV, XLSX or HTML.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/GregMSThompson/recovery-dashboard/internal/dto"
)

// Field is one labelled cell of a Record.
type Field struct {
	Key   string
	Value any
}

// Record is a table row keyed by column header, in column order.
type Record []Field

func (r Record) Get(key string) (any, bool) {
	for _, f := range r {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

func (r Record) Keys() []string {
	keys := make([]string, len(r))
	for i, f := range r {
		keys[i] = f.Key
	}
	return keys
}

// Strings returns the formatted cells in column order.
func (r Record) Strings() []string {
	out := make([]string, len(r))
	for i, f := range r {
		out[i] = FormatValue(f.Value)
	}
	return out
}

// MarshalJSON writes the record as an object with keys in column order.
// Numbers are written from their exact decimal text.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		val, err := marshalValue(f.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func marshalValue(v any) ([]byte, error) {
	switch val := v.(type) {
	case decimal.Decimal:
		return []byte(val.String()), nil
	case int:
		return []byte(strconv.Itoa(val)), nil
	case int64:
		return []byte(strconv.FormatInt(val, 10)), nil
	case nil:
		return []byte("null"), nil
	case string:
		return json.Marshal(val)
	default:
		return json.Marshal(FormatValue(val))
	}
}

// ToTabularRecords flattens a table into header-labelled records. Short rows
// are padded with empty strings.
func ToTabularRecords(t dto.Table) []Record {
	records := make([]Record, 0, len(t.Rows))
	for _, row := range t.Rows {
		rec := make(Record, len(t.Columns))
		for i, col := range t.Columns {
			var v any = ""
			if i < len(row) {
				v = row[i]
			}
			rec[i] = Field{Key: col, Value: v}
		}
		records = append(records, rec)
	}
	return records
}

// FormatValue renders a cell as text. Integers and decimals keep every digit.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case decimal.Decimal:
		return val.String()
	case civil.Date:
		return val.String()
	case *civil.Date:
		if val == nil {
			return ""
		}
		return val.String()
	case time.Time:
		return val.Format(time.DateOnly)
	case dto.FileStatus:
		return string(val)
	default:
		return fmt.Sprint(val)
	}
}

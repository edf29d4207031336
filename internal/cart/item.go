package cart

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/quickprintz/storefront/internal/models"
)

// LineItem 购物车行项目
type LineItem struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	UnitPrice models.Money `json:"price"`
	Quantity  int          `json:"quantity"`
	Image     string       `json:"image,omitempty"`
	Href      string       `json:"href,omitempty"`
	Metadata  Metadata     `json:"metadata,omitempty"`
}

// LineTotal 行小计
func (i LineItem) LineTotal() models.Money {
	return i.UnitPrice.MulInt(i.Quantity)
}

// MetaEntry 展示用元数据（值为字符串或数字）
type MetaEntry struct {
	Label string
	Value interface{}
}

// Metadata 有序元数据，序列化为保持顺序的 JSON 对象
type Metadata []MetaEntry

// Get 按标签查找
func (m Metadata) Get(label string) (interface{}, bool) {
	for _, entry := range m {
		if entry.Label == label {
			return entry.Value, true
		}
	}
	return nil, false
}

// MarshalJSON 按插入顺序输出对象
func (m Metadata) MarshalJSON() ([]byte, error) {
	if m == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, entry := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(entry.Label)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(entry.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON 按出现顺序解析对象，数字保留为 json.Number
func (m *Metadata) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*m = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("metadata must be an object")
	}
	out := Metadata{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("metadata key must be a string")
		}
		var value interface{}
		if err := dec.Decode(&value); err != nil {
			return err
		}
		switch value.(type) {
		case string, json.Number:
		default:
			return fmt.Errorf("metadata value for %q must be a string or number", key)
		}
		out = append(out, MetaEntry{Label: key, Value: value})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*m = out
	return nil
}

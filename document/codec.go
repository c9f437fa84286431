package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Encode writes d to w as JSON followed by a newline.
// When indent is true the output is indented with two spaces.
func Encode(w io.Writer, d Document, indent bool) error {
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("document: encode: %w", err)
	}
	if indent {
		var buf bytes.Buffer
		if err := json.Indent(&buf, data, "", "  "); err != nil {
			return fmt.Errorf("document: indent: %w", err)
		}
		data = buf.Bytes()
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// Parse decodes JSON into a Document, keeping object key order.
// Integral numbers decode as Int, all other numbers as Number.
// JSON null is rejected because the document model has no null node.
func Parse(data []byte) (Document, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	d, err := parseValue(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("document: trailing data after top-level value")
	}
	return d, nil
}

func parseValue(dec *json.Decoder) (Document, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("document: parse: %w", err)
	}
	switch v := tok.(type) {
	case json.Delim:
		switch v {
		case '{':
			return parseObject(dec)
		case '[':
			return parseArray(dec)
		}
		return nil, fmt.Errorf("document: unexpected delimiter %q", v)
	case bool:
		return Bool(v), nil
	case string:
		return String(v), nil
	case json.Number:
		s := v.String()
		if !strings.ContainsAny(s, ".eE") {
			if i, err := v.Int64(); err == nil {
				return Int(i), nil
			}
		}
		f, err := v.Float64()
		if err != nil {
			return nil, fmt.Errorf("document: number %q: %w", s, err)
		}
		return Number(f), nil
	case nil:
		return nil, errors.New("document: null is not supported")
	default:
		return nil, fmt.Errorf("document: unexpected token %v", tok)
	}
}

func parseObject(dec *json.Decoder) (Document, error) {
	obj := NewObject()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("document: parse: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("document: object key %v is not a string", tok)
		}
		val, err := parseValue(dec)
		if err != nil {
			return nil, err
		}
		obj.Set(key, val)
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("document: parse: %w", err)
	}
	return obj, nil
}

func parseArray(dec *json.Decoder) (Document, error) {
	arr := Array{}
	for dec.More() {
		val, err := parseValue(dec)
		if err != nil {
			return nil, err
		}
		arr = append(arr, val)
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("document: parse: %w", err)
	}
	return arr, nil
}

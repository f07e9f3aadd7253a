package invoice

import (
	"encoding/json"
	"reflect"
	"strconv"
	"strings"

	"github.com/garyjia/vat-invoice-ocr/internal/domain/entity"
)

// textKeys holds the JSON names of every free-text field of the document.
var textKeys = collectTextKeys(reflect.TypeOf(entity.InvoiceDocument{}), map[string]bool{})

func collectTextKeys(t reflect.Type, keys map[string]bool) map[string]bool {
	for t.Kind() == reflect.Ptr || t.Kind() == reflect.Slice {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return keys
	}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			continue
		}
		if f.Type == reflect.TypeOf((*string)(nil)) {
			keys[name] = true
			continue
		}
		collectTextKeys(f.Type, keys)
	}
	return keys
}

// coerceText rewrites free-text values in a decoded reply: numbers and
// booleans become strings ("invoice_number": 123 -> "123") and blank
// strings become null.
func coerceText(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		for k, child := range t {
			if textKeys[k] {
				t[k] = textValue(child)
				continue
			}
			t[k] = coerceText(child)
		}
	case []interface{}:
		for i, child := range t {
			t[i] = coerceText(child)
		}
	}
	return v
}

func textValue(v interface{}) interface{} {
	switch t := v.(type) {
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case string:
		if strings.TrimSpace(t) == "" {
			return nil
		}
		return strings.TrimSpace(t)
	}
	return v
}

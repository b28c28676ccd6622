package syncboard

import (
	"fmt"
	"math"
	"time"

	"github.com/tidwall/gjson"
)

// Payload is the normalized submission built from a date-range form.
type Payload struct {
	StartDate int64          `json:"startDate"`
	EndDate   int64          `json:"endDate"`
	Data      map[string]any `json:"data"`
}

// Form is a source of named field values, such as a parsed HTML form or a
// decoded JSON document.
type Form interface {
	// Value returns the current value of the named field and whether the
	// field is present.
	Value(name string) (any, bool)
}

// FormValues is a [Form] backed by a map.
type FormValues map[string]any

// Value implements [Form].
func (f FormValues) Value(name string) (any, bool) {
	v, ok := f[name]
	return v, ok
}

// JSONForm is a [Form] backed by a JSON document. Field names are gjson
// paths, so nested fields can be addressed as "range.start".
type JSONForm struct {
	raw []byte
}

// NewJSONForm wraps a JSON document as a [Form].
//
// Returns an error if the document is not valid JSON.
func NewJSONForm(raw []byte) (JSONForm, error) {
	if !gjson.ValidBytes(raw) {
		return JSONForm{}, fmt.Errorf("form is not valid JSON")
	}
	return JSONForm{raw: raw}, nil
}

// Value implements [Form]. Numbers are returned as float64, objects as
// map[string]any and arrays as []any.
func (f JSONForm) Value(name string) (any, bool) {
	res := gjson.GetBytes(f.raw, name)
	if !res.Exists() {
		return nil, false
	}
	return res.Value(), true
}

// MissingFieldError reports a field name that is not present on the form.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("field %q not present on form", e.Field)
}

// InvalidDateError reports a date field whose value has no millisecond
// epoch representation.
type InvalidDateError struct {
	Field string
	Value any
}

func (e *InvalidDateError) Error() string {
	return fmt.Sprintf("field %q is not a date: %v (%T)", e.Field, e.Value, e.Value)
}

// BuildPayload extracts a date range and a set of named values from form.
//
// dateFields names the start and end fields, in that order. Their values are
// converted to epoch milliseconds; start <= end is not checked. Each name in
// dataFields is copied into Payload.Data unchanged.
//
// Returns a *[MissingFieldError] if any named field is absent and a
// *[InvalidDateError] if a date field cannot be converted. BuildPayload has
// no side effects.
//
// Example:
//
//	p, err := syncboard.BuildPayload(form, [2]string{"start", "end"}, []string{"metric"})
func BuildPayload(form Form, dateFields [2]string, dataFields []string) (Payload, error) {
	start, err := dateField(form, dateFields[0])
	if err != nil {
		return Payload{}, err
	}
	end, err := dateField(form, dateFields[1])
	if err != nil {
		return Payload{}, err
	}

	data := make(map[string]any, len(dataFields))
	for _, name := range dataFields {
		v, ok := form.Value(name)
		if !ok {
			return Payload{}, &MissingFieldError{Field: name}
		}
		data[name] = v
	}

	return Payload{
		StartDate: start,
		EndDate:   end,
		Data:      data,
	}, nil
}

// dateField resolves a date-valued field to epoch milliseconds.
func dateField(form Form, name string) (int64, error) {
	v, ok := form.Value(name)
	if !ok {
		return 0, &MissingFieldError{Field: name}
	}
	ms, ok := toMillis(v)
	if !ok {
		return 0, &InvalidDateError{Field: name, Value: v}
	}
	return ms, nil
}

// dateLayouts are the string forms accepted for date fields.
var dateLayouts = []string{time.RFC3339Nano, time.DateTime, time.DateOnly}

func toMillis(v any) (int64, bool) {
	switch t := v.(type) {
	case time.Time:
		return t.UnixMilli(), true
	case *time.Time:
		if t == nil {
			return 0, false
		}
		return t.UnixMilli(), true
	case int64:
		return t, true
	case int:
		return int64(t), true
	case float64:
		if t != math.Trunc(t) || math.IsInf(t, 0) {
			return 0, false
		}
		return int64(t), true
	case string:
		for _, layout := range dateLayouts {
			if parsed, err := time.Parse(layout, t); err == nil {
				return parsed.UnixMilli(), true
			}
		}
		return 0, false
	case interface{ UnixMilli() int64 }:
		return t.UnixMilli(), true
	default:
		return 0, false
	}
}

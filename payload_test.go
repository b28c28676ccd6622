package syncboard

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
	"time"
)

func TestBuildPayload(t *testing.T) {
	form := FormValues{
		"start": time.UnixMilli(1000),
		"end":   time.UnixMilli(2000),
		"a":     "x",
		"b":     5,
	}

	p, err := BuildPayload(form, [2]string{"start", "end"}, []string{"a", "b"})
	if err != nil {
		t.Fatalf("BuildPayload() error = %v", err)
	}

	want := Payload{
		StartDate: 1000,
		EndDate:   2000,
		Data:      map[string]any{"a": "x", "b": 5},
	}
	if !reflect.DeepEqual(p, want) {
		t.Errorf("BuildPayload() = %+v, want %+v", p, want)
	}
}

func TestBuildPayload_JSONShape(t *testing.T) {
	form := FormValues{
		"start": time.UnixMilli(1000),
		"end":   time.UnixMilli(2000),
		"a":     "x",
	}

	p, err := BuildPayload(form, [2]string{"start", "end"}, []string{"a"})
	if err != nil {
		t.Fatalf("BuildPayload() error = %v", err)
	}

	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("json.Marshal() error = %v", err)
	}
	want := `{"startDate":1000,"endDate":2000,"data":{"a":"x"}}`
	if string(data) != want {
		t.Errorf("json = %s, want %s", data, want)
	}
}

func TestBuildPayload_FieldOrderIrrelevant(t *testing.T) {
	form := FormValues{
		"start": time.UnixMilli(0),
		"end":   time.UnixMilli(1),
		"a":     1,
		"b":     2,
		"c":     3,
	}

	p1, err := BuildPayload(form, [2]string{"start", "end"}, []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("BuildPayload() error = %v", err)
	}
	p2, err := BuildPayload(form, [2]string{"start", "end"}, []string{"c", "a", "b", "a"})
	if err != nil {
		t.Fatalf("BuildPayload() error = %v", err)
	}
	if !reflect.DeepEqual(p1, p2) {
		t.Errorf("payloads differ by field order: %+v vs %+v", p1, p2)
	}
}

func TestBuildPayload_NoDataFields(t *testing.T) {
	form := FormValues{"start": time.UnixMilli(5), "end": time.UnixMilli(6)}

	p, err := BuildPayload(form, [2]string{"start", "end"}, nil)
	if err != nil {
		t.Fatalf("BuildPayload() error = %v", err)
	}
	if p.Data == nil || len(p.Data) != 0 {
		t.Errorf("Data = %v, want empty non-nil map", p.Data)
	}
}

func TestBuildPayload_StartAfterEndAllowed(t *testing.T) {
	form := FormValues{"start": time.UnixMilli(2000), "end": time.UnixMilli(1000)}

	p, err := BuildPayload(form, [2]string{"start", "end"}, nil)
	if err != nil {
		t.Fatalf("BuildPayload() error = %v", err)
	}
	if p.StartDate != 2000 || p.EndDate != 1000 {
		t.Errorf("dates = (%d, %d), want (2000, 1000)", p.StartDate, p.EndDate)
	}
}

func TestBuildPayload_MissingField(t *testing.T) {
	base := FormValues{
		"start": time.UnixMilli(1000),
		"end":   time.UnixMilli(2000),
		"a":     "x",
	}

	tests := []struct {
		name       string
		dateFields [2]string
		dataFields []string
		missing    string
	}{
		{"missing data field", [2]string{"start", "end"}, []string{"a", "nope"}, "nope"},
		{"missing start", [2]string{"from", "end"}, nil, "from"},
		{"missing end", [2]string{"start", "to"}, nil, "to"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildPayload(base, tt.dateFields, tt.dataFields)
			var mfe *MissingFieldError
			if !errors.As(err, &mfe) {
				t.Fatalf("BuildPayload() error = %v, want *MissingFieldError", err)
			}
			if mfe.Field != tt.missing {
				t.Errorf("MissingFieldError.Field = %q, want %q", mfe.Field, tt.missing)
			}
		})
	}
}

func TestBuildPayload_DateConversions(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	ms := ts.UnixMilli()

	tests := []struct {
		name  string
		value any
		want  int64
	}{
		{"time", ts, ms},
		{"time pointer", &ts, ms},
		{"int64 millis", ms, ms},
		{"int millis", int(ms), ms},
		{"float millis", float64(ms), ms},
		{"rfc3339", "2024-03-01T12:00:00Z", ms},
		{"date time", "2024-03-01 12:00:00", ms},
		{"date only", "2024-03-01", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC).UnixMilli()},
		{"unix milli method", milliStamp(42), 42},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := FormValues{"start": tt.value, "end": tt.value}
			p, err := BuildPayload(form, [2]string{"start", "end"}, nil)
			if err != nil {
				t.Fatalf("BuildPayload() error = %v", err)
			}
			if p.StartDate != tt.want {
				t.Errorf("StartDate = %d, want %d", p.StartDate, tt.want)
			}
		})
	}
}

func TestBuildPayload_InvalidDate(t *testing.T) {
	var nilTime *time.Time

	tests := []struct {
		name  string
		value any
	}{
		{"bool", true},
		{"fraction", 1.5},
		{"garbage string", "yesterday"},
		{"nil time pointer", nilTime},
		{"nil", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := FormValues{"start": tt.value, "end": time.UnixMilli(0)}
			_, err := BuildPayload(form, [2]string{"start", "end"}, nil)
			var ide *InvalidDateError
			if !errors.As(err, &ide) {
				t.Fatalf("BuildPayload() error = %v, want *InvalidDateError", err)
			}
			if ide.Field != "start" {
				t.Errorf("InvalidDateError.Field = %q, want %q", ide.Field, "start")
			}
		})
	}
}

func TestJSONForm(t *testing.T) {
	raw := []byte(`{
		"range": {"start": "1970-01-01T00:00:01Z", "end": 2000},
		"a": "x",
		"b": 5,
		"tags": ["p95", "p99"]
	}`)

	form, err := NewJSONForm(raw)
	if err != nil {
		t.Fatalf("NewJSONForm() error = %v", err)
	}

	p, err := BuildPayload(form, [2]string{"range.start", "range.end"}, []string{"a", "b", "tags"})
	if err != nil {
		t.Fatalf("BuildPayload() error = %v", err)
	}

	if p.StartDate != 1000 || p.EndDate != 2000 {
		t.Errorf("dates = (%d, %d), want (1000, 2000)", p.StartDate, p.EndDate)
	}
	if p.Data["a"] != "x" {
		t.Errorf("Data[a] = %v, want x", p.Data["a"])
	}
	if p.Data["b"] != 5.0 {
		t.Errorf("Data[b] = %v (%T), want 5", p.Data["b"], p.Data["b"])
	}
	if tags, ok := p.Data["tags"].([]any); !ok || len(tags) != 2 {
		t.Errorf("Data[tags] = %v, want 2 elements", p.Data["tags"])
	}

	_, err = BuildPayload(form, [2]string{"range.start", "range.end"}, []string{"missing.path"})
	var mfe *MissingFieldError
	if !errors.As(err, &mfe) {
		t.Errorf("BuildPayload() error = %v, want *MissingFieldError", err)
	}
}

func TestNewJSONForm_Invalid(t *testing.T) {
	if _, err := NewJSONForm([]byte(`{"a":`)); err == nil {
		t.Error("NewJSONForm() expected error for invalid JSON, got nil")
	}
}

type milliStamp int64

func (m milliStamp) UnixMilli() int64 { return int64(m) }

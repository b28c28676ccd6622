package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// executePayloadCmd runs a fresh payload command and returns its output.
func executePayloadCmd(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	cmd := newPayloadCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func TestRunPayload_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "form.json")
	form := `{"range":{"from":"2024-03-01","to":1709337600000},"metric":"cpu","hosts":["a","b"]}`
	if err := os.WriteFile(path, []byte(form), 0644); err != nil {
		t.Fatalf("failed to write form: %v", err)
	}

	output, err := executePayloadCmd(t, "",
		"-f", path, "--start", "range.from", "--end", "range.to",
		"--field", "metric", "--field", "hosts")
	if err != nil {
		t.Fatalf("payload command error = %v", err)
	}

	var got struct {
		StartDate int64          `json:"startDate"`
		EndDate   int64          `json:"endDate"`
		Data      map[string]any `json:"data"`
	}
	if err := json.Unmarshal([]byte(output), &got); err != nil {
		t.Fatalf("output is not JSON: %v\nGot: %s", err, output)
	}

	if got.StartDate != 1709251200000 {
		t.Errorf("startDate = %d, want 1709251200000", got.StartDate)
	}
	if got.EndDate != 1709337600000 {
		t.Errorf("endDate = %d, want 1709337600000", got.EndDate)
	}
	if got.Data["metric"] != "cpu" {
		t.Errorf("data.metric = %v, want cpu", got.Data["metric"])
	}
	if hosts, ok := got.Data["hosts"].([]any); !ok || len(hosts) != 2 {
		t.Errorf("data.hosts = %v, want [a b]", got.Data["hosts"])
	}
}

func TestRunPayload_FromStdin(t *testing.T) {
	output, err := executePayloadCmd(t, `{"start":"2024-03-01T00:00:00Z","end":"2024-03-02T00:00:00Z"}`, "-f", "-")
	if err != nil {
		t.Fatalf("payload command error = %v", err)
	}
	if !strings.Contains(output, `"startDate": 1709251200000`) {
		t.Errorf("output missing startDate\nGot: %s", output)
	}
	if !strings.Contains(output, `"data": {}`) {
		t.Errorf("output missing empty data\nGot: %s", output)
	}
}

func TestRunPayload_Errors(t *testing.T) {
	tests := []struct {
		name        string
		stdin       string
		args        []string
		wantErrLike string
	}{
		{
			name:        "invalid JSON",
			stdin:       `{"start":`,
			args:        []string{"-f", "-"},
			wantErrLike: "not valid JSON",
		},
		{
			name:        "missing date field",
			stdin:       `{"start":"2024-03-01"}`,
			args:        []string{"-f", "-"},
			wantErrLike: `field "end" not present`,
		},
		{
			name:        "missing data field",
			stdin:       `{"start":"2024-03-01","end":"2024-03-02"}`,
			args:        []string{"-f", "-", "--field", "metric"},
			wantErrLike: `field "metric" not present`,
		},
		{
			name:        "not a date",
			stdin:       `{"start":"soon","end":"2024-03-02"}`,
			args:        []string{"-f", "-"},
			wantErrLike: `field "start" is not a date`,
		},
		{
			name:        "missing file",
			args:        []string{"-f", "/nonexistent/form.json"},
			wantErrLike: "failed to read form",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := executePayloadCmd(t, tt.stdin, tt.args...)
			if err == nil {
				t.Fatal("payload command expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErrLike) {
				t.Errorf("error = %q, want to contain %q", err, tt.wantErrLike)
			}
		})
	}
}

package integrations

import (
	"encoding/json"
	"testing"
)

func TestProductList(t *testing.T) {
	tests := []struct {
		name        string
		payload     any
		wantLen     int
		wantSkipped int
		wantErr     bool
	}{
		{
			name:    "array",
			payload: []any{map[string]any{"article": "A1"}, map[string]any{"article": "A2"}},
			wantLen: 2,
		},
		{
			name:    "object with products",
			payload: map[string]any{"products": []any{map[string]any{"article": "A1"}}},
			wantLen: 1,
		},
		{
			name:        "non-object entries skipped",
			payload:     []any{"junk", map[string]any{"article": "A1"}, json.Number("3")},
			wantLen:     1,
			wantSkipped: 2,
		},
		{
			name:    "object without products",
			payload: map[string]any{"items": []any{}},
			wantErr: true,
		},
		{
			name:    "scalar",
			payload: "nope",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, skipped, err := ProductList(tt.payload)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if len(got) != tt.wantLen {
				t.Errorf("expected %d records, got %d", tt.wantLen, len(got))
			}
			if skipped != tt.wantSkipped {
				t.Errorf("expected %d skipped, got %d", tt.wantSkipped, skipped)
			}
		})
	}
}

func TestText(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, ""},
		{"string trimmed", "  A1 ", "A1"},
		{"json number", json.Number("12.50"), "12.50"},
		{"float", 10.0, "10"},
		{"int", 7, "7"},
		{"bool", false, "false"},
		{"object", map[string]any{"a": 1}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Text(tt.in); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestRecordField(t *testing.T) {
	rec := Record{"article": "", "id": json.Number("42")}
	v, ok := rec.Field("article", "id")
	if !ok || v != "42" {
		t.Errorf("expected fallback to id=42, got %q %v", v, ok)
	}
	if _, ok := rec.Field("missing"); ok {
		t.Error("expected no value for missing field")
	}
}

func TestBuildUnknownKind(t *testing.T) {
	_, err := Build(Deps{}, json.RawMessage(`{"kind":"ftp","brand":"X","url":"ftp://x"}`))
	if err == nil {
		t.Fatal("expected error for unknown kind")
	}
}

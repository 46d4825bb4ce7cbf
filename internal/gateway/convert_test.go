package gateway

import (
	"testing"
)

func TestToPgText(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantValid bool
		want      string
	}{
		{"plain string", "hello", true, "hello"},
		{"trims whitespace", "  hello  ", true, "hello"},
		{"empty", "", false, ""},
		{"whitespace only", "   ", false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToPgText(tt.input)
			if got.Valid != tt.wantValid {
				t.Fatalf("ToPgText(%q).Valid = %v, want %v", tt.input, got.Valid, tt.wantValid)
			}
			if got.Valid && got.String != tt.want {
				t.Errorf("ToPgText(%q) = %q, want %q", tt.input, got.String, tt.want)
			}
		})
	}
}

func TestToPgNumeric(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantValid bool
	}{
		{"integer", "123", true},
		{"decimal", "42.195", true},
		{"negative", "-5", true},
		{"thousands separators", "1,234.5", true},
		{"accounting negative", "(250)", true},
		{"empty", "", false},
		{"words", "ten", false},
		{"double dot", "1.2.3", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToPgNumeric(tt.input)
			if got.Valid != tt.wantValid {
				t.Errorf("ToPgNumeric(%q).Valid = %v, want %v", tt.input, got.Valid, tt.wantValid)
			}
		})
	}
}

func TestToPgBool(t *testing.T) {
	truthy := []string{"true", "t", "yes", "Y", "1", "on"}
	for _, s := range truthy {
		got := ToPgBool(s)
		if !got.Valid || !got.Bool {
			t.Errorf("ToPgBool(%q) = %+v, want valid true", s, got)
		}
	}

	falsy := []string{"false", "f", "no", "N", "0", "off"}
	for _, s := range falsy {
		got := ToPgBool(s)
		if !got.Valid || got.Bool {
			t.Errorf("ToPgBool(%q) = %+v, want valid false", s, got)
		}
	}

	for _, s := range []string{"", "maybe", "2"} {
		if got := ToPgBool(s); got.Valid {
			t.Errorf("ToPgBool(%q) = %+v, want invalid", s, got)
		}
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string // "2006-01-02", empty for parse failure
	}{
		{"iso", "2026-06-14", "2026-06-14"},
		{"us slashes", "6/14/2026", "2026-06-14"},
		{"day first written month", "14 Jun 2026", "2026-06-14"},
		{"written month", "Jun 14, 2026", "2026-06-14"},
		{"compact", "20260614", "2026-06-14"},
		{"two digit recent", "6/14/26", "2026-06-14"},
		{"two digit past century", "6/14/75", "1975-06-14"},
		{"garbage", "next tuesday", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseDate(tt.input)
			if tt.want == "" {
				if ok {
					t.Fatalf("ParseDate(%q) parsed to %v, want failure", tt.input, got)
				}
				return
			}
			if !ok {
				t.Fatalf("ParseDate(%q) failed, want %s", tt.input, tt.want)
			}
			if formatted := got.Format("2006-01-02"); formatted != tt.want {
				t.Errorf("ParseDate(%q) = %s, want %s", tt.input, formatted, tt.want)
			}
		})
	}
}

func TestEnumValid(t *testing.T) {
	allowed := []string{"finished", "dnf", "dns", "dsq"}
	if !enumValid("DNF", allowed) {
		t.Error("enumValid should match case-insensitively")
	}
	if enumValid("retired", allowed) {
		t.Error("enumValid accepted an unknown value")
	}
}

package helper

import (
	"testing"
	"time"
)

func TestCsvToStringSliceTrimSpaces(t *testing.T) {
	got := CsvToStringSliceTrimSpaces(" dbo.patients, ,staff ")
	if len(got) != 2 {
		t.Fatalf("expected 2 tokens; got %v", len(got))
	}
	if got[0] != "dbo.patients" || got[1] != "staff" {
		t.Fatalf("expected trimmed tokens; got %v", got)
	}
	if len(CsvToStringSliceTrimSpaces("")) != 0 {
		t.Fatal("expected empty slice for empty input")
	}
}

func TestGetStringFromInterface(t *testing.T) {
	loc := time.FixedZone("UTC+1", 3600)
	ts := time.Date(2024, 3, 1, 10, 30, 0, 500000000, loc)
	cases := []struct {
		in       interface{}
		useUTC   bool
		expected string
	}{
		{int64(42), false, "42"},
		{"abc", false, "abc"},
		{float64(1.25), false, "1.25"},
		{float64(100000000), false, "100000000"},
		{[]byte("xyz"), false, "xyz"},
		{true, false, "true"},
		{nil, false, ""},
		{ts, true, "2024-03-01 09:30:00.5 +00:00"},
		{ts, false, "2024-03-01 10:30:00.5 +01:00"},
	}
	for _, c := range cases {
		got, err := GetStringFromInterface(c.in, c.useUTC)
		if err != nil {
			t.Fatalf("unexpected error for %v: %v", c.in, err)
		}
		if got != c.expected {
			t.Fatalf("expected %q; got %q", c.expected, got)
		}
	}
	if _, err := GetStringFromInterface(struct{}{}, false); err == nil {
		t.Fatal("expected error for unhandled type")
	}
}

func TestGetTrueFalseStringAsBool(t *testing.T) {
	for _, s := range []string{"true", " TRUE ", "1", "yes"} {
		if !GetTrueFalseStringAsBool(s) {
			t.Fatalf("expected true for %q", s)
		}
	}
	for _, s := range []string{"", "false", "0", "untrue"} {
		if GetTrueFalseStringAsBool(s) {
			t.Fatalf("expected false for %q", s)
		}
	}
}

func TestToUpperIfNotQuoted(t *testing.T) {
	in := []string{"abc", `"Mixed"`}
	got := ToUpperIfNotQuoted(in)
	if got[0] != "ABC" || got[1] != `"Mixed"` {
		t.Fatalf("unexpected output %v", got)
	}
	if in[0] != "abc" {
		t.Fatal("expected input slice to be left unchanged")
	}
}

func TestSplit(t *testing.T) {
	l, r := Split("dbo.patients", ".")
	if l != "dbo" || r != "patients" {
		t.Fatalf("expected dbo, patients; got %v, %v", l, r)
	}
	l, r = Split("patients", ".")
	if l != "patients" || r != "" {
		t.Fatalf("expected patients and empty; got %v, %v", l, r)
	}
}

func TestInterfaceToString(t *testing.T) {
	got := InterfaceToString([]interface{}{float64(3), float64(1.5), []byte("x"), nil, int64(7)})
	expected := []string{"3", "1.5", "x", "", "7"}
	for i := range expected {
		if got[i] != expected[i] {
			t.Fatalf("expected %q at %v; got %q", expected[i], i, got[i])
		}
	}
}

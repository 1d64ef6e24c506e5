package dnsutil

import (
	"testing"
)

type normalizeTestCase struct {
	in  string
	out string
}

var normalizeTestCases = []normalizeTestCase{
	{"example.com", "example.com"},
	{"Example.COM.", "example.com"},
	{"  spaced.example.org  ", "spaced.example.org"},
	{"trailing.example.net.", "trailing.example.net"},
	{".", ""},
	{"", ""},
	{"MIXED.Case.Example.Com", "mixed.case.example.com"},
}

func TestNormalize(t *testing.T) {
	for tx, tc := range normalizeTestCases {
		got := Normalize(tc.in)
		if got != tc.out {
			t.Error(tx, "Normalize", tc.in, "returned", got, "expected", tc.out)
		}
	}
}

func TestEqual(t *testing.T) {
	if !Equal("a.Example.COM.", "A.example.com") {
		t.Error("Equal should ignore case and the trailing root dot")
	}
	if Equal("a.example.com", "b.example.com") {
		t.Error("Equal matched two different names")
	}
}

func TestSuffixes(t *testing.T) {
	parts := Suffixes("a.b.example.com")
	expect := []string{"com", "example.com", "b.example.com", "a.b.example.com"}
	if len(parts) != len(expect) {
		t.Fatal("Wrong suffix count. Expected", expect, "got", parts)
	}
	for ix := range expect {
		if parts[ix] != expect[ix] {
			t.Error("Suffix", ix, "expected", expect[ix], "got", parts[ix])
		}
	}

	parts = Suffixes("Com.")
	if len(parts) != 1 || parts[0] != "com" {
		t.Error("Single label suffix list should be the normalized label itself, not", parts)
	}

	if parts := Suffixes(""); parts != nil {
		t.Error("Empty name should yield a nil suffix list, not", parts)
	}
}

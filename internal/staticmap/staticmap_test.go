package staticmap

import (
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	m, err := New("testdata/dns.cfg")
	if m == nil || err != nil {
		t.Fatal("New() failed when it should have succeeded", err)
	}
	if m.Len() != 3 {
		t.Error("Expected 3 entries, not", m.Len())
	}
	if m.Path() != "testdata/dns.cfg" {
		t.Error("Path() returned", m.Path())
	}

	_, err = New("")
	if err == nil {
		t.Error("New() did not fail with an empty path")
	}

	_, err = New("testdata/does-not-exist")
	if err == nil {
		t.Error("New() did not fail with a non-existent path")
	}
}

func TestNewMalformed(t *testing.T) {
	_, err := New("testdata/missing-equals.cfg")
	if err == nil {
		t.Fatal("New() did not fail on a line with no '='")
	}
	if !strings.Contains(err.Error(), "domain=address") {
		t.Error("Expected a domain=address complaint, not", err)
	}

	_, err = New("testdata/bad-address.cfg")
	if err == nil {
		t.Fatal("New() did not fail on a bogus address")
	}
	if !strings.Contains(err.Error(), "IPv4") {
		t.Error("Expected an IPv4 complaint, not", err)
	}
}

type lookupTestCase struct {
	name string
	ok   bool
	ip   string
}

var lookupTestCases = []lookupTestCase{
	{"foo.test", true, "10.0.0.1"},
	{"FOO.Test.", true, "10.0.0.1"}, // Normalization applies on lookup
	{"  printer.local  ", true, "192.168.1.9"},
	{"bar.test", true, "10.0.0.2"},
	{"sub.foo.test", false, ""}, // Exact match only - no suffix matching
	{"unknown.test", false, ""},
}

func TestLookup(t *testing.T) {
	m, err := New("testdata/dns.cfg")
	if err != nil {
		t.Fatal("Unexpected error on setup", err)
	}
	for tx, tc := range lookupTestCases {
		ip, ok := m.Lookup(tc.name)
		if ok != tc.ok {
			t.Error(tx, tc.name, "lookup ok =", ok, "expected", tc.ok)
			continue
		}
		if ok && ip.String() != tc.ip {
			t.Error(tx, tc.name, "returned", ip.String(), "expected", tc.ip)
		}
	}
}

func TestNewEmpty(t *testing.T) {
	m := NewEmpty()
	if m.Len() != 0 {
		t.Error("NewEmpty() map should have no entries")
	}
	if _, ok := m.Lookup("anything.test"); ok {
		t.Error("NewEmpty() map should never match")
	}
}

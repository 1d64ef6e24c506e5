// Package dnsutil contains helper functions for massaging domain names and dns.Msg contents that
// are shared between the resolution engine, the transport client and the front-end commands.
package dnsutil

import (
	"strings"
)

// Normalize returns the canonical internal form of a domain name: surrounding whitespace trimmed,
// a single trailing root dot removed and all ASCII letters lowered. All name comparisons in this
// package and its users are made on normalized names so that "WWW.Example.COM." and
// "www.example.com" refer to the same entry.
func Normalize(name string) string {
	name = strings.TrimSpace(name)
	name = strings.TrimSuffix(name, ".")

	return strings.ToLower(name)
}

// Equal compares two domain names for equality after normalization.
func Equal(a, b string) bool {
	return Normalize(a) == Normalize(b)
}

// Suffixes decomposes a normalized domain name into the ordered list of parent zones from
// shortest to longest, ending with the name itself. The empty root label is not included.
//
//	Suffixes("a.b.example.com") == ["com", "example.com", "b.example.com", "a.b.example.com"]
//
// This is the order in which the resolution engine walks delegations down from the root.
func Suffixes(name string) []string {
	name = Normalize(name)
	if len(name) == 0 {
		return nil
	}

	labels := strings.Split(name, ".")
	parts := make([]string, 0, len(labels))
	for i := len(labels) - 1; i >= 0; i-- {
		parts = append(parts, strings.Join(labels[i:], "."))
	}

	return parts
}

// Package flagutil provides additional support around the flag package. At the moment that
// consists solely of the StringList struct which conforms to the flag.Value interface for flags
// that may occur multiple times on the command line, such as:
//
//	$command -l 127.0.0.1 -l 192.168.1.1
//
// Usage is as documented in the flag package:
//
//	var listen flagutil.StringList
//	flagSet.Var(&listen, "l", "Listen address (repeatable)")
//	addrs := listen.Args()
package flagutil

import (
	"strings"
)

// StringList is the type provided to flag.Var()
type StringList struct {
	values []string
}

// Set appends a value - it is called by the flag package for each occurrence of the corresponding
// option on the command line. Part of the flag.Value interface.
func (t *StringList) Set(s string) error {
	t.values = append(t.values, s)

	return nil
}

// String returns a space separated string of all the values provided by Set. Part of the
// flag.Value interface.
func (t *StringList) String() string {
	return strings.Join(t.values, " ")
}

// Args returns a copy of the accumulated values. Callers can safely modify the returned slice
// without affecting the internal data.
func (t *StringList) Args() []string {
	return append([]string{}, t.values...)
}

// NArg returns the number of values accumulated by Set
func (t *StringList) NArg() int {
	return len(t.values)
}

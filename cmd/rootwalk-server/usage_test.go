package main

import (
	"bytes"
	"strings"
	"testing"
)

// The usage output should render the template and list every flag we register.
func TestUsageContents(t *testing.T) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}

	mainInit(out, errOut)
	rc := mainExecute([]string{consts.ServerProgramName, "-h"})
	if rc != 0 {
		t.Fatal("-h should exit(0), not", rc)
	}

	s := out.String()
	for _, want := range []string{
		"NAME", "SYNOPSIS", "DESCRIPTION",
		"-max-sends", "-log-delegation", "-gops", "-chroot",
		"Version:", consts.Version,
	} {
		if !strings.Contains(s, want) {
			t.Error("Usage output missing", want)
		}
	}
}

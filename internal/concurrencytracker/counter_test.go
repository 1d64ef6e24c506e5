package concurrencytracker

import (
	"testing"
)

func TestCounter(t *testing.T) {
	var cct Counter

	if !cct.Add() {
		t.Error("First Add() should report a new peak")
	}
	if !cct.Add() {
		t.Error("Second Add() should report a new peak")
	}
	cct.Done()
	if cct.Add() {
		t.Error("Re-reaching a previous peak should not report an increase")
	}

	if p := cct.Peak(false); p != 2 {
		t.Error("Expected a peak of 2, not", p)
	}

	cct.Done()
	cct.Done()

	// Reset takes effect after the return value is captured
	if p := cct.Peak(true); p != 2 {
		t.Error("Peak(true) should still return the old peak of 2, not", p)
	}
	if p := cct.Peak(false); p != 0 {
		t.Error("Peak should have reset to the current count of 0, not", p)
	}
}

func TestDonePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Done() without Add() should panic")
		}
	}()
	var cct Counter
	cct.Done()
}

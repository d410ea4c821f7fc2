//go:build linux

package network

import (
	"testing"

	"grimm.is/v6watch/internal/testutil"
)

func TestInspector_Loopback_Integration(t *testing.T) {
	testutil.RequireVM(t)

	insp := NewInspector(&RealNetlinker{})

	state, err := insp.LinkState("lo")
	if err != nil {
		t.Fatalf("LinkState(lo) failed: %v", err)
	}
	if state != LinkUp {
		t.Fatalf("lo state = %s, want up", state)
	}

	globals, err := insp.ListGlobalAddresses("lo")
	if err != nil {
		t.Fatalf("ListGlobalAddresses(lo) failed: %v", err)
	}
	for _, a := range globals {
		if Classify(a) == ClassNonGlobal {
			t.Errorf("non-global address %s returned", a)
		}
	}

	state, err = insp.LinkState("v6watch-none0")
	if err != nil {
		t.Fatalf("LinkState on missing link returned error: %v", err)
	}
	if state != LinkAbsent {
		t.Errorf("missing link state = %s, want absent", state)
	}
}

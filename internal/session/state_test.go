package session

import "testing"

func TestStateString(t *testing.T) {
	cases := []struct {
		state State
		want  string
	}{
		{StateAccumulating, "ACCUMULATING"},
		{StateFinalizing, "FINALIZING"},
		{StateDone, "DONE"},
		{State(42), "UNKNOWN(42)"},
	}
	for _, tc := range cases {
		if got := tc.state.String(); got != tc.want {
			t.Fatalf("expected %q, got %q", tc.want, got)
		}
	}
}

func TestStateTerminal(t *testing.T) {
	if StateAccumulating.IsTerminal() || StateFinalizing.IsTerminal() {
		t.Fatal("non-terminal states reported terminal")
	}
	if !StateDone.IsTerminal() {
		t.Fatal("DONE must be terminal")
	}
}

package clock

import "testing"

func TestPropose(t *testing.T) {
	got, err := Propose(4)
	if err != nil {
		t.Fatalf("Propose: %v", err)
	}
	if got != 5 {
		t.Fatalf("got %d, want 5", got)
	}
}

func TestProposeOverflow(t *testing.T) {
	if _, err := Propose(Max); err != ErrOverflow {
		t.Fatalf("got %v, want ErrOverflow", err)
	}
}

func TestAcceptCommand(t *testing.T) {
	cases := []struct {
		cmd, local Lclock
		want       bool
	}{
		{5, 5, true},
		{6, 5, true},
		{4, 5, false},
	}
	for _, c := range cases {
		if got := AcceptCommand(c.cmd, c.local); got != c.want {
			t.Fatalf("AcceptCommand(%d, %d) = %v, want %v", c.cmd, c.local, got, c.want)
		}
	}
}

func TestCommit(t *testing.T) {
	if got := Commit(3, 5); got != 6 {
		t.Fatalf("Commit(3, 5) = %d, want 6", got)
	}
	if got := Commit(10, 5); got != 10 {
		t.Fatalf("Commit(10, 5) = %d, want 10", got)
	}
}

func TestMergeIngest(t *testing.T) {
	if got := MergeIngest(5, 3); got != 5 {
		t.Fatalf("MergeIngest(5, 3) = %d, want 5", got)
	}
	if got := MergeIngest(5, 9); got != 9 {
		t.Fatalf("MergeIngest(5, 9) = %d, want 9", got)
	}
}

package authz

import "testing"

func TestIsOwner(t *testing.T) {
	p := New(42, nil)
	if !p.IsOwner(42) {
		t.Error("expected owner to match")
	}
	if p.IsOwner(7) {
		t.Error("unexpected owner match")
	}
}

func TestUnconfiguredOwnerNeverMatches(t *testing.T) {
	p := New(0, nil)
	if p.IsOwner(0) {
		t.Error("ownerID 0 must never match, even for userID 0")
	}
	if p.IsOwnerOrSudo(0) {
		t.Error("userID 0 must not be privileged with no config")
	}
}

func TestIsOwnerOrSudo(t *testing.T) {
	p := New(42, []int64{100, 200})

	cases := []struct {
		userID int64
		want   bool
	}{
		{42, true},
		{100, true},
		{200, true},
		{300, false},
		{0, false},
	}
	for _, c := range cases {
		if got := p.IsOwnerOrSudo(c.userID); got != c.want {
			t.Errorf("IsOwnerOrSudo(%d) = %v, want %v", c.userID, got, c.want)
		}
	}
}

func TestZeroSudoIDIgnored(t *testing.T) {
	p := New(1, []int64{0})
	if p.IsSudo(0) {
		t.Error("sudo id 0 must be ignored")
	}
}

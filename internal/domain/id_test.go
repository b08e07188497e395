package domain

import "testing"

func TestBetweenHalfOpen(t *testing.T) {
	cases := []struct {
		name    string
		x, a, b ID
		want    bool
	}{
		{"linear inside", 5, 1, 10, true},
		{"linear at upper bound", 10, 1, 10, true},
		{"linear at lower bound excluded", 1, 1, 10, false},
		{"linear outside", 15, 1, 10, false},
		{"wrap inside tail", 250, 200, 10, true},
		{"wrap inside head", 5, 200, 10, true},
		{"wrap outside", 100, 200, 10, false},
		{"degenerate whole ring", 200, 200, 200, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.x.Between(c.a, c.b); got != c.want {
				t.Errorf("%d.Between(%d,%d) = %v, want %v", c.x, c.a, c.b, got, c.want)
			}
		})
	}
}

func TestBetweenOpen(t *testing.T) {
	cases := []struct {
		name    string
		x, a, b ID
		want    bool
	}{
		{"linear inside", 5, 1, 10, true},
		{"linear at bounds excluded", 1, 1, 10, false},
		{"linear at upper excluded", 10, 1, 10, false},
		{"wrap inside", 250, 200, 10, true},
		{"degenerate excludes a", 200, 200, 200, false},
		{"degenerate includes rest", 201, 200, 200, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.x.BetweenOpen(c.a, c.b); got != c.want {
				t.Errorf("%d.BetweenOpen(%d,%d) = %v, want %v", c.x, c.a, c.b, got, c.want)
			}
		})
	}
}

func TestHashStringDeterministic(t *testing.T) {
	a := HashString("127.0.0.1:5000")
	b := HashString("127.0.0.1:5000")
	if a != b {
		t.Fatalf("hash not deterministic: %v != %v", a, b)
	}
	c := HashString("127.0.0.1:5001")
	if a == c {
		t.Fatalf("distinct inputs hashed to the same id")
	}
}

func TestFingerStartWraps(t *testing.T) {
	var self ID = ^ID(0) // max uint64
	got := FingerStart(self, 0)
	if got != 0 {
		t.Fatalf("expected wraparound to 0, got %d", got)
	}
}

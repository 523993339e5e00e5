package history

import "testing"

func TestRememberAndRecent(t *testing.T) {
	c, err := New(8, 3)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	c.Remember(1, "q1", "q2")
	c.Remember(1, "q2", "q3")

	got := c.Recent(1)
	if len(got) != 3 {
		t.Fatalf("expected 3 unique ids, got %v", got)
	}

	c.Remember(1, "q4")
	got = c.Recent(1)
	if len(got) != 3 || got[0] != "q2" {
		t.Fatalf("expected oldest id evicted, got %v", got)
	}
}

func TestAnonymousUsersAreNotTracked(t *testing.T) {
	c, _ := New(8, 3)
	c.Remember(0, "q1")
	if got := c.Recent(0); got != nil {
		t.Fatalf("expected no history for anonymous users, got %v", got)
	}
}

func TestUserCapEvictsLeastRecent(t *testing.T) {
	c, _ := New(2, 5)
	c.Remember(1, "a")
	c.Remember(2, "b")
	c.Remember(3, "c")

	if got := c.Recent(1); got != nil {
		t.Fatalf("expected user 1 evicted, got %v", got)
	}
	if got := c.Recent(3); len(got) != 1 {
		t.Fatalf("expected user 3 retained, got %v", got)
	}
}

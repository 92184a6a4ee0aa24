package courts

import "testing"

func TestByCode(t *testing.T) {
	c, ok := ByCode("KSJIMBM")
	if !ok {
		t.Fatal("expected KSJIMBM to resolve")
	}
	if c.Short != "KS Brno" {
		t.Fatalf("unexpected short name %q", c.Short)
	}
	if _, ok := ByCode("NOPE"); ok {
		t.Fatal("unknown code should not resolve")
	}
}

func TestAllReturnsCopy(t *testing.T) {
	list := All()
	if len(list) == 0 {
		t.Fatal("court list is empty")
	}
	list[0].Short = "mutated"
	if fresh := All(); fresh[0].Short == "mutated" {
		t.Fatal("All must not expose the internal slice")
	}
}

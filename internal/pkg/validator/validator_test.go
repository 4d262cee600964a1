package validator

import "testing"

func TestCheckKeepsFirstError(t *testing.T) {
	v := New()
	v.Check(false, "title", "first")
	v.Check(false, "title", "second")
	v.Check(true, "color", "never")

	if v.Valid() {
		t.Fatalf("valid=true want=false")
	}
	if v.Errors["title"] != "first" {
		t.Fatalf("title=%q want=first", v.Errors["title"])
	}
	if _, ok := v.Errors["color"]; ok {
		t.Fatalf("unexpected color error")
	}
}

func TestHexRX(t *testing.T) {
	for _, s := range []string{"#fff", "#A1B2C3", "a1b2c3"} {
		if !Matches(s, HexRX) {
			t.Fatalf("%q rejected", s)
		}
	}
	for _, s := range []string{"", "#ffff", "#gggggg", "red"} {
		if Matches(s, HexRX) {
			t.Fatalf("%q accepted", s)
		}
	}
}

func TestDisjoint(t *testing.T) {
	if !Disjoint([]int64{1, 2}, []int64{3}) {
		t.Fatalf("disjoint sets reported as overlapping")
	}
	if Disjoint([]int64{1, 2}, []int64{2}) {
		t.Fatalf("overlapping sets reported as disjoint")
	}
}

package structs

import "testing"

func TestParseGender(t *testing.T) {
	if g, ok := ParseGender("Male"); !ok || g != GenderMale {
		t.Errorf("expected male, got %q (ok=%v)", g, ok)
	}
	if _, ok := ParseGender("other"); ok {
		t.Error("expected parse failure for unknown gender")
	}
}

func TestParseBloodType(t *testing.T) {
	cases := []string{"onegative", "OPositive", "ABNEGATIVE"}
	for _, c := range cases {
		if _, ok := ParseBloodType(c); !ok {
			t.Errorf("expected %q to parse", c)
		}
	}
	if _, ok := ParseBloodType("o+"); ok {
		t.Error("expected parse failure for unknown blood type")
	}
}

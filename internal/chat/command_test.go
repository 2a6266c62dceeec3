package chat

import "testing"

func TestSplitTarget(t *testing.T) {
	cases := []struct {
		rest string
		id   int64
		text string
	}{
		{"3 hi", 3, "hi"},
		{"3 hi there", 3, "hi there"},
		{"42", 42, ""},
		{"-5 yo", -5, "yo"},
		{"bob hi", 0, "hi"},
		{"", 0, ""},
		{"12abc rest", 12, "rest"},
		{"  3 x", 3, " 3 x"},
	}
	for _, c := range cases {
		id, text := splitTarget(c.rest)
		if id != c.id || text != c.text {
			t.Errorf("splitTarget(%q) = (%d, %q), want (%d, %q)", c.rest, id, text, c.id, c.text)
		}
	}
}

func TestLeadingInt(t *testing.T) {
	cases := map[string]int64{
		"":      0,
		"7":     7,
		"  7":   7,
		"+7":    7,
		"-7":    -7,
		"7x":    7,
		"x7":    0,
		"00012": 12,
	}
	for in, want := range cases {
		if got := leadingInt(in); got != want {
			t.Errorf("leadingInt(%q) = %d, want %d", in, got, want)
		}
	}
}

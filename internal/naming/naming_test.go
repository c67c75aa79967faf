package naming

import (
	"regexp"
	"testing"
)

func TestSlugify(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Widget", "widget"},
		{"My Cool Solution", "my-cool-solution"},
		{"  Spaced   Out  ", "spaced-out"},
		{"C++ Toolkit (v2)", "c-toolkit-v2"},
		{"already-a-slug", "already-a-slug"},
		{"Under_score_name", "under-score-name"},
		{"---Edge---", "edge"},
		{"Data & Analytics!!", "data-analytics"},
	}

	for _, tc := range cases {
		if got := Slugify(tc.in); got != tc.want {
			t.Errorf("Slugify(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSlugifyShape(t *testing.T) {
	valid := regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)
	inputs := []string{
		"Widget", "A B C", "  weird -- input __ here  ", "Solution #42", "X",
	}

	for _, in := range inputs {
		got := Slugify(in)
		if got == "" {
			t.Errorf("Slugify(%q) produced empty slug", in)
			continue
		}
		if !valid.MatchString(got) {
			t.Errorf("Slugify(%q) = %q: leading/trailing/doubled hyphen or bad char", in, got)
		}
	}
}

func TestCanonicalTag(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Machine Learning", "machine-learning"},
		{"C#", "c"},
		{"  DevOps  ", "devops"},
		{"node.js", "node-js"},
		{"UPPER", "upper"},
		{"a---b", "a-b"},
		{"-lead-trail-", "lead-trail"},
	}

	for _, tc := range cases {
		if got := CanonicalTag(tc.in); got != tc.want {
			t.Errorf("CanonicalTag(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCanonicalTagIdempotent(t *testing.T) {
	inputs := []string{
		"Machine Learning", "node.js", "a  b  c", "C++/CLI", "already-canonical",
	}

	for _, in := range inputs {
		once := CanonicalTag(in)
		twice := CanonicalTag(once)
		if once != twice {
			t.Errorf("CanonicalTag not idempotent for %q: first %q, second %q", in, once, twice)
		}
	}
}

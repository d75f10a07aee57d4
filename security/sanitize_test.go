package security

import "testing"

func TestSanitizeEscapesMarkup(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{`<script>alert("x")</script>`, "&lt;script&gt;alert(&quot;x&quot;)&lt;/script&gt;"},
		{"it's fine", "it&#x27;s fine"},
		{"  padded  ", "padded"},
		{"plain text", "plain text"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := Sanitize(tc.in); got != tc.want {
			t.Fatalf("Sanitize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSanitizeIdempotent(t *testing.T) {
	inputs := []string{
		`<b>"bold"</b>`,
		"already &lt;escaped&gt;",
		"tom & jerry's <show>",
	}
	for _, in := range inputs {
		once := Sanitize(in)
		if twice := Sanitize(once); twice != once {
			t.Fatalf("Sanitize not idempotent for %q: %q vs %q", in, once, twice)
		}
	}
}

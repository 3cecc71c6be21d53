package feed

import "testing"

func TestCanonicalize(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "empty", raw: "", want: ""},
		{name: "blank", raw: "   ", want: ""},
		{name: "www and trailing slash", raw: "https://www.Example.com/news/1/", want: "https://example.com/news/1"},
		{name: "http forced to https", raw: "http://example.com/a", want: "https://example.com/a"},
		{name: "query and fragment dropped", raw: "http://EXAMPLE.com/a?utm_source=x#top", want: "https://example.com/a"},
		{name: "root path", raw: "https://example.com/", want: "https://example.com"},
		{name: "repeated prefix", raw: "http://www.www.example.com", want: "https://example.com"},
		{name: "port kept", raw: "https://Example.com:8443/x//", want: "https://example.com:8443/x"},
		{name: "scheme relative", raw: "//cdn.Example.com/a.png", want: "https://cdn.example.com/a.png"},
		{name: "escaped path kept", raw: "https://example.com/a%20b/", want: "https://example.com/a%20b"},
		{name: "no scheme", raw: "example.com/path/", want: "example.com/path"},
		{name: "opaque", raw: "mailto:news@example.com", want: "mailto:news@example.com"},
		{name: "bad host", raw: "http://exa mple.com/x/", want: "http://exa mple.com/x"},
		{name: "bare prefix host", raw: "https://www./x", want: "https://www./x"},
		{name: "space before slash", raw: "http://ab /", want: "https://ab"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Canonicalize(tt.raw); got != tt.want {
				t.Fatalf("Canonicalize(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestCanonicalizeIdempotent(t *testing.T) {
	t.Parallel()
	inputs := []string{
		"",
		"https://www.Example.com/news/1/",
		"HTTP://WWW.X.com/a#%zz",
		"https://x.com/a%2F/",
		"https://x.com/a b/",
		"http://user:pw@www.Example.com:80/p/?q=1",
		"http://ab /",
		"http://exa mple.com/x/ /",
		"www.",
		"https://www./",
		"///",
		"?only=query",
		"#frag",
		"ftp://files.example.com/pub/",
		"  https://example.com/a  ",
		"news/1/",
	}
	for _, in := range inputs {
		once := Canonicalize(in)
		if twice := Canonicalize(once); twice != once {
			t.Fatalf("not idempotent for %q: once=%q twice=%q", in, once, twice)
		}
	}
}

package service

import "testing"

func TestDedupIndex(t *testing.T) {
	existing := []string{
		"https://i.redd.it/abc123.jpg",
		"https://i.imgur.com/xyz789.png",
	}
	idx := newDedupIndex(existing)

	testCases := []struct {
		name      string
		candidate string
		duplicate bool
	}{
		{
			name:      "exact URL match",
			candidate: "https://i.redd.it/abc123.jpg",
			duplicate: true,
		},
		{
			name:      "same filename on a different host",
			candidate: "https://preview.redd.it/abc123.jpg",
			duplicate: true,
		},
		{
			name:      "same stem with a different extension",
			candidate: "https://i.redd.it/abc123.png",
			duplicate: true,
		},
		{
			name:      "same stem with query string",
			candidate: "https://preview.redd.it/abc123.jpg?width=640",
			duplicate: true,
		},
		{
			name:      "case-insensitive filename",
			candidate: "https://i.redd.it/ABC123.JPG",
			duplicate: true,
		},
		{
			name:      "different image",
			candidate: "https://i.redd.it/fresh42.jpg",
			duplicate: false,
		},
		{
			name:      "different stem same extension",
			candidate: "https://i.imgur.com/other.png",
			duplicate: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := idx.isLikelyDuplicate(tc.candidate); got != tc.duplicate {
				t.Errorf("isLikelyDuplicate(%q) = %v, want %v", tc.candidate, got, tc.duplicate)
			}
		})
	}
}

func TestDedupIndexGrowsWithAdds(t *testing.T) {
	idx := newDedupIndex(nil)
	url := "https://i.redd.it/new1.jpg"

	if idx.isLikelyDuplicate(url) {
		t.Fatal("empty index should not report duplicates")
	}
	idx.add(url)
	if !idx.isLikelyDuplicate(url) {
		t.Error("added URL should be a duplicate on the next check")
	}
	if !idx.isLikelyDuplicate("https://i.imgur.com/new1.png") {
		t.Error("same stem should be caught after add")
	}
}

func TestURLFilename(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain file", input: "https://i.redd.it/abc.jpg", want: "abc.jpg"},
		{name: "query stripped", input: "https://x.com/a/b/pic.png?w=1", want: "pic.png"},
		{name: "lowercased", input: "https://x.com/PIC.JPG", want: "pic.jpg"},
		{name: "no path", input: "https://x.com", want: ""},
		{name: "trailing slash", input: "https://x.com/dir/", want: "dir"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := urlFilename(tc.input); got != tc.want {
				t.Errorf("urlFilename(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestFilenameStem(t *testing.T) {
	if got := filenameStem("abc123.jpg"); got != "abc123" {
		t.Errorf("got %q, want abc123", got)
	}
	if got := filenameStem("noext"); got != "noext" {
		t.Errorf("got %q, want noext", got)
	}
}

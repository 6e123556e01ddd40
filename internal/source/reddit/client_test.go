package reddit

import "testing"

func TestIsImageURL(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  bool
	}{
		{name: "jpg extension", input: "https://example.com/pic.jpg", want: true},
		{name: "jpeg extension", input: "https://example.com/pic.jpeg", want: true},
		{name: "png extension", input: "https://example.com/pic.png", want: true},
		{name: "gif extension", input: "https://example.com/anim.gif", want: true},
		{name: "uppercase extension", input: "https://example.com/PIC.JPG", want: true},
		{name: "i.redd.it without extension", input: "https://i.redd.it/abc123", want: true},
		{name: "i.imgur.com without extension", input: "https://i.imgur.com/xyz", want: true},
		{name: "preview.redd.it with query", input: "https://preview.redd.it/abc?width=640", want: true},
		{name: "reddit gallery", input: "https://www.reddit.com/gallery/abc", want: false},
		{name: "video", input: "https://v.redd.it/abc123", want: false},
		{name: "article link", input: "https://example.com/story.html", want: false},
		{name: "not a url", input: "::::", want: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsImageURL(tc.input); got != tc.want {
				t.Errorf("IsImageURL(%q) = %v, want %v", tc.input, got, tc.want)
			}
		})
	}
}

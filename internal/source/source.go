// Package source defines the interface for external meme feeds.
package source

import "context"

// Post is a candidate meme fetched from an external feed.
type Post struct {
	ID        string // Unique ID within the source
	Title     string
	URL       string // Direct image URL
	Permalink string // Link back to the original post
	Score     int
	Subreddit string
	Author    string
	CreatedAt int64 // Unix seconds
}

// Feed is a read-only source of candidate meme posts.
type Feed interface {
	// SourceID returns the stable identifier for this feed.
	SourceID() string

	// FetchHot fetches up to limit currently-hot image posts from one
	// community within the feed.
	// Parameters:
	//   - ctx: context for cancellation and deadlines.
	//   - community: community name within the feed (e.g. a subreddit).
	//   - limit: maximum number of posts to return.
	//
	// Returns:
	//   - []Post: image posts only, non-image posts are filtered out.
	//   - error: non-nil if fetching fails.
	FetchHot(ctx context.Context, community string, limit int) ([]Post, error)
}

package feed

import (
	"net/http"
	"time"

	"github.com/okian/crowdguess/pkg/logger"
)

// RedditOption applies a configuration option to the Reddit provider.
type RedditOption func(*Reddit)

// WithSubreddit sets the subreddit the hot listing is read from.
func WithSubreddit(name string) RedditOption {
	return func(r *Reddit) {
		if name != "" {
			r.subreddit = name
		}
	}
}

// WithPostLimit sets how many hot posts are fetched per listing.
func WithPostLimit(n int) RedditOption {
	return func(r *Reddit) {
		if n > 0 {
			r.postLimit = n
		}
	}
}

// WithCommentLimit sets how many top comments form a corpus.
func WithCommentLimit(n int) RedditOption {
	return func(r *Reddit) {
		if n > 0 {
			r.commentLimit = n
		}
	}
}

// WithListingTTL sets how long a hot listing is reused before refetching.
func WithListingTTL(d time.Duration) RedditOption {
	return func(r *Reddit) {
		if d > 0 {
			r.listingTTL = d
		}
	}
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) RedditOption {
	return func(r *Reddit) {
		if c != nil {
			r.client = c
		}
	}
}

// WithEndpoints overrides the token and API base URLs.
func WithEndpoints(authURL, apiURL string) RedditOption {
	return func(r *Reddit) {
		if authURL != "" {
			r.authURL = authURL
		}
		if apiURL != "" {
			r.apiURL = apiURL
		}
	}
}

// WithRedditLogger sets a custom logger.
func WithRedditLogger(l logger.Logger) RedditOption {
	return func(r *Reddit) {
		if l != nil {
			r.logger = l
		}
	}
}

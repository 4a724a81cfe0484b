package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/okian/crowdguess/internal/domain/corpus"
	"github.com/okian/crowdguess/internal/domain/model"
	"github.com/okian/crowdguess/pkg/logger"
	"github.com/okian/crowdguess/pkg/metrics"
)

const (
	defaultSubreddit    = "AskReddit"
	defaultPostLimit    = 100
	defaultCommentLimit = 100
	defaultListingTTL   = 10 * time.Minute
	userAgent           = "crowdguess/1.0"
)

// Reddit serves hot posts of a subreddit as questions and their top
// comments as the answer corpus. Comment score is the popularity.
type Reddit struct {
	client       *http.Client
	clientID     string
	clientSecret string
	authURL      string
	apiURL       string
	subreddit    string
	postLimit    int
	commentLimit int
	listingTTL   time.Duration
	logger       logger.Logger

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
	posts       []redditPost
	fetchedAt   time.Time
	corpora     map[string]corpus.Corpus
}

// NewReddit creates a Reddit provider using OAuth client credentials.
func NewReddit(clientID, clientSecret string, opts ...RedditOption) *Reddit {
	r := &Reddit{
		client:       &http.Client{Timeout: 30 * time.Second},
		clientID:     clientID,
		clientSecret: clientSecret,
		authURL:      "https://www.reddit.com/api/v1/access_token",
		apiURL:       "https://oauth.reddit.com",
		subreddit:    defaultSubreddit,
		postLimit:    defaultPostLimit,
		commentLimit: defaultCommentLimit,
		listingTTL:   defaultListingTTL,
		logger:       logger.Get().Named("reddit"),
		corpora:      make(map[string]corpus.Corpus),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Question implements Provider. The listing is fetched lazily and reused
// for listingTTL; comments are cached per post.
func (r *Reddit) Question(ctx context.Context, index int) (model.Question, error) {
	start := time.Now()
	defer func() {
		metrics.RecordFeedFetchLatency(float64(time.Since(start).Milliseconds()))
	}()

	if index < 0 {
		return model.Question{}, ErrNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.authenticate(ctx); err != nil {
		metrics.RecordFeedError()
		return model.Question{}, fmt.Errorf("reddit auth: %w", err)
	}
	if r.posts == nil || time.Since(r.fetchedAt) > r.listingTTL {
		posts, err := r.fetchHot(ctx)
		if err != nil {
			metrics.RecordFeedError()
			return model.Question{}, err
		}
		r.posts = posts
		r.fetchedAt = time.Now()
		r.corpora = make(map[string]corpus.Corpus)
		r.logger.Info(ctx, "fetched hot listing",
			logger.String("subreddit", r.subreddit),
			logger.Int("posts", len(posts)),
		)
	}
	if index >= len(r.posts) {
		return model.Question{}, ErrNotFound
	}

	post := r.posts[index]
	c, ok := r.corpora[post.ID]
	if !ok {
		var err error
		c, err = r.fetchComments(ctx, post.ID)
		if err != nil {
			metrics.RecordFeedError()
			return model.Question{}, err
		}
		r.corpora[post.ID] = c
	}
	return model.Question{ID: post.ID, Title: post.Title, Corpus: c}, nil
}

// authenticate refreshes the bearer token. Must be called with r.mu held.
func (r *Reddit) authenticate(ctx context.Context) error {
	if r.token != "" && time.Now().Before(r.tokenExpiry) {
		return nil
	}

	data := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.authURL, strings.NewReader(data.Encode()))
	if err != nil {
		return err
	}
	req.SetBasicAuth(r.clientID, r.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", userAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("reddit token request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("reddit auth status %d", resp.StatusCode)
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return fmt.Errorf("decode reddit token: %w", err)
	}

	r.token = tokenResp.AccessToken
	r.tokenExpiry = time.Now().Add(time.Duration(tokenResp.ExpiresIn-60) * time.Second)
	return nil
}

func (r *Reddit) get(ctx context.Context, reqURL string, into any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+r.token)
	req.Header.Set("User-Agent", userAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(into)
}

func (r *Reddit) fetchHot(ctx context.Context) ([]redditPost, error) {
	reqURL := fmt.Sprintf("%s/r/%s/hot.json?t=day&limit=%d", r.apiURL, url.PathEscape(r.subreddit), r.postLimit)

	var listing redditListing
	if err := r.get(ctx, reqURL, &listing); err != nil {
		return nil, fmt.Errorf("fetch r/%s: %w", r.subreddit, err)
	}

	posts := make([]redditPost, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		if child.Data.Stickied || child.Data.ID == "" {
			continue
		}
		posts = append(posts, child.Data)
	}
	return posts, nil
}

func (r *Reddit) fetchComments(ctx context.Context, postID string) (corpus.Corpus, error) {
	reqURL := fmt.Sprintf("%s/r/%s/comments/%s.json?sort=top&limit=%d",
		r.apiURL, url.PathEscape(r.subreddit), url.PathEscape(postID), r.commentLimit)

	// The response is [post listing, comment listing].
	var listings []redditCommentListing
	if err := r.get(ctx, reqURL, &listings); err != nil {
		return corpus.Corpus{}, fmt.Errorf("fetch comments %s: %w", postID, err)
	}
	if len(listings) < 2 {
		return corpus.New(), nil
	}

	entries := make([]corpus.Entry, 0, len(listings[1].Data.Children))
	for _, child := range listings[1].Data.Children {
		if child.Kind != "t1" || child.Data.Body == "" {
			continue
		}
		entries = append(entries, corpus.Entry{Text: child.Data.Body, Popularity: child.Data.Score})
		if len(entries) == r.commentLimit {
			break
		}
	}
	return corpus.New(entries...), nil
}

type redditListing struct {
	Data struct {
		Children []struct {
			Data redditPost `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type redditPost struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Stickied bool   `json:"stickied"`
}

type redditCommentListing struct {
	Data struct {
		Children []struct {
			Kind string `json:"kind"`
			Data struct {
				Body  string `json:"body"`
				Score int    `json:"score"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

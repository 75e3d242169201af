package dataflows

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/dyike/RedditLens/consts"
	"github.com/dyike/RedditLens/models"
)

// RedditClient searches Reddit with an app-only OAuth token.
type RedditClient struct {
	client    *resty.Client
	tokens    oauth2.TokenSource
	hasCreds  bool
	userAgent string
}

// NewRedditClient creates a new Reddit client. No request is made until
// Authenticate or Search is called.
func NewRedditClient(cfg *Config) *RedditClient {
	baseHTTP := &http.Client{
		Timeout:   30 * time.Second,
		Transport: &userAgentTransport{userAgent: cfg.RedditUserAgent, base: http.DefaultTransport},
	}

	oauthCfg := &clientcredentials.Config{
		ClientID:     cfg.RedditClientID,
		ClientSecret: cfg.RedditSecret,
		TokenURL:     cfg.RedditAuthURL,
		AuthStyle:    oauth2.AuthStyleInHeader,
	}

	// One cached token serves Authenticate and every search.
	tokenCtx := context.WithValue(context.Background(), oauth2.HTTPClient, baseHTTP)
	tokens := oauth2.ReuseTokenSource(nil, oauthCfg.TokenSource(tokenCtx))
	httpClient := oauth2.NewClient(tokenCtx, tokens)

	client := resty.NewWithClient(httpClient)
	client.SetBaseURL(strings.TrimRight(cfg.RedditAPIURL, "/"))
	client.SetTimeout(30 * time.Second)
	client.SetHeader("User-Agent", cfg.RedditUserAgent)

	return &RedditClient{
		client:    client,
		tokens:    tokens,
		hasCreds:  cfg.RedditClientID != "" && cfg.RedditSecret != "",
		userAgent: cfg.RedditUserAgent,
	}
}

// Authenticate fetches an access token to prove the credentials work. The
// token is cached and reused by Search until it expires.
func (rc *RedditClient) Authenticate(ctx context.Context) error {
	if !rc.hasCreds {
		return fmt.Errorf("%w: client id and secret are required", ErrAuthentication)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	tok, err := rc.tokens.Token()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrAuthentication, err)
	}
	if !tok.Valid() {
		return fmt.Errorf("%w: token endpoint returned an unusable token", ErrAuthentication)
	}

	slog.DebugContext(ctx, "reddit authenticated", "token_type", tok.TokenType, "expiry", tok.Expiry)
	return nil
}

// Search runs one search against a subreddit (or r/all), orders the page by
// score and returns at most req.Limit posts.
func (rc *RedditClient) Search(ctx context.Context, req models.SearchRequest) ([]models.Post, error) {
	req, err := NormalizeSearchRequest(req)
	if err != nil {
		return nil, err
	}

	scope := req.Subreddit
	if scope == "" {
		scope = "all"
	}

	params := map[string]string{
		"q":        req.Query,
		"sort":     req.Sort,
		"limit":    strconv.Itoa(consts.SearchLimitCap),
		"type":     "link",
		"raw_json": "1",
	}
	if req.UsesTimeFilter() {
		params["t"] = req.TimeFilter
	}
	if req.Subreddit != "" {
		params["restrict_sr"] = "true"
	}

	start := time.Now()
	resp, err := rc.client.R().
		SetContext(ctx).
		SetPathParam("subreddit", scope).
		SetQueryParams(params).
		Get("/r/{subreddit}/search")
	if err != nil {
		return nil, fmt.Errorf("failed to search Reddit: %w", err)
	}
	if resp.IsError() {
		return nil, &APIError{StatusCode: resp.StatusCode(), Body: strings.TrimSpace(string(resp.Body()))}
	}

	var redditResp RedditResponse
	if err := json.Unmarshal(resp.Body(), &redditResp); err != nil {
		return nil, fmt.Errorf("failed to parse Reddit JSON: %w", err)
	}

	posts := convertToPosts(redditResp.Data.Children)
	posts = rankByScore(posts, req.Limit)

	slog.DebugContext(ctx, "reddit search completed",
		"query", req.Query,
		"subreddit", scope,
		"sort", req.Sort,
		"returned", len(posts),
		"duration_ms", time.Since(start).Milliseconds())

	return posts, nil
}

// NormalizeSearchRequest validates a request and fills in defaults.
func NormalizeSearchRequest(req models.SearchRequest) (models.SearchRequest, error) {
	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		return req, fmt.Errorf("%w: search query cannot be empty", ErrInvalidArgument)
	}
	if !models.IsValidSort(req.Sort) {
		return req, fmt.Errorf("%w: invalid sort parameter %q", ErrInvalidArgument, req.Sort)
	}
	if req.TimeFilter == "" {
		req.TimeFilter = models.TimeAll
	}
	if !models.IsValidTimeFilter(req.TimeFilter) {
		return req, fmt.Errorf("%w: invalid time filter %q", ErrInvalidArgument, req.TimeFilter)
	}
	if req.Limit < 1 {
		return req, fmt.Errorf("%w: limit must be at least 1, got %d", ErrInvalidArgument, req.Limit)
	}
	if req.Limit > consts.SearchLimitCap {
		req.Limit = consts.SearchLimitCap
	}

	sub := strings.TrimSpace(req.Subreddit)
	sub = strings.TrimPrefix(sub, "/")
	sub = strings.TrimPrefix(sub, "r/")
	req.Subreddit = strings.TrimSuffix(sub, "/")

	return req, nil
}

// convertToPosts keeps t3 (link) children and maps them to posts.
func convertToPosts(children []RedditChild) []models.Post {
	posts := make([]models.Post, 0, len(children))

	for _, child := range children {
		if child.Kind != "t3" {
			continue
		}

		data := child.Data
		posts = append(posts, models.Post{
			Title:       data.Title,
			URL:         consts.RedditBaseURL + data.Permalink,
			Score:       data.Score,
			NumComments: data.NumComments,
			CreatedDate: time.Unix(int64(data.CreatedUTC), 0).UTC().Format(consts.CreatedDateLayout),
			Subreddit:   data.Subreddit,
		})
	}

	return posts
}

// rankByScore sorts by score descending, keeping upstream order on ties.
func rankByScore(posts []models.Post, limit int) []models.Post {
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].Score > posts[j].Score
	})
	if len(posts) > limit {
		posts = posts[:limit]
	}
	return posts
}

type userAgentTransport struct {
	userAgent string
	base      http.RoundTripper
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.userAgent != "" {
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", t.userAgent)
	}
	return t.base.RoundTrip(req)
}

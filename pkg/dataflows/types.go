package dataflows

import (
	"errors"
	"fmt"

	"github.com/dyike/RedditLens/config"
)

// Config is an alias for the main application config
type Config = config.Config

var (
	// ErrInvalidArgument is returned for search requests the adapter refuses to send.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrAuthentication is returned when Reddit rejects the app credentials.
	ErrAuthentication = errors.New("reddit authentication failed")
)

// APIError is a non-2xx response from the Reddit API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("reddit api: HTTP %d: %s", e.StatusCode, e.Body)
}

// RedditResponse represents the API response structure
type RedditResponse struct {
	Kind string `json:"kind"`
	Data struct {
		After    string        `json:"after"`
		Before   string        `json:"before"`
		Children []RedditChild `json:"children"`
		Dist     int           `json:"dist"`
	} `json:"data"`
}

// RedditChild represents a Reddit post wrapper
type RedditChild struct {
	Kind string         `json:"kind"`
	Data RedditPostData `json:"data"`
}

// RedditPostData represents Reddit post data from API
type RedditPostData struct {
	ID                    string  `json:"id"`
	Title                 string  `json:"title"`
	URL                   string  `json:"url"`
	Permalink             string  `json:"permalink"`
	Subreddit             string  `json:"subreddit"`
	SubredditNamePrefixed string  `json:"subreddit_name_prefixed"`
	Author                string  `json:"author"`
	Score                 int     `json:"score"`
	NumComments           int     `json:"num_comments"`
	CreatedUTC            float64 `json:"created_utc"`
	Stickied              bool    `json:"stickied"`
	Over18                bool    `json:"over_18"`
	IsSelf                bool    `json:"is_self"`
}

package consts

const (
	// SearchLimitCap is the most posts a single search may return.
	SearchLimitCap = 50
	// DefaultMaxPosts applies when a filter request leaves max_posts unset.
	DefaultMaxPosts = 10

	RedditBaseURL = "https://www.reddit.com"

	// created_date layout for posts
	CreatedDateLayout = "2006-01-02 15:04:05"
)

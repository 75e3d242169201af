package models

// Post is a normalized Reddit submission. Sentiment is filled in by the post filter.
type Post struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Score       int    `json:"score"`
	NumComments int    `json:"num_comments"`
	CreatedDate string `json:"created_date"`
	Subreddit   string `json:"subreddit"`
	Sentiment   string `json:"sentiment,omitempty"`
}

// Sort modes accepted by the search tool.
const (
	SortRelevance = "relevance"
	SortHot       = "hot"
	SortNew       = "new"
	SortTop       = "top"
)

// Time filters accepted by the search tool.
const (
	TimeHour  = "hour"
	TimeDay   = "day"
	TimeWeek  = "week"
	TimeMonth = "month"
	TimeYear  = "year"
	TimeAll   = "all"
)

var (
	SortModes   = []string{SortRelevance, SortHot, SortNew, SortTop}
	TimeFilters = []string{TimeHour, TimeDay, TimeWeek, TimeMonth, TimeYear, TimeAll}
)

// SearchRequest mirrors the arguments of the search_reddit_posts tool.
type SearchRequest struct {
	Query      string `json:"query"`
	Limit      int    `json:"limit"`
	TimeFilter string `json:"time_filter"`
	Sort       string `json:"sort"`
	Subreddit  string `json:"subreddit,omitempty"`
}

// UsesTimeFilter reports whether the sort mode honours time_filter upstream.
func (r SearchRequest) UsesTimeFilter() bool {
	return r.Sort == SortRelevance || r.Sort == SortTop
}

// FilterRequest mirrors the arguments of the filter_reddit_posts tool.
type FilterRequest struct {
	Posts     []Post `json:"posts"`
	Sentiment string `json:"sentiment,omitempty"`
	MaxPosts  int    `json:"max_posts,omitempty"`
}

func IsValidSort(sort string) bool {
	return contains(SortModes, sort)
}

func IsValidTimeFilter(t string) bool {
	return contains(TimeFilters, t)
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}

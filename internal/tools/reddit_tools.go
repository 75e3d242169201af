package tools

import (
	"context"
	"log/slog"

	"github.com/cloudwego/eino/components/tool"
	t_utils "github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"

	"github.com/dyike/RedditLens/consts"
	"github.com/dyike/RedditLens/models"
)

// Searcher runs one bounded Reddit search.
type Searcher interface {
	Search(ctx context.Context, req models.SearchRequest) ([]models.Post, error)
}

// PostFilterer narrows a list of posts down by sentiment.
type PostFilterer interface {
	Filter(ctx context.Context, req models.FilterRequest) ([]models.Post, error)
}

// SearchToolInfo describes search_reddit_posts to the model.
func SearchToolInfo() *schema.ToolInfo {
	return &schema.ToolInfo{
		Name: consts.ToolSearchRedditPosts,
		Desc: "Search Reddit for posts matching a query and return the top posts by score",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"query": {
				Type:     schema.String,
				Desc:     "The search query",
				Required: true,
			},
			"limit": {
				Type:     schema.Integer,
				Desc:     "Maximum number of posts to return (1-50)",
				Required: true,
			},
			"time_filter": {
				Type:     schema.String,
				Desc:     "Time window for the search",
				Enum:     models.TimeFilters,
				Required: true,
			},
			"sort": {
				Type:     schema.String,
				Desc:     "Sort order for the search",
				Enum:     models.SortModes,
				Required: true,
			},
			"subreddit": {
				Type: schema.String,
				Desc: "Restrict the search to this subreddit (without the r/ prefix)",
			},
		}),
	}
}

// FilterToolInfo describes filter_reddit_posts to the model.
func FilterToolInfo() *schema.ToolInfo {
	return &schema.ToolInfo{
		Name: consts.ToolFilterRedditPosts,
		Desc: "Classify the sentiment of Reddit posts and keep only those matching the requested sentiment",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"posts": {
				Type:     schema.Array,
				Desc:     "Posts returned by search_reddit_posts",
				Required: true,
				ElemInfo: &schema.ParameterInfo{
					Type: schema.Object,
					SubParams: map[string]*schema.ParameterInfo{
						"title":        {Type: schema.String, Required: true},
						"url":          {Type: schema.String, Required: true},
						"score":        {Type: schema.Integer, Required: true},
						"num_comments": {Type: schema.Integer, Required: true},
						"created_date": {Type: schema.String, Required: true},
						"subreddit":    {Type: schema.String, Required: true},
					},
				},
			},
			"sentiment": {
				Type: schema.String,
				Desc: "Single lowercase word naming the emotion to keep, e.g. happy. Omit to keep every post",
			},
			"max_posts": {
				Type: schema.Integer,
				Desc: "Maximum number of posts to keep (default 10)",
			},
		}),
	}
}

// NewRedditSearchTool binds search_reddit_posts to a Searcher.
func NewRedditSearchTool(searcher Searcher) tool.InvokableTool {
	return t_utils.NewTool(SearchToolInfo(),
		func(ctx context.Context, input models.SearchRequest) ([]models.Post, error) {
			posts, err := searcher.Search(ctx, input)
			if err != nil {
				return nil, err
			}
			if posts == nil {
				posts = []models.Post{}
			}

			slog.InfoContext(ctx, "searched reddit",
				"query", input.Query,
				"sort", input.Sort,
				"time_filter", input.TimeFilter,
				"subreddit", input.Subreddit,
				"posts", len(posts))
			return posts, nil
		})
}

// NewPostFilterTool binds filter_reddit_posts to a PostFilterer.
func NewPostFilterTool(filterer PostFilterer) tool.InvokableTool {
	return t_utils.NewTool(FilterToolInfo(),
		func(ctx context.Context, input models.FilterRequest) ([]models.Post, error) {
			posts, err := filterer.Filter(ctx, input)
			if err != nil {
				return nil, err
			}
			if posts == nil {
				posts = []models.Post{}
			}

			slog.InfoContext(ctx, "filtered reddit posts",
				"sentiment", input.Sentiment,
				"input", len(input.Posts),
				"kept", len(posts))
			return posts, nil
		})
}

package main

import (
	"context"
	"fmt"
	"log"

	"github.com/dyike/RedditLens/config"
	"github.com/dyike/RedditLens/internal/logger"
	"github.com/dyike/RedditLens/models"
	"github.com/dyike/RedditLens/pkg/dataflows"
)

// Live smoke test for the Reddit search adapter. Needs REDDIT_CLIENT_ID and
// REDDIT_CLIENT_SECRET.
func main() {
	cfg := config.DefaultConfig()
	cfg.Debug = true
	logger.Setup(cfg)

	ctx := context.Background()
	redditClient := dataflows.NewRedditClient(cfg)
	if err := redditClient.Authenticate(ctx); err != nil {
		log.Fatalf("Reddit authentication failed: %v", err)
	}

	fmt.Println("\n=== Test 1: hot posts about Elon Musk ===")
	posts, err := redditClient.Search(ctx, models.SearchRequest{
		Query:      "Elon Musk",
		Limit:      5,
		TimeFilter: models.TimeWeek,
		Sort:       models.SortHot,
	})
	printPosts(posts, err)

	fmt.Println("\n=== Test 2: top posts in r/cats today ===")
	posts, err = redditClient.Search(ctx, models.SearchRequest{
		Query:      "cats",
		Limit:      3,
		TimeFilter: models.TimeDay,
		Sort:       models.SortTop,
		Subreddit:  "cats",
	})
	printPosts(posts, err)
}

func printPosts(posts []models.Post, err error) {
	if err != nil {
		log.Printf("Error searching Reddit: %v", err)
		return
	}
	fmt.Printf("Found %d posts\n", len(posts))
	for i, post := range posts {
		fmt.Printf("%d. %s (r/%s, Score: %d, %s)\n   %s\n", i+1, post.Title, post.Subreddit, post.Score, post.CreatedDate, post.URL)
	}
}

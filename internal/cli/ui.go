package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dyike/RedditLens/models"
)

// UI styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF4500")).
			Padding(0, 1)

	taglineStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#3B82F6")).
			Italic(true)

	answerStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#10B981")).
			Padding(1, 2)

	postTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#F59E0B"))

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EF4444")).
			Bold(true)

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8B5CF6"))
)

// DisplayWelcomeBanner shows the welcome banner
func DisplayWelcomeBanner(w io.Writer) {
	fmt.Fprintln(w, titleStyle.Render("RedditLens"))
	fmt.Fprintln(w, taglineStyle.Render("Ask anything about what Reddit is talking about."))
	fmt.Fprintln(w, hintStyle.Render("Type 'exit' or 'quit' to leave."))
	fmt.Fprintln(w)
}

func renderAnswer(w io.Writer, answer string) {
	fmt.Fprintln(w, answerStyle.Render(strings.TrimSpace(answer)))
}

func renderError(w io.Writer, err error) {
	fmt.Fprintln(w, errorStyle.Render("Error: ")+err.Error())
}

// renderPosts prints search results, one numbered block per post.
func renderPosts(w io.Writer, posts []models.Post) {
	if len(posts) == 0 {
		fmt.Fprintln(w, metaStyle.Render("No posts found."))
		return
	}

	for i, p := range posts {
		fmt.Fprintf(w, "%d. %s\n", i+1, postTitleStyle.Render(p.Title))
		meta := fmt.Sprintf("r/%s | score %d | %d comments | %s", p.Subreddit, p.Score, p.NumComments, p.CreatedDate)
		if p.Sentiment != "" {
			meta += " | " + p.Sentiment
		}
		fmt.Fprintln(w, "   "+metaStyle.Render(meta))
		fmt.Fprintln(w, "   "+p.URL)
	}
}

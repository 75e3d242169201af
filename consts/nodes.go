package consts

// Tool names exposed to the language model.
const (
	ToolSearchRedditPosts = "search_reddit_posts"
	ToolFilterRedditPosts = "filter_reddit_posts"
)

// Orchestrator states for one user request.
const (
	StateInit                = "init"
	StateAwaitToolDecision   = "await_tool_decision"
	StateToolExecuted        = "tool_executed"
	StateAwaitFilterDecision = "await_filter_decision"
	StateFinalize            = "finalize"
	StateDone                = "done"
)

// Node keys of the compiled answer graph.
const (
	NodeDecide       = "decide"
	NodeExecuteTool  = "execute_tool"
	NodeForcedFilter = "forced_filter"
	NodeFinalize     = "finalize"
)

const GraphName = "RedditLens-Analyst"

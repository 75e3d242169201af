package main

import "github.com/dyike/RedditLens/internal/cli"

func main() {
	cli.Run()
}

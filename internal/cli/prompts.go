package cli

import (
	"errors"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

// errQuit ends the interactive session.
var errQuit = errors.New("quit")

// PromptForQuestion asks for the next question. Ctrl-C, "exit" and "quit"
// all end the session.
func PromptForQuestion() (string, error) {
	var question string
	prompt := &survey.Input{
		Message: "Ask Reddit:",
		Help:    "e.g. What are people saying about Elon Musk this week? Type 'exit' to quit.",
	}

	err := survey.AskOne(prompt, &question, survey.WithValidator(survey.Required))
	if errors.Is(err, terminal.InterruptErr) {
		return "", errQuit
	}
	if err != nil {
		return "", err
	}

	question = strings.TrimSpace(question)
	if isQuit(question) {
		return "", errQuit
	}
	return question, nil
}

func isQuit(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "exit", "quit":
		return true
	}
	return false
}

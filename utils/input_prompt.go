package utils

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"groom/constants/lipgloss"
)

// InputPrompt asks the user for one configuration value on the terminal and
// returns the trimmed answer.
func InputPrompt(reader *bufio.Reader, label string) (string, error) {

	fmt.Print(lipgloss.BlueSky.Render(label + ": "))

	userInput, err := reader.ReadString('\n')
	if userInput == "" {
		return "", nil
	}

	if err != nil {
		if err == io.EOF {
			return strings.TrimSpace(userInput), nil
		}
		return "", fmt.Errorf("error reading input: %w", err)
	}

	return strings.TrimSpace(userInput), nil
}

// PromptIfEmpty returns value unchanged when set, otherwise prompts for it.
func PromptIfEmpty(reader *bufio.Reader, value string, label string) (string, error) {
	if value != "" {
		return value, nil
	}
	return InputPrompt(reader, label)
}

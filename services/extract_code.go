package services

import (
	"regexp"
	"strings"
)

// Matches fenced blocks with or without a language tag.
var codeBlockPattern = regexp.MustCompile("(?s)```(?:[\\w+-]*\\n|\\n)(.*?)```")

func ExtractCodeBlocks(markdown string) []string {
	matches := codeBlockPattern.FindAllStringSubmatch(markdown, -1)

	var codeBlocks []string
	for _, match := range matches {
		if len(match) >= 2 {
			code := strings.TrimSpace(match[1])
			if code != "" {
				codeBlocks = append(codeBlocks, code)
			}
		}
	}

	return codeBlocks
}

package ai

import (
	"encoding/json"
	"regexp"
	"strings"
)

// CleanJSONResponse strips markdown fences and surrounding prose from an LLM
// response and returns the first balanced JSON object found. Models routinely
// wrap JSON in ```json blocks or prepend commentary despite instructions.
func CleanJSONResponse(response string) string {
	response = removeMarkdownBlocks(response)
	response = extractJSONObject(response)
	if isValidJSON(response) {
		return response
	}
	return fixCommonJSONIssues(response)
}

func removeMarkdownBlocks(response string) string {
	response = strings.TrimSpace(response)
	response = strings.TrimPrefix(response, "```json")
	response = strings.TrimPrefix(response, "```")
	response = strings.TrimSuffix(response, "```")
	return strings.TrimSpace(response)
}

// extractJSONObject returns the substring between the first { and its
// matching closing brace.
func extractJSONObject(response string) string {
	start := strings.Index(response, "{")
	if start == -1 {
		return response
	}
	braceCount := 0
	for i := start; i < len(response); i++ {
		switch response[i] {
		case '{':
			braceCount++
		case '}':
			braceCount--
			if braceCount == 0 {
				return response[start : i+1]
			}
		}
	}
	return response
}

var trailingCommaRe = regexp.MustCompile(`,(\s*[}\]])`)

func fixCommonJSONIssues(response string) string {
	response = trailingCommaRe.ReplaceAllString(response, "$1")
	if start := strings.Index(response, "{"); start > 0 {
		response = response[start:]
	}
	return response
}

func isValidJSON(response string) bool {
	var v any
	return json.Unmarshal([]byte(response), &v) == nil
}

package llm

import (
	"encoding/json"
	"strings"

	"github.com/qapilothq/Valetudo/internal/hierarchy"
)

// cleanMarkdownJSON strips the code fences models like to wrap JSON in and
// rewrites Python-style booleans so the payload decodes.
func cleanMarkdownJSON(content string) string {
	content = strings.TrimSpace(content)

	if strings.HasPrefix(content, "```json\n") {
		content = content[len("```json\n"):]
	} else if strings.HasPrefix(content, "```json") {
		content = content[len("```json"):]
	}
	if strings.HasSuffix(content, "\n```") {
		content = content[:len(content)-len("\n```")]
	} else if strings.HasSuffix(content, "```") {
		content = content[:len(content)-len("```")]
	}

	content = strings.ReplaceAll(content, "True", "true")
	content = strings.ReplaceAll(content, "False", "false")

	return content
}

// parseRecommendation decodes model output into a recommendation. Undecodable
// output degrades to an empty recommendation rather than an error: the caller
// always gets something to resolve.
func parseRecommendation(content string) *hierarchy.Recommendation {
	var rec hierarchy.Recommendation
	if err := json.Unmarshal([]byte(cleanMarkdownJSON(content)), &rec); err != nil {
		return &hierarchy.Recommendation{}
	}
	return &rec
}

// parseRaw decodes model output into a generic object for the image-only
// flow, where the response is forwarded to the caller as-is.
func parseRaw(content string) map[string]any {
	var parsed map[string]any
	if err := json.Unmarshal([]byte(cleanMarkdownJSON(content)), &parsed); err != nil {
		return map[string]any{}
	}
	return parsed
}

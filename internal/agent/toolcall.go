package agent

import (
	"encoding/json"
	"regexp"
	"strings"
)

// ToolCall is one parsed capability invocation emitted by the model.
type ToolCall struct {
	Name      string                 `json:"name"`
	Arguments map[string]interface{} `json:"arguments"`
}

var toolCallRe = regexp.MustCompile(`(?s)<tool_call>(.*?)</tool_call>`)

// ExtractToolCall finds the first invocation block in the completion text and
// parses its JSON body. Surrounding free text is tolerated; a malformed body
// is treated as no invocation. At most one call is honored per completion.
func ExtractToolCall(text string) (*ToolCall, bool) {
	match := toolCallRe.FindStringSubmatch(text)
	if match == nil {
		return nil, false
	}
	var call ToolCall
	if err := json.Unmarshal([]byte(strings.TrimSpace(match[1])), &call); err != nil {
		return nil, false
	}
	if call.Name == "" {
		return nil, false
	}
	if call.Arguments == nil {
		call.Arguments = map[string]interface{}{}
	}
	return &call, true
}

// CleanResponse strips any invocation-block markup from user-visible text.
func CleanResponse(text string) string {
	return strings.TrimSpace(toolCallRe.ReplaceAllString(text, ""))
}

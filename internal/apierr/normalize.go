// Package apierr turns the detail field of API error bodies into text fit
// for the user.
package apierr

import (
	"encoding/json"
	"fmt"
	"strings"
)

const (
	// DefaultDetail stands in when an error body is missing or unreadable.
	DefaultDetail  = "An error occurred"
	UnknownMessage = "An unknown error occurred."
	NetworkMessage = "Network error. Please check your connection and try again."
)

var messages = map[string]string{
	"REGISTER_USER_ALREADY_EXISTS": "User with this email already exists.",
	"LOGIN_BAD_CREDENTIALS":        "Invalid email or password.",
	"Unauthorized":                 "You are not authorized to perform this action.",
	"Forbidden":                    "You do not have permission to perform this action.",
	"Not Found":                    "The requested resource was not found.",
}

// Normalize maps a decoded detail value to a display string. Known codes use
// the fixed table, unknown codes pass through, validation lists are joined
// with ", " and other objects are rendered as JSON.
func Normalize(detail any) string {
	switch v := detail.(type) {
	case nil:
		return UnknownMessage
	case string:
		if msg, ok := messages[v]; ok {
			return msg
		}
		return v
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, issueMessage(item))
		}
		return strings.Join(parts, ", ")
	case []map[string]any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, issueMessage(item))
		}
		return strings.Join(parts, ", ")
	case map[string]any:
		return stringify(v)
	case json.RawMessage:
		var decoded any
		if err := json.Unmarshal(v, &decoded); err != nil {
			return string(v)
		}
		return Normalize(decoded)
	default:
		return fmt.Sprint(v)
	}
}

func issueMessage(item any) string {
	if obj, ok := item.(map[string]any); ok {
		if msg, ok := obj["msg"].(string); ok {
			return msg
		}
		return stringify(obj)
	}
	return fmt.Sprint(item)
}

func stringify(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}

package common

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseJSON unmarshals a model reply into T. Models wrap JSON in markdown
// fences or prose, so everything outside the outermost braces is discarded
// before decoding. A reply without a JSON object, or one that does not
// decode into T, is an error; no partial result is returned.
func ParseJSON[T any](reply string) (T, error) {
	var zero T

	start := strings.IndexByte(reply, '{')
	if start == -1 {
		return zero, fmt.Errorf("no JSON object in model reply")
	}
	end := strings.LastIndexByte(reply, '}')
	if end <= start {
		return zero, fmt.Errorf("unterminated JSON object in model reply")
	}

	var result T
	if err := json.Unmarshal([]byte(reply[start:end+1]), &result); err != nil {
		return zero, fmt.Errorf("unmarshal model reply: %w", err)
	}
	return result, nil
}

// Package store implements versioned document CRUD over the bolt driver.
package store

import (
	"errors"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// ErrNotFound is returned when no document matches the requested key.
var ErrNotFound = errors.New("document not found")

// payloadFromResult extracts the JSON payload column from a single-row result.
func payloadFromResult(result neo4j.EagerResult) (string, error) {
	if len(result.Records) == 0 {
		return "", ErrNotFound
	}
	value, ok := result.Records[0].Get("payload")
	if !ok {
		return "", fmt.Errorf("result record missing payload column")
	}
	payload, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("payload column is %T, want string", value)
	}
	return payload, nil
}

// Package id generates prefixed NanoID identifiers.
package id

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// NodePrefix is prepended to every generated node ID.
const NodePrefix = "node"

// Generate creates a prefixed unique ID, e.g. "node-V1StGXR8_Z5jdHi6B-myT".
// Returns an error if the system has insufficient entropy.
func Generate(prefix string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}

// NewNodeID generates an ID for a tree node.
func NewNodeID() (string, error) {
	return Generate(NodePrefix)
}

// MustGenerate is like Generate but panics on failure.
// Only for initialization paths where failing loudly is acceptable.
func MustGenerate(prefix string) string {
	id, err := Generate(prefix)
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return id
}

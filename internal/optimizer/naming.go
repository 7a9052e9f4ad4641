// Package optimizer implements the single-request video optimization
// pipeline: validate, stage to a temp file, relay to the transformation
// provider, map the response, and render the embed snippet.
package optimizer

import (
	"fmt"
	"hash/fnv"
	"strings"
)

// Slug lower-cases a project name and replaces spaces with hyphens so it is
// safe inside a remote object identifier.
func Slug(projectName string) string {
	return strings.ReplaceAll(strings.ToLower(projectName), " ", "-")
}

// emailHash reduces a customer email to a small stable number. It only has
// to spread identifiers across repeat uploads, not be collision-free.
func emailHash(email string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(email))
	return h.Sum32() % 10000
}

// PublicID derives the remote object identifier for an upload from the
// project name and customer email. Repeat submissions for the same project
// and customer map to the same identifier, so overwrite semantics replace
// prior derivatives instead of piling up new assets.
func PublicID(projectName, customerEmail string) string {
	return fmt.Sprintf("cinematic-%s-%d", Slug(projectName), emailHash(customerEmail))
}

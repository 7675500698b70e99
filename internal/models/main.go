// Package models defines the rows the server keeps for each user's secrets.
package models

// Record is one stored secret in its canonical line form.
type Record struct {
	// Owner is the user the secret belongs to (client certificate CN).
	Owner string `json:"owner"`
	// Name is the secret's display name, unique per owner.
	Name string `json:"name"`
	// Type is the variant tag, the first token of Line.
	Type string `json:"type"`
	// Line is the canonical persisted form of the secret.
	Line string `json:"line"`
	// Version is the unix time of the last write.
	Version int64 `json:"version"`
	// Deleted marks a soft-deleted record awaiting purge.
	Deleted bool `json:"deleted"`
}

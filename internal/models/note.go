// Package models defines the domain types for othala.
package models

import "time"

// NoteMeta is a lightweight representation of a vault file returned by
// list operations.
type NoteMeta struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Package domain defines the core domain types and interfaces.
//
// Concept-oriented files (status.go, menu.go, reviews.go, errors.go) hold shared types and
// the interfaces adapters implement. No I/O here.
package domain

// Package app provides the application service layer.
//
// Validates menu input and maps repository outcomes onto structured errors.
// Sits between HTTP handlers and domain repositories. Depends on domain interfaces, not concrete implementations.
package app

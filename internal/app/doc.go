// Package app provides the application service layer.
//
// Orchestrates use cases: registration, credential login, token resolution, logout.
// Sits between HTTP handlers and domain repositories. Depends on domain interfaces, not concrete implementations.
package app

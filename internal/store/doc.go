// Package store defines the persistence interfaces and shared error types
// used by the application's services. Concrete implementations live under
// internal/platform.
package store

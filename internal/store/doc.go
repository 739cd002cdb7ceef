// Package store defines the persistence contract for generation sessions.
// Implementations live under internal/platform (memory and postgres) so the
// service layer stays independent of the storage technology.
package store

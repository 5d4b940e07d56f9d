// Package store defines the persistence interfaces and error taxonomy of
// the task mutation engine. Implementations live under platform/postgres.
package store

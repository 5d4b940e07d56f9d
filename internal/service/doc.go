// Package service orchestrates the task mutation engine: capacity checks,
// optimistic concurrency, cascades and batch policies, each inside one
// transaction per call.
package service

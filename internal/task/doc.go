// Package task provides the background task processing system: a durable
// task queue backed by the database, a worker pool that drains it, and the
// concrete task types (insight generation) the application runs on it.
package task

// Package rediscache holds the Redis-backed pieces of the notification
// pipeline: a read-through cache in front of the messaging identity store and
// the lease that keeps sweeps in separate processes from running at once.
package rediscache

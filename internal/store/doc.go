// Package store defines the persistence contracts of the notification
// pipeline. Implementations live under internal/platform; the pipeline only
// sees these interfaces and the sentinel errors declared here.
package store

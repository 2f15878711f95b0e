// Package domain defines the entities of the to-do service that the
// notification pipeline works with: tasks, the messaging identities of their
// owners, and the reminder text sent when a task falls due.
//
// Domain types carry their own validation and have no dependencies on storage
// or transport packages.
package domain

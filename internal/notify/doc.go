// Package notify implements the due-task notification pipeline.
//
// A Sweeper selects tasks that are past due, incomplete and not yet notified,
// and hands each one to a bounded WorkerPool through a JobQueue. Workers run
// the Dispatcher, which resolves the owner's messaging identity, marks the
// task as notified and only then delivers the reminder through a Sender.
// Marking before sending makes delivery at-most-once: a failed send is
// logged and never retried. A Scheduler runs the Sweeper on a fixed interval.
package notify

// Package mocks provides shared test doubles for the notification pipeline.
//
// Each mock records its calls and lets a test replace any method with a
// function field:
//
//	tasks := mocks.NewMockTaskStore(task)
//	sender := &mocks.MockSender{
//	    SendFn: func(ctx context.Context, id domain.MessagingIdentity, text string) error {
//	        return errors.New("endpoint down")
//	    },
//	}
//
// MockTaskStore keeps its tasks in memory and applies MarkNotificationSent
// under a mutex, so it honours the same at-most-once contract as the real
// stores and can be used in concurrency tests.
package mocks

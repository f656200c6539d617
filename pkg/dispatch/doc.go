// Package dispatch routes messages to providers and owns the retry and
// bulk machinery around delivery.
//
// Router performs a single delivery attempt: it marks the message
// processing, asks the provider registry for a provider, sends with a
// bounded timeout (5s by default) and settles the message as sent or
// failed. When no provider for the channel is available the attempt fails
// as retryable without contacting any sender.
//
// RetryScheduler re-enqueues failed messages on an exponential backoff,
// min(60s × 2^n, 1h) for retry n, as cancellable delayed tasks keyed by
// message id. Scheduler is the underlying timer table, also usable for
// future-scheduled messages.
//
// BulkDispatcher partitions a recipient list into batches (100 by
// default), processes each batch concurrently waiting for every outcome,
// and pauses at least 100ms between batches.
//
// Wiring order matters only in one place: the router and the retry
// scheduler reference each other, so NewRetryScheduler binds itself to the
// router it is given.
//
//	router, _ := dispatch.NewRouter(manager, registry)
//	retries, _ := dispatch.NewRetryScheduler(manager, router)
//	defer retries.Stop()
package dispatch

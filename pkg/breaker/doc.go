// Package breaker provides a client-side circuit breaker for callers that
// talk to a flaky downstream, such as a client reconnecting to a realtime
// endpoint or a sender pushing to an external provider.
//
// Unlike wrapper-style breakers, this one does not execute the operation
// for you. The caller asks permission, runs the operation however it
// likes, and reports the outcome:
//
//	b := breaker.New(breaker.Config{FailureThreshold: 3, Cooldown: 10 * time.Second})
//
//	if !b.CanAttempt() {
//		return ErrUnavailable
//	}
//	if err := dial(ctx); err != nil {
//		b.RecordFailure()
//		return err
//	}
//	b.RecordSuccess()
//
// The breaker starts closed. Consecutive failures reaching the threshold
// open it, rejecting attempts for the cooldown period. After the cooldown
// a single probe attempt is allowed; its success closes the breaker, its
// failure reopens it with a fresh cooldown.
package breaker

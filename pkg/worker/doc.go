// Package worker provides the asynchronous delivery loop for
// notifications on channels that real-time fan-out does not cover.
//
// The worker polls the notification storage on a fixed interval,
// fetches a bounded oldest-first batch of pending notifications per
// registered channel, and hands each to that channel's sender. A
// successful send marks the notification sent; a failed send counts one
// attempt and pushes the next attempt out by the configured backoff,
// until the attempt cap makes the failure permanent. Failures are
// isolated per item, so one bouncing email never stalls the batch.
//
// Usage:
//
//	w, err := worker.New(storage, worker.Config{
//	    PollInterval: 15 * time.Second,
//	    BatchSize:    25,
//	    MaxAttempts:  3,
//	    RetryBackoff: time.Minute,
//	})
//	if err != nil {
//	    return err
//	}
//	if err := w.RegisterSender(emailSender); err != nil {
//	    return err
//	}
//
//	g, ctx := errgroup.WithContext(ctx)
//	g.Go(w.Run(ctx))
package worker

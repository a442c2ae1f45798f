// Package email delivers email-channel notifications through a
// provider-agnostic EmailSender interface, with built-in support for
// Postmark and a logging sender for local development.
//
// # Architecture
//
// The package is built around two layers:
//   - EmailSender abstracts the email provider. PostmarkClient sends
//     real transactional emails; DevSender logs them instead.
//   - Sender adapts an EmailSender to the delivery worker's per-channel
//     sender contract, resolving recipient addresses through an
//     application-supplied AddressResolver.
//
// # Usage
//
// Wiring the email channel into a delivery worker:
//
//	import (
//	    "github.com/dmitrymomot/notifykit/pkg/email"
//	    "github.com/dmitrymomot/notifykit/pkg/worker"
//	)
//
//	mailer, err := email.NewPostmarkClient(email.Config{
//	    PostmarkServerToken:  "your-server-token",
//	    PostmarkAccountToken: "your-account-token",
//	    SenderEmail:          "noreply@example.com",
//	})
//	if err != nil {
//	    // Handle configuration error
//	}
//
//	sender, err := email.NewSender(mailer, userDirectory)
//	if err != nil {
//	    // Handle wiring error
//	}
//
//	w, err := worker.New(storage, worker.DefaultConfig())
//	if err != nil {
//	    // Handle wiring error
//	}
//	if err := w.RegisterSender(sender); err != nil {
//	    // Handle registration error
//	}
//
// In development, swap the mailer for a DevSender:
//
//	sender, err := email.NewSender(email.NewDevSender(nil), userDirectory)
package email

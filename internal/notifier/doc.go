// Package notifier turns pipeline entries into Telegram HTML messages and
// delivers them.
//
// # Delivery
//
// Each message gets exactly one attempt through a transport.Sender. Failures
// are logged and returned to the caller; nothing is queued or retried, so the
// caller decides whether the entry counts as delivered.
//
// # History
//
// For operator visibility, the service keeps a small in-memory history of
// recent delivery attempts.
package notifier

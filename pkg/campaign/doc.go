// Package campaign sends one composed message to a list of recipients.
//
// A Batch pairs a Compose (sender, subject and body) with a roster.Store. Processor.Run
// fetches the unsubscribed set once, then walks the store in order. Each recipient that is
// still pending and not unsubscribed is handed to the Dispatcher, and the outcome is
// written back to the store by row before the next recipient is visited. A failed
// delivery marks that row failed and the run continues.
//
// Rows that already carry a status are skipped, so running the same batch twice never
// delivers to a row twice. Reset the store to send again.
//
// Processor.SendSingle delivers the compose to one address without consulting the
// unsubscribed set or the store.
//
// Runner executes batch runs in the background, at most one per key.
package campaign

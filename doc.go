// Package bulkmail is the web layer of a small bulk-email composer.
//
// A user composes a message (sender, subject and HTML body), uploads a spreadsheet of recipients and sends the message to
// every pending row. Recipients on the remote unsubscribe list are skipped and
// every row ends up with a per-recipient status.
//
// This package re-exports the HTTP framework from internal: an App built on chi
// with htmx-aware rendering, server-side sessions, health endpoints and graceful
// shutdown. Domain logic lives in pkg/campaign, pkg/roster and pkg/subscription;
// HTTP handlers in handlers; the server entry point in cmd/bulkmail.
//
// # Application
//
//	app := bulkmail.New(
//	    bulkmail.WithCustomLogger(log),
//	    bulkmail.WithMiddleware(
//	        middlewares.RequestID(),
//	        middlewares.Logger(),
//	        middlewares.Recover(),
//	    ),
//	    bulkmail.WithSession(store),
//	    bulkmail.WithHandlers(
//	        handlers.NewComposer(runner),
//	        handlers.NewRecipients(runner, cfg.Recipients),
//	        handlers.NewSend(processor, runner, store),
//	        handlers.NewAPI(relay, subs),
//	    ),
//	    bulkmail.WithErrorHandler(handlers.ErrorHandler),
//	)
//
//	if err := app.Run(cfg.Address, bulkmail.Logger(log)); err != nil {
//	    log.Error("server stopped", "error", err)
//	}
//
// # Handlers
//
// Handlers implement Routes and receive their dependencies via constructors:
//
//	func (h *Composer) Routes(r bulkmail.Router) {
//	    r.GET("/", h.page)
//	    r.POST("/compose", h.save)
//	}
//
// Errors returned from a HandlerFunc go to the ErrorHandler. Return an
// HTTPError (ErrBadRequest, ErrConflict, ...) to choose the status code.
package bulkmail

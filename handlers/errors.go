package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/dmitrymomot/bulkmail"
	"github.com/dmitrymomot/bulkmail/middlewares"
	"github.com/dmitrymomot/bulkmail/pkg/campaign"
	"github.com/dmitrymomot/bulkmail/pkg/htmx"
	"github.com/dmitrymomot/bulkmail/pkg/storage"
	"github.com/dmitrymomot/bulkmail/views"
)

const apiPrefix = "/api/"

// ErrorHandler renders handler errors. API routes get a JSON body, htmx
// requests get the status banner and everything else an error page.
func ErrorHandler(c bulkmail.Context, err error) error {
	code, message := classify(err)
	if code >= http.StatusInternalServerError {
		c.LogError("request failed", "status", code, "error", err)
	}

	if strings.HasPrefix(c.Request().URL.Path, apiPrefix) {
		if code >= http.StatusInternalServerError {
			message = msgInternalError
		}
		return c.JSON(code, map[string]string{"error": message})
	}

	return c.RenderPartial(code,
		views.ErrorPage(code, message),
		views.StatusBanner(views.Failure(message)),
		htmx.WithRetarget("#status"),
		htmx.WithReswap(htmx.SwapOuterHTML),
	)
}

// NotFound renders the 404 page.
func NotFound(c bulkmail.Context) error {
	return ErrorHandler(c, bulkmail.ErrNotFound(http.StatusText(http.StatusNotFound)))
}

// MethodNotAllowed renders the 405 page.
func MethodNotAllowed(c bulkmail.Context) error {
	return ErrorHandler(c, bulkmail.NewHTTPError(http.StatusMethodNotAllowed, http.StatusText(http.StatusMethodNotAllowed)))
}

// classify maps an error to a status code and a message safe to show.
func classify(err error) (int, string) {
	var (
		validation *campaign.ValidationError
		file       *storage.FileValidationError
		coded      interface{ StatusCode() int }
	)

	switch {
	case errors.As(err, &validation):
		return http.StatusUnprocessableEntity, validation.Message
	case errors.As(err, &file):
		return http.StatusUnprocessableEntity, file.Message
	}

	if httpErr := bulkmail.AsHTTPError(err); httpErr != nil {
		if httpErr.Code >= http.StatusInternalServerError {
			return httpErr.Code, http.StatusText(httpErr.Code)
		}
		return httpErr.Code, httpErr.Message
	}

	if middlewares.IsTimeoutError(err) {
		return http.StatusGatewayTimeout, "The request took too long"
	}
	if errors.As(err, &coded) {
		return coded.StatusCode(), http.StatusText(coded.StatusCode())
	}

	return http.StatusInternalServerError, "Something went wrong, please try again"
}

package htmx

import "net/http"

// Redirect sends the client to targetURL.
// htmx requests get an HX-Redirect header with 200; others a regular redirect with status.
func Redirect(w http.ResponseWriter, r *http.Request, targetURL string, status int) {
	if IsHTMX(r) {
		w.Header().Set(HeaderHXRedirect, targetURL)
		w.WriteHeader(http.StatusOK)
		return
	}

	http.Redirect(w, r, targetURL, status)
}

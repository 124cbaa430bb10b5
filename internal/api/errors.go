package api

import (
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/talgya/us-states/internal/catalog"
	"github.com/talgya/us-states/internal/funfacts"
	"github.com/talgya/us-states/internal/states"
)

// inputError is a request body problem reported verbatim with a 400.
type inputError string

func (e inputError) Error() string { return string(e) }

const (
	msgFunFactsRequired = inputError("State fun facts value required")
	msgFunFactsArray    = inputError("State fun facts value must be an array")
	msgFunFactsStrings  = inputError("State fun facts value must be an array of strings")
	msgIndexRequired    = inputError("State fun fact index value required")
	msgIndexInteger     = inputError("State fun fact index value must be an integer")
	msgFunFactRequired  = inputError("State fun fact value required")
	msgInvalidBody      = inputError("Invalid JSON body")
)

// writeDomainError maps errors from validation, the resolver and the
// mutator onto responses. Anything unrecognised is a server error.
func writeDomainError(w http.ResponseWriter, r *http.Request, entry catalog.Entry, err error) {
	var input inputError
	switch {
	case errors.As(err, &input):
		writeMessage(w, http.StatusBadRequest, input.Error())
	case errors.Is(err, funfacts.ErrEmptyFunFacts):
		writeMessage(w, http.StatusBadRequest, msgFunFactsRequired.Error())
	case errors.Is(err, states.ErrPropertyRequired):
		writeMessage(w, http.StatusBadRequest, "State property is required")
	case errors.Is(err, states.ErrUnknownProperty):
		writeMessage(w, http.StatusNotFound, "Invalid state property")
	case errors.Is(err, funfacts.ErrNoFunFacts):
		writeMessage(w, http.StatusNotFound, fmt.Sprintf("No Fun Facts found for %s", entry.State))
	case errors.Is(err, funfacts.ErrNoFunFactAtIndex):
		writeMessage(w, http.StatusNotFound, fmt.Sprintf("No Fun Fact found at that index for %s", entry.State))
	default:
		writeServerError(w, r, err)
	}
}

// writeServerError logs err and answers 500 without leaking details.
func writeServerError(w http.ResponseWriter, r *http.Request, err error) {
	slog.Error("request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"request_id", w.Header().Get(requestIDHeader),
		"error", err,
	)
	writeMessage(w, http.StatusInternalServerError, "Internal server error")
}

const notFoundHTML = `<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>404 Not Found</title></head>
<body><h1>404 Not Found</h1><p>The requested resource does not exist.</p></body>
</html>
`

// handleNotFound answers unmatched routes in the format the client prefers:
// HTML, then JSON, then plain text.
func handleNotFound(w http.ResponseWriter, r *http.Request) {
	switch negotiate(r.Header.Get("Accept")) {
	case "html":
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(notFoundHTML))
	case "json":
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "404 Not Found"})
	default:
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("404 Not Found"))
	}
}

// negotiate returns "html", "json" or "text" for an Accept header.
func negotiate(accept string) string {
	if strings.TrimSpace(accept) == "" {
		return "html"
	}
	wantJSON := false
	for _, part := range strings.Split(accept, ",") {
		mt, _, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		switch {
		case mt == "text/html" || mt == "*/*" || mt == "text/*":
			return "html"
		case mt == "application/json" || strings.HasSuffix(mt, "+json") || mt == "application/*":
			wantJSON = true
		}
	}
	if wantJSON {
		return "json"
	}
	return "text"
}

package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
)

const maxBodyBytes = 1 << 20

// decodeBody reads a JSON object into dst. An empty body decodes as {}.
// On failure it writes a 400 and returns false.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeMessage(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return false
		}
		writeMessage(w, http.StatusBadRequest, msgInvalidBody.Error())
		return false
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return true
	}
	if err := json.Unmarshal(body, dst); err != nil {
		writeMessage(w, http.StatusBadRequest, msgInvalidBody.Error())
		return false
	}
	return true
}

// absent reports whether a raw field was omitted or null.
func absent(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// appendRequest is the body of POST /states/{state}/funfact.
type appendRequest struct {
	Funfacts json.RawMessage `json:"funfacts"`
}

func (req appendRequest) validate() ([]string, error) {
	// An empty string counts as missing, not as a non-array.
	if absent(req.Funfacts) || bytes.Equal(bytes.TrimSpace(req.Funfacts), []byte(`""`)) {
		return nil, msgFunFactsRequired
	}
	if bytes.TrimSpace(req.Funfacts)[0] != '[' {
		return nil, msgFunFactsArray
	}
	var facts []string
	if err := json.Unmarshal(req.Funfacts, &facts); err != nil {
		return nil, msgFunFactsStrings
	}
	if len(facts) == 0 {
		return nil, msgFunFactsRequired
	}
	return facts, nil
}

// updateRequest is the body of PATCH /states/{state}/funfact.
type updateRequest struct {
	Index   json.RawMessage `json:"index"`
	Funfact json.RawMessage `json:"funfact"`
}

func (req updateRequest) validate() (int, string, error) {
	index, err := parseIndex(req.Index)
	if err != nil {
		return 0, "", err
	}
	if absent(req.Funfact) {
		return 0, "", msgFunFactRequired
	}
	var fact string
	if err := json.Unmarshal(req.Funfact, &fact); err != nil || fact == "" {
		return 0, "", msgFunFactRequired
	}
	return index, fact, nil
}

// deleteRequest is the body of DELETE /states/{state}/funfact.
type deleteRequest struct {
	Index json.RawMessage `json:"index"`
}

func (req deleteRequest) validate() (int, error) {
	return parseIndex(req.Index)
}

// parseIndex accepts a JSON integer or a string holding one.
func parseIndex(raw json.RawMessage) (int, error) {
	if absent(raw) {
		return 0, msgIndexRequired
	}
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, msgIndexInteger
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, msgIndexRequired
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, msgIndexInteger
	}
	return n, nil
}

package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/mmynk/recitals/internal/apperr"
	"github.com/mmynk/recitals/internal/storage"
)

const (
	maxBodyBytes = 1 << 20

	defaultPageLimit = 20
	maxPageLimit     = 100

	msgMalformedBody     = "Malformed request body"
	msgInvalidPagination = "Invalid pagination parameters"
)

// readBody returns the request body, or nil when it is empty.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, apperr.InvalidRequest(msgMalformedBody)
	}
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, nil
	}
	return body, nil
}

// decodeJSON decodes the request body into dst. An empty body leaves dst
// untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	body, err := readBody(w, r)
	if err != nil || body == nil {
		return err
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return apperr.InvalidRequest(msgMalformedBody)
	}
	return nil
}

// decodeWrapped decodes a body of the form {"<key>": {...}} into dst. A
// bare object without that key is accepted as well.
func decodeWrapped(w http.ResponseWriter, r *http.Request, key string, dst any) error {
	body, err := readBody(w, r)
	if err != nil {
		return err
	}
	if body == nil {
		return apperr.InvalidRequest(msgMalformedBody)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return apperr.InvalidRequest(msgMalformedBody)
	}
	if inner, ok := fields[key]; ok && len(inner) > 0 && inner[0] == '{' {
		body = inner
	}

	if err := json.Unmarshal(body, dst); err != nil {
		return apperr.InvalidRequest(msgMalformedBody)
	}
	return nil
}

// pageParams reads offset and limit from the query string.
func pageParams(r *http.Request) (storage.Page, error) {
	page := storage.Page{Limit: defaultPageLimit}
	q := r.URL.Query()

	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return page, apperr.InvalidRequest(msgInvalidPagination)
		}
		page.Offset = n
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxPageLimit {
			return page, apperr.InvalidRequest(msgInvalidPagination)
		}
		page.Limit = n
	}
	return page, nil
}

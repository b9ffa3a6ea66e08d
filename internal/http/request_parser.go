// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for parsing and validating HTTP request data:
// request bodies in JSON or form encoding, table criteria and paging.

package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"budgetplanner/internal/core"
	"budgetplanner/internal/query"
	"budgetplanner/internal/window"
)

// maxBodyBytes caps request bodies; a transaction is a handful of short fields.
const maxBodyBytes = 64 << 10

// maxPageSize caps the page_size query parameter.
const maxPageSize = 100

// RequestBodyParser handles different content types for request body parsing.
// It supports both JSON objects and form-encoded data.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]any
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser creates a parser for the given request.
// It reads the body once and stores it for subsequent parsing.
func NewRequestBodyParser(w http.ResponseWriter, r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}

	p.body, p.err = io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	return p
}

// Parse attempts to parse the body as JSON or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	body := bytes.TrimSpace(p.body)
	if len(body) == 0 {
		p.formData = url.Values{}
		return nil
	}

	if body[0] == '{' || strings.HasPrefix(p.contentType, "application/json") {
		dec := json.NewDecoder(bytes.NewReader(body))
		dec.UseNumber()
		p.jsonData = make(map[string]any)
		if err := dec.Decode(&p.jsonData); err != nil {
			p.err = fmt.Errorf("decode JSON body: %w", err)
			return p.err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(string(body))
	return p.err
}

// Get returns a string value from the parsed data (JSON or form).
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return strings.TrimSpace(stringValue(val))
		}
	}
	if p.formData != nil {
		return strings.TrimSpace(p.formData.Get(key))
	}
	return ""
}

// Values returns the parsed fields as url.Values. Only keys present in the
// body are set, so callers can tell an absent field from an empty one.
func (p *RequestBodyParser) Values() url.Values {
	if p.jsonData == nil {
		if p.formData == nil {
			return url.Values{}
		}
		return p.formData
	}
	v := make(url.Values, len(p.jsonData))
	for key, val := range p.jsonData {
		v.Set(key, stringValue(val))
	}
	return v
}

// stringValue converts a decoded JSON value to string. Null becomes empty.
func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// ParseCriteria reads the table filters from query parameters: type,
// search, from and to. A missing type selects both.
func ParseCriteria(q url.Values) (query.Criteria, error) {
	c := query.Criteria{
		Type:   core.FilterBoth,
		Search: strings.TrimSpace(q.Get("search")),
		Start:  strings.TrimSpace(q.Get("from")),
		End:    strings.TrimSpace(q.Get("to")),
	}
	if v := q.Get("type"); strings.TrimSpace(v) != "" {
		f, err := core.ParseTypeFilter(v)
		if err != nil {
			return query.Criteria{}, err
		}
		c.Type = f
	}
	return c, nil
}

// ParsePaging reads page and page_size. Missing or invalid values fall back
// to page 1 and defaultSize; page_size is capped at maxPageSize.
func ParsePaging(q url.Values, defaultSize int) (pageSize, page int) {
	pageSize, page = defaultSize, 1
	if v, err := strconv.Atoi(strings.TrimSpace(q.Get("page_size"))); err == nil && v > 0 {
		pageSize = min(v, maxPageSize)
	}
	if v, err := strconv.Atoi(strings.TrimSpace(q.Get("page"))); err == nil && v > 0 {
		page = v
	}
	return pageSize, page
}

// ParseView reads the dashboard selectors range and type.
func ParseView(q url.Values, defaultRange window.Range) (window.Range, core.TypeFilter, error) {
	r := defaultRange
	if v := strings.TrimSpace(q.Get("range")); v != "" {
		r = window.ParseRange(v)
	}
	sel := core.FilterBoth
	if v := strings.TrimSpace(q.Get("type")); v != "" {
		f, err := core.ParseTypeFilter(v)
		if err != nil {
			return "", "", err
		}
		sel = f
	}
	return r, sel, nil
}

// isBodyTooLarge reports whether err came from the body size cap.
func isBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}

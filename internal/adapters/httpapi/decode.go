package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.trai.ch/estatedesk/internal/core/domain"
	"go.trai.ch/zerr"
)

// envelope is the paginated response shape. Only Items is consumed.
type envelope struct {
	Items      *[]domain.Entity `json:"items"`
	Total      int              `json:"total"`
	Page       int              `json:"page"`
	PageSize   int              `json:"page_size"`
	TotalPages int              `json:"total_pages"`
	HasNext    bool             `json:"has_next"`
	HasPrev    bool             `json:"has_prev"`
}

// decodeCollection accepts a bare array or an items envelope and returns the
// rows. Numbers are kept as json.Number. Null rows are dropped.
func decodeCollection(data []byte) ([]domain.Entity, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, zerr.Wrap(domain.ErrUnexpectedResponse, "empty response body")
	}

	var rows []domain.Entity
	switch trimmed[0] {
	case '[':
		if err := unmarshal(trimmed, &rows); err != nil {
			return nil, errors.Join(domain.ErrUnexpectedResponse, zerr.Wrap(err, "malformed collection"))
		}
	case '{':
		var env envelope
		if err := unmarshal(trimmed, &env); err != nil {
			return nil, errors.Join(domain.ErrUnexpectedResponse, zerr.Wrap(err, "malformed envelope"))
		}
		if env.Items == nil {
			return nil, zerr.Wrap(domain.ErrUnexpectedResponse, "object without items")
		}
		rows = *env.Items
	default:
		return nil, zerr.Wrap(domain.ErrUnexpectedResponse, "neither an array nor an object")
	}

	out := rows[:0]
	for _, row := range rows {
		if row != nil {
			out = append(out, row)
		}
	}
	return out, nil
}

func decodeEntity(data []byte, path string) (domain.Entity, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return domain.Entity{}, nil
	}
	var e domain.Entity
	if err := unmarshal(data, &e); err != nil {
		return nil, errors.Join(domain.ErrUnexpectedResponse, zerr.With(zerr.Wrap(err, "malformed record"), "path", path))
	}
	return e, nil
}

func unmarshal(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}

// referentialHints mark a 400 detail as a referential-integrity refusal.
var referentialHints = []string{"foreign key", "registros asociados", "violates", "referenc", "constraint"}

// statusError maps a non-2xx reply to the error taxonomy, carrying the
// backend's detail message when present.
func statusError(method, path string, status int, body []byte) error {
	detail := parseDetail(body)
	msg := detail
	if msg == "" {
		msg = fmt.Sprintf("backend replied %d %s", status, http.StatusText(status))
	}
	err := zerr.With(zerr.With(zerr.With(zerr.New(msg), "status", status), "path", path), "method", method)

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return errors.Join(domain.ErrUnauthorized, err)
	case status == http.StatusNotFound:
		return errors.Join(domain.ErrNotFound, err)
	case status == http.StatusConflict || status == http.StatusUnprocessableEntity:
		return errors.Join(domain.ErrConflict, err)
	case status == http.StatusBadRequest && isReferential(detail):
		return errors.Join(domain.ErrConflict, err)
	default:
		return err
	}
}

// parseDetail extracts {"detail": ...}. A list of validation entries is
// rendered one "loc: msg" per line.
func parseDetail(body []byte) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if json.Unmarshal(body, &payload) != nil || len(payload.Detail) == 0 {
		return ""
	}

	var s string
	if json.Unmarshal(payload.Detail, &s) == nil {
		return s
	}

	var items []struct {
		Loc []any  `json:"loc"`
		Msg string `json:"msg"`
	}
	if json.Unmarshal(payload.Detail, &items) == nil {
		lines := make([]string, 0, len(items))
		for _, it := range items {
			loc := make([]string, 0, len(it.Loc))
			for _, part := range it.Loc {
				loc = append(loc, fmt.Sprint(part))
			}
			lines = append(lines, strings.Join(loc, ".")+": "+it.Msg)
		}
		return strings.Join(lines, "\n")
	}
	return string(payload.Detail)
}

func isReferential(detail string) bool {
	lower := strings.ToLower(detail)
	for _, hint := range referentialHints {
		if strings.Contains(lower, hint) {
			return true
		}
	}
	return false
}

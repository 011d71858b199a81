package tasks

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

const maxBodyBytes = 1 << 20

var (
	errInvalidJSON = errors.New("invalid JSON")
	errEmptyBody   = errors.New("request must be JSON")
)

type createTaskRequest struct {
	Title       string
	Description string
}

// decodeObject reads the body as a JSON object keyed by field name so that
// missing fields can be told apart from zero values.
func decodeObject(r *http.Request) (map[string]json.RawMessage, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return nil, errInvalidJSON
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, errEmptyBody
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil || obj == nil {
		return nil, errInvalidJSON
	}
	return obj, nil
}

func parseCreate(obj map[string]json.RawMessage, maxTitleLen int) (createTaskRequest, []fieldError) {
	var (
		req  createTaskRequest
		errs []fieldError
	)

	if raw, ok := obj["title"]; !ok {
		errs = append(errs, fieldError{Field: "title", Message: "request must contain a title"})
	} else if title, ok := stringField(raw); !ok {
		errs = append(errs, fieldError{Field: "title", Message: "title must be a string"})
	} else {
		req.Title = title
		errs = append(errs, validateTitle(title, maxTitleLen)...)
	}

	if raw, ok := obj["description"]; ok {
		if desc, ok := stringField(raw); ok {
			req.Description = desc
		} else {
			errs = append(errs, fieldError{Field: "description", Message: "description must be a string"})
		}
	}
	return req, errs
}

func parsePatch(obj map[string]json.RawMessage, maxTitleLen int) (Patch, []fieldError) {
	var (
		p    Patch
		errs []fieldError
	)

	if raw, ok := obj["title"]; ok {
		if title, ok := stringField(raw); ok {
			p.Title = &title
			errs = append(errs, validateTitle(title, maxTitleLen)...)
		} else {
			errs = append(errs, fieldError{Field: "title", Message: "title must be a string"})
		}
	}
	if raw, ok := obj["description"]; ok {
		if desc, ok := stringField(raw); ok {
			p.Description = &desc
		} else {
			errs = append(errs, fieldError{Field: "description", Message: "description must be a string"})
		}
	}
	if raw, ok := obj["completed"]; ok {
		if done, ok := boolField(raw); ok {
			p.Completed = &done
		} else {
			errs = append(errs, fieldError{Field: "completed", Message: "completed must be a boolean"})
		}
	}
	return p, errs
}

// stringField rejects null and every non-string JSON value.
func stringField(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 || raw[0] != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

func boolField(raw json.RawMessage) (bool, bool) {
	switch string(raw) {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	return false, false
}

package tasks

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

const (
	WelcomeMessage = "Welcome to the To-Do List API!"
	maxTitleLen    = 200
)

type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type errResponse struct {
	Error   string       `json:"error"`
	Message string       `json:"message,omitempty"`
	Details []fieldError `json:"details,omitempty"`
}

type taskResponse struct {
	Task Task `json:"task"`
}

type listResponse struct {
	Tasks []Task `json:"tasks"`
}

type deleteResponse struct {
	Result bool `json:"result"`
}

type handler struct {
	repo   Repository
	logger *slog.Logger
}

func RegisterRoutes(r chi.Router, repo Repository, logger *slog.Logger) {
	h := handler{repo: repo, logger: logger}

	r.Get("/", welcome)
	r.Get("/tasks", h.listTasks())
	r.Post("/tasks", h.createTask())
	r.Get("/tasks/{id:[0-9]+}", h.getTask())
	r.Put("/tasks/{id:[0-9]+}", h.updateTask())
	r.Delete("/tasks/{id:[0-9]+}", h.deleteTask())
}

func welcome(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": WelcomeMessage})
}

func (h handler) listTasks() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tasks, err := h.repo.List(r.Context())
		if err != nil {
			h.unexpected(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, listResponse{Tasks: tasks})
	}
}

func (h handler) getTask() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := taskID(w, r)
		if !ok {
			return
		}
		t, err := h.repo.Get(r.Context(), id)
		if err != nil {
			h.storeError(w, r, id, err)
			return
		}
		writeJSON(w, http.StatusOK, taskResponse{Task: t})
	}
}

func (h handler) createTask() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		obj, err := decodeObject(r)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errResponse{Error: "invalid_json", Message: err.Error()})
			return
		}

		req, vErrs := parseCreate(obj, maxTitleLen)
		if len(vErrs) > 0 {
			badRequest(w, vErrs)
			return
		}

		t, err := h.repo.Create(r.Context(), req.Title, req.Description)
		if err != nil {
			h.storeError(w, r, 0, err)
			return
		}
		writeJSON(w, http.StatusCreated, taskResponse{Task: t})
	}
}

func (h handler) updateTask() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := taskID(w, r)
		if !ok {
			return
		}

		// an unknown id wins over a malformed body
		if _, err := h.repo.Get(r.Context(), id); err != nil {
			h.storeError(w, r, id, err)
			return
		}

		obj, err := decodeObject(r)
		if err == nil && len(obj) == 0 {
			err = errEmptyBody
		}
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errResponse{Error: "invalid_json", Message: err.Error()})
			return
		}

		p, vErrs := parsePatch(obj, maxTitleLen)
		if len(vErrs) > 0 {
			badRequest(w, vErrs)
			return
		}

		t, err := h.repo.Update(r.Context(), id, p)
		if err != nil {
			h.storeError(w, r, id, err)
			return
		}
		writeJSON(w, http.StatusOK, taskResponse{Task: t})
	}
}

func (h handler) deleteTask() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := taskID(w, r)
		if !ok {
			return
		}
		if err := h.repo.Delete(r.Context(), id); err != nil {
			h.storeError(w, r, id, err)
			return
		}
		writeJSON(w, http.StatusOK, deleteResponse{Result: true})
	}
}

// taskID parses the {id} segment. The route pattern only admits digits, so
// a failure here is an out-of-range id, which cannot exist.
func taskID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errResponse{
			Error:   "not_found",
			Message: fmt.Sprintf("Task with id %s not found", raw),
		})
		return 0, false
	}
	return id, true
}

func (h handler) storeError(w http.ResponseWriter, r *http.Request, id int64, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		writeJSON(w, http.StatusNotFound, errResponse{
			Error:   "not_found",
			Message: fmt.Sprintf("Task with id %d not found", id),
		})
	case errors.Is(err, ErrTitleRequired):
		badRequest(w, []fieldError{{Field: "title", Message: "title is required"}})
	default:
		h.unexpected(w, r, err)
	}
}

func (h handler) unexpected(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error("store_error",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("req_id", chimw.GetReqID(r.Context())),
		slog.String("error", err.Error()),
	)
	writeJSON(w, http.StatusInternalServerError, errResponse{Error: "unexpected_error"})
}

func badRequest(w http.ResponseWriter, details []fieldError) {
	writeJSON(w, http.StatusBadRequest, errResponse{
		Error:   "validation_error",
		Message: details[0].Message,
		Details: details,
	})
}

func validateTitle(title string, maxLen int) []fieldError {
	var errs []fieldError

	if strings.TrimSpace(title) == "" {
		errs = append(errs, fieldError{
			Field:   "title",
			Message: "title is required",
		})
	}

	if l := utf8.RuneCountInString(title); l > maxLen {
		errs = append(errs, fieldError{
			Field:   "title",
			Message: fmt.Sprintf("title must be at most %d characters", maxLen),
		})
	}

	return errs
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

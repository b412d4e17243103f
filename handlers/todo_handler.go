package handlers

import (
	"errors"
	"net/http"
	"strings"

	"todoapi/apperrors"
	"todoapi/models"
	"todoapi/repository"
)

// TodoHandler serves the caller's own todos. Every query is scoped to the
// caller, so another user's todo id is indistinguishable from a missing one.
type TodoHandler struct {
	Repo repository.TodoRepository
}

type todoFields struct {
	Title     *string `json:"title"`
	Completed *bool   `json:"completed"`
}

// todoRequest accepts {"todo": {...}} as well as the fields at top level.
type todoRequest struct {
	Todo *todoFields `json:"todo"`
	todoFields
}

func (req todoRequest) fields() todoFields {
	if req.Todo != nil {
		return *req.Todo
	}
	return req.todoFields
}

type todoResponse struct {
	Todo *models.Todo `json:"todo"`
}

type todosResponse struct {
	Todos []*models.Todo `json:"todos"`
}

func todoLookupError(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NotFound("todo not found")
	}
	return apperrors.Internal("todo store", err)
}

func decodeTodoPatch(w http.ResponseWriter, r *http.Request) (models.TodoPatch, error) {
	var req todoRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return models.TodoPatch{}, err
	}
	f := req.fields()
	patch := models.TodoPatch{Completed: f.Completed}
	if f.Title != nil {
		title := strings.TrimSpace(*f.Title)
		if title == "" {
			return patch, apperrors.Validation("title is required")
		}
		patch.Title = &title
	}
	return patch, nil
}

// List handles GET /api/todos
func (h *TodoHandler) List(w http.ResponseWriter, r *http.Request) {
	id, err := identity(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	todos, err := h.Repo.ListTodos(storeContext(r), repository.OwnedBy(id.UserID))
	if err != nil {
		writeError(w, r, apperrors.Internal("list todos", err))
		return
	}
	writeJSON(w, http.StatusOK, todosResponse{Todos: todos})
}

// Create handles POST /api/todos
func (h *TodoHandler) Create(w http.ResponseWriter, r *http.Request) {
	id, err := identity(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	patch, err := decodeTodoPatch(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if patch.Title == nil {
		writeError(w, r, apperrors.Validation("title is required"))
		return
	}

	todo := &models.Todo{UserID: id.UserID, Title: *patch.Title}
	if patch.Completed != nil {
		todo.Completed = *patch.Completed
	}
	if err := h.Repo.CreateTodo(storeContext(r), todo); err != nil {
		writeError(w, r, apperrors.Internal("create todo", err))
		return
	}
	writeJSON(w, http.StatusCreated, todoResponse{Todo: todo})
}

// Get handles GET /api/todos/{id}
func (h *TodoHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := identity(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	todoID, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	todo, err := h.Repo.GetTodo(storeContext(r), repository.OwnedBy(id.UserID), todoID)
	if err != nil {
		writeError(w, r, todoLookupError(err))
		return
	}
	writeJSON(w, http.StatusOK, todoResponse{Todo: todo})
}

// Update handles PUT /api/todos/{id}
func (h *TodoHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := identity(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	todoID, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	patch, err := decodeTodoPatch(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if patch.Empty() {
		writeError(w, r, apperrors.Validation("no fields to update"))
		return
	}

	todo, err := h.Repo.UpdateTodo(storeContext(r), repository.OwnedBy(id.UserID), todoID, patch)
	if err != nil {
		writeError(w, r, todoLookupError(err))
		return
	}
	writeJSON(w, http.StatusOK, todoResponse{Todo: todo})
}

// Delete handles DELETE /api/todos/{id}
func (h *TodoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := identity(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	todoID, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.Repo.DeleteTodo(storeContext(r), repository.OwnedBy(id.UserID), todoID); err != nil {
		writeError(w, r, todoLookupError(err))
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "todo deleted"})
}

package handlers

import (
	"net/http"
	"strconv"

	"todoapi/apperrors"
	"todoapi/auth"
	"todoapi/models"
	"todoapi/repository"
)

// AdminHandler serves the admin overview. Every endpoint checks the caller's
// role itself and bypasses todo ownership.
type AdminHandler struct {
	Users repository.UserRepository
	Todos repository.TodoRepository
}

type usersResponse struct {
	Users []*models.User `json:"users"`
}

// requireAdmin returns the caller if they hold the admin role.
func requireAdmin(r *http.Request) (auth.Identity, error) {
	id, err := identity(r)
	if err != nil {
		return id, err
	}
	if !id.IsAdmin() {
		return id, apperrors.Authorization("access denied")
	}
	return id, nil
}

// ListUsers handles GET /api/admin/users
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	if _, err := requireAdmin(r); err != nil {
		writeError(w, r, err)
		return
	}
	users, err := h.Users.ListUsers(storeContext(r))
	if err != nil {
		writeError(w, r, apperrors.Internal("list users", err))
		return
	}
	writeJSON(w, http.StatusOK, usersResponse{Users: users})
}

// GetUser handles GET /api/admin/users/{id}
func (h *AdminHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	if _, err := requireAdmin(r); err != nil {
		writeError(w, r, err)
		return
	}
	userID, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	user, err := h.Users.GetUserByID(storeContext(r), userID)
	if err != nil {
		writeError(w, r, userLookupError(err))
		return
	}
	writeJSON(w, http.StatusOK, userResponse{User: user})
}

// DeleteUser handles DELETE /api/admin/users/{id}
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	admin, err := requireAdmin(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	userID, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if userID == admin.UserID {
		writeError(w, r, apperrors.Validation("cannot delete your own account"))
		return
	}
	if err := h.Users.DeleteUser(storeContext(r), userID); err != nil {
		writeError(w, r, userLookupError(err))
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "user deleted"})
}

// ListTodos handles GET /api/admin/todos, optionally filtered by ?user_id=
func (h *AdminHandler) ListTodos(w http.ResponseWriter, r *http.Request) {
	if _, err := requireAdmin(r); err != nil {
		writeError(w, r, err)
		return
	}
	scope := repository.AllOwners()
	if raw := r.URL.Query().Get("user_id"); raw != "" {
		userID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || userID <= 0 {
			writeError(w, r, apperrors.Validation("invalid user_id"))
			return
		}
		scope = repository.OwnedBy(userID)
	}
	todos, err := h.Todos.ListTodos(storeContext(r), scope)
	if err != nil {
		writeError(w, r, apperrors.Internal("list todos", err))
		return
	}
	writeJSON(w, http.StatusOK, todosResponse{Todos: todos})
}

// GetTodo handles GET /api/admin/todos/{id}
func (h *AdminHandler) GetTodo(w http.ResponseWriter, r *http.Request) {
	if _, err := requireAdmin(r); err != nil {
		writeError(w, r, err)
		return
	}
	todoID, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	todo, err := h.Todos.GetTodo(storeContext(r), repository.AllOwners(), todoID)
	if err != nil {
		writeError(w, r, todoLookupError(err))
		return
	}
	writeJSON(w, http.StatusOK, todoResponse{Todo: todo})
}

// DeleteTodo handles DELETE /api/admin/todos/{id}
func (h *AdminHandler) DeleteTodo(w http.ResponseWriter, r *http.Request) {
	if _, err := requireAdmin(r); err != nil {
		writeError(w, r, err)
		return
	}
	todoID, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.Todos.DeleteTodo(storeContext(r), repository.AllOwners(), todoID); err != nil {
		writeError(w, r, todoLookupError(err))
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "todo deleted"})
}

// Stats handles GET /api/admin/stats
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	if _, err := requireAdmin(r); err != nil {
		writeError(w, r, err)
		return
	}
	var stats models.Stats
	var err error
	if stats.Users, stats.Admins, err = h.Users.CountUsers(storeContext(r)); err != nil {
		writeError(w, r, apperrors.Internal("count users", err))
		return
	}
	if stats.Todos, stats.Completed, err = h.Todos.CountTodos(storeContext(r)); err != nil {
		writeError(w, r, apperrors.Internal("count todos", err))
		return
	}
	stats.Pending = stats.Todos - stats.Completed
	writeJSON(w, http.StatusOK, stats)
}


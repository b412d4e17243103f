package routes

import (
	"net/http"

	"todoapi/auth"
	"todoapi/handlers"
)

type Handlers struct {
	Auth  *handlers.AuthHandler
	Users *handlers.UserHandler
	Todos *handlers.TodoHandler
	Admin *handlers.AdminHandler
}

// SetupRoutes builds the API handler. Routes under /api/auth and the health
// check are public; everything else passes through the bearer token check.
func SetupRoutes(h Handlers, verifier auth.Verifier, allowedOrigin string) http.Handler {
	mux := http.NewServeMux()
	protect := auth.Middleware(verifier)
	secured := func(fn http.HandlerFunc) http.Handler { return protect(fn) }

	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	// Auth routes
	mux.HandleFunc("POST /api/auth/register", h.Auth.Register)
	mux.HandleFunc("POST /api/auth/login", h.Auth.Login)

	// Profile routes
	mux.Handle("GET /api/users/me", secured(h.Users.Me))
	mux.Handle("PUT /api/users/me", secured(h.Users.UpdateMe))
	mux.Handle("POST /api/users/me/change-password", secured(h.Users.ChangePassword))

	// Todo routes
	mux.Handle("GET /api/todos", secured(h.Todos.List))
	mux.Handle("POST /api/todos", secured(h.Todos.Create))
	mux.Handle("GET /api/todos/{id}", secured(h.Todos.Get))
	mux.Handle("PUT /api/todos/{id}", secured(h.Todos.Update))
	mux.Handle("DELETE /api/todos/{id}", secured(h.Todos.Delete))

	// Admin routes
	mux.Handle("GET /api/admin/users", secured(h.Admin.ListUsers))
	mux.Handle("GET /api/admin/users/{id}", secured(h.Admin.GetUser))
	mux.Handle("DELETE /api/admin/users/{id}", secured(h.Admin.DeleteUser))
	mux.Handle("GET /api/admin/todos", secured(h.Admin.ListTodos))
	mux.Handle("GET /api/admin/todos/{id}", secured(h.Admin.GetTodo))
	mux.Handle("DELETE /api/admin/todos/{id}", secured(h.Admin.DeleteTodo))
	mux.Handle("GET /api/admin/stats", secured(h.Admin.Stats))

	return handlers.RecoverWrapper(withRequestLog(withCORS(allowedOrigin, mux)))
}

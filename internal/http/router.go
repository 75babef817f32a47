package http

import (
	"net/http"
	"strings"
)

// RouterConfig wires the handlers and middleware chain into the mux. The
// PublicMiddleware chain wraps everything; SessionMiddleware additionally
// guards every route except login and signup.
type RouterConfig struct {
	Auth              *AuthHandler
	Users             *UserHandler
	Tasks             *TaskHandler
	Assignments       *AssignmentHandler
	Schedule          *ScheduleHandler
	Export            *ExportHandler
	PublicMiddleware  []func(http.Handler) http.Handler
	SessionMiddleware func(http.Handler) http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	auth := func(h http.Handler) http.Handler {
		if cfg.SessionMiddleware == nil {
			return h
		}
		return cfg.SessionMiddleware(h)
	}
	authFunc := func(h http.HandlerFunc) http.Handler { return auth(h) }

	if cfg.Auth != nil {
		mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Auth.Login(w, r)
		})
		mux.HandleFunc("/signup", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Auth.Signup(w, r)
		})
		mux.Handle("/logout", authFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Auth.Logout(w, r)
		}))
		mux.Handle("/me", authFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Auth.Me(w, r)
		}))
	}

	if cfg.Users != nil {
		mux.Handle("/users", authFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Users.List(w, r)
			case http.MethodPost:
				cfg.Users.Create(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		}))
		mux.Handle("/users/", authFunc(func(w http.ResponseWriter, r *http.Request) {
			id, action := splitResourcePath(r.URL.Path, "/users/")
			if id == "" {
				http.NotFound(w, r)
				return
			}
			r = r.WithContext(ContextWithResourceID(r.Context(), id))

			switch action {
			case "":
				switch r.Method {
				case http.MethodPut:
					cfg.Users.Update(w, r)
				case http.MethodDelete:
					cfg.Users.Delete(w, r)
				default:
					methodNotAllowed(w, http.MethodPut, http.MethodDelete)
				}
			case "approve":
				if r.Method != http.MethodPost {
					methodNotAllowed(w, http.MethodPost)
					return
				}
				cfg.Users.Approve(w, r)
			case "deny":
				if r.Method != http.MethodPost {
					methodNotAllowed(w, http.MethodPost)
					return
				}
				cfg.Users.Deny(w, r)
			case "assignments":
				if cfg.Assignments == nil {
					http.NotFound(w, r)
					return
				}
				if r.Method != http.MethodGet {
					methodNotAllowed(w, http.MethodGet)
					return
				}
				cfg.Assignments.ListForEmployee(w, r)
			default:
				http.NotFound(w, r)
			}
		}))
	}

	if cfg.Tasks != nil {
		mux.Handle("/tasks", authFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Tasks.List(w, r)
			case http.MethodPost:
				cfg.Tasks.Create(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		}))
		mux.Handle("/tasks/", authFunc(func(w http.ResponseWriter, r *http.Request) {
			id, action := splitResourcePath(r.URL.Path, "/tasks/")
			if id == "" || action != "" {
				http.NotFound(w, r)
				return
			}
			r = r.WithContext(ContextWithResourceID(r.Context(), id))
			switch r.Method {
			case http.MethodPut:
				cfg.Tasks.Update(w, r)
			case http.MethodDelete:
				cfg.Tasks.Delete(w, r)
			default:
				methodNotAllowed(w, http.MethodPut, http.MethodDelete)
			}
		}))
	}

	if cfg.Assignments != nil {
		mux.Handle("/assignments", authFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Assignments.Create(w, r)
		}))
		mux.Handle("/assignments/sheets", authFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Assignments.Sheets(w, r)
		}))
		mux.Handle("/assignments/", authFunc(func(w http.ResponseWriter, r *http.Request) {
			id, action := splitResourcePath(r.URL.Path, "/assignments/")
			if id == "" {
				http.NotFound(w, r)
				return
			}
			r = r.WithContext(ContextWithResourceID(r.Context(), id))

			switch action {
			case "":
				if r.Method != http.MethodDelete {
					methodNotAllowed(w, http.MethodDelete)
					return
				}
				cfg.Assignments.Delete(w, r)
			case "status":
				if r.Method != http.MethodPut {
					methodNotAllowed(w, http.MethodPut)
					return
				}
				cfg.Assignments.SetStatus(w, r)
			default:
				http.NotFound(w, r)
			}
		}))
	}

	if cfg.Schedule != nil {
		mux.Handle("/shifts", authFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Schedule.ListShifts(w, r)
			case http.MethodPost:
				cfg.Schedule.CreateShift(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		}))
		mux.Handle("/shifts/", authFunc(func(w http.ResponseWriter, r *http.Request) {
			id, action := splitResourcePath(r.URL.Path, "/shifts/")
			if id == "" {
				http.NotFound(w, r)
				return
			}
			r = r.WithContext(ContextWithResourceID(r.Context(), id))

			switch action {
			case "":
				switch r.Method {
				case http.MethodPut:
					cfg.Schedule.UpdateShift(w, r)
				case http.MethodDelete:
					cfg.Schedule.DeleteShift(w, r)
				default:
					methodNotAllowed(w, http.MethodPut, http.MethodDelete)
				}
			case "window":
				if r.Method != http.MethodPut {
					methodNotAllowed(w, http.MethodPut)
					return
				}
				cfg.Schedule.MoveShift(w, r)
			default:
				http.NotFound(w, r)
			}
		}))
		mux.Handle("/templates", authFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Schedule.ListTemplates(w, r)
		}))
		mux.Handle("/templates/apply", authFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Schedule.ApplyTemplate(w, r)
		}))
	}

	if cfg.Export != nil {
		mux.Handle("/export/assignment-sheets.pdf", authFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Export.AssignmentSheetsPDF(w, r)
		}))
		mux.Handle("/export/assignment-sheets/share", authFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Export.ShareAssignmentSheets(w, r)
		}))
	}

	var handler http.Handler = mux
	for i := len(cfg.PublicMiddleware) - 1; i >= 0; i-- {
		if cfg.PublicMiddleware[i] != nil {
			handler = cfg.PublicMiddleware[i](handler)
		}
	}

	return handler
}

// splitResourcePath splits "/users/{id}/approve" style paths into the id and
// the trailing action segment.
func splitResourcePath(path, prefix string) (id, action string) {
	rest := strings.TrimPrefix(path, prefix)
	if rest == "" {
		return "", ""
	}
	parts := strings.SplitN(rest, "/", 2)
	id = parts[0]
	if len(parts) == 2 {
		action = strings.Trim(parts[1], "/")
	}
	return id, action
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}

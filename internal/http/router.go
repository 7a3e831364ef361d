package http

import (
	"net/http"
	"strings"
)

// RouterConfig wires the handlers and middleware into the HTTP surface.
type RouterConfig struct {
	API   *APIHandler
	Pages *PageHandler
	Admin *AdminHandler
	// Guard protects the dashboard routes; typically RequireAdmin.
	Guard      func(http.Handler) http.Handler
	Middleware []func(http.Handler) http.Handler
}

// NewRouter assembles the public and admin routes.
func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	guard := cfg.Guard
	if guard == nil {
		guard = func(next http.Handler) http.Handler { return next }
	}

	if cfg.Pages != nil {
		mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/" {
				http.NotFound(w, r)
				return
			}
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Pages.Index(w, r)
		})

		mux.HandleFunc("/cancelar/", func(w http.ResponseWriter, r *http.Request) {
			token := strings.TrimPrefix(r.URL.Path, "/cancelar/")
			if token == "" || strings.Contains(token, "/") {
				http.NotFound(w, r)
				return
			}
			switch r.Method {
			case http.MethodGet:
				cfg.Pages.CancelConfirm(w, r, token)
			case http.MethodPost:
				cfg.Pages.CancelSubmit(w, r, token)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})
	}

	if cfg.API != nil {
		mux.HandleFunc("/api/rooms", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.API.ListRooms(w, r)
		})

		mux.HandleFunc("/api/bookings", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.API.ListBookings(w, r)
			case http.MethodPost:
				cfg.API.CreateBooking(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})
	}

	if cfg.Admin != nil {
		mux.HandleFunc("/admin/login", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Admin.LoginForm(w, r)
			case http.MethodPost:
				cfg.Admin.Login(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})

		mux.HandleFunc("/admin/logout", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Admin.Logout(w, r)
		})

		mux.Handle("/admin", guard(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Admin.Dashboard(w, r)
		})))

		mux.Handle("/admin/bookings/new", guard(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Admin.NewBookingForm(w, r)
			case http.MethodPost:
				cfg.Admin.CreateBooking(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})))

		mux.Handle("/admin/bookings/", guard(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rest := strings.TrimPrefix(r.URL.Path, "/admin/bookings/")
			id, action, found := strings.Cut(rest, "/")
			if !found || id == "" {
				http.NotFound(w, r)
				return
			}
			switch action {
			case "edit":
				switch r.Method {
				case http.MethodGet:
					cfg.Admin.EditBookingForm(w, r, id)
				case http.MethodPost:
					cfg.Admin.UpdateBooking(w, r, id)
				default:
					methodNotAllowed(w, http.MethodGet, http.MethodPost)
				}
			case "delete":
				if r.Method != http.MethodPost {
					methodNotAllowed(w, http.MethodPost)
					return
				}
				cfg.Admin.DeleteBooking(w, r, id)
			default:
				http.NotFound(w, r)
			}
		})))
	}

	var handler http.Handler = mux
	for i := len(cfg.Middleware) - 1; i >= 0; i-- {
		if cfg.Middleware[i] != nil {
			handler = cfg.Middleware[i](handler)
		}
	}

	return handler
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}

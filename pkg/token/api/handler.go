package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/jinzhu/copier"

	"github.com/tendant/simple-token/pkg/credential"
	tokenerrors "github.com/tendant/simple-token/pkg/errors"
	"github.com/tendant/simple-token/pkg/token"
)

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

type TokenResponse struct {
	UserID    int64      `json:"userid"`
	Token     string     `json:"token"`
	ExpiresAt *time.Time `json:"expiresat"`
}

type FieldResponse struct {
	Key     string `json:"key"`
	Label   string `json:"label"`
	Custom  bool   `json:"custom"`
	Enabled bool   `json:"enabled"`
}

type ServiceResponse struct {
	ID              int64  `json:"id"`
	Shortname       string `json:"shortname"`
	Name            string `json:"name"`
	Enabled         bool   `json:"enabled"`
	RestrictedUsers bool   `json:"restricted_users"`
	TokenEnabled    bool   `json:"token_enabled"`
}

// Handler serves the token endpoints
type Handler struct {
	service *token.Service
}

func NewHandler(service *token.Service) *Handler {
	return &Handler{service: service}
}

// Routes returns a router with the real client address resolved from proxy headers
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	h.RegisterRoutes(r)
	return r
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.GetToken)
	r.Post("/", h.GetToken)
	r.Get("/fields", h.ListFields)
	r.Get("/services", h.ListServices)
}

// GetToken handles GET and POST /. GET reads idtype, idvalue and service from
// the query string; POST accepts a JSON body or a form.
func (h *Handler) GetToken(w http.ResponseWriter, r *http.Request) {
	req, err := readRequest(r)
	if err != nil {
		slog.Info("Failed to decode token request", "error", err)
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: "Invalid request body", Code: string(tokenerrors.ErrCodeInvalidInput)})
		return
	}

	ctx := credential.WithRemoteAddr(r.Context(), r.RemoteAddr)
	resp, err := h.service.GetToken(ctx, req.IDType, req.IDValue, req.Service)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	var out TokenResponse
	if err := copier.Copy(&out, &resp); err != nil {
		h.renderError(w, r, tokenerrors.InternalWrap(err, "failed to build response"))
		return
	}
	render.Status(r, http.StatusOK)
	render.JSON(w, r, out)
}

func readRequest(r *http.Request) (token.Request, error) {
	var req token.Request
	if r.Method == http.MethodPost && render.GetRequestContentType(r) == render.ContentTypeJSON {
		err := json.NewDecoder(r.Body).Decode(&req)
		return req, err
	}
	if err := r.ParseForm(); err != nil {
		return req, err
	}
	req.IDType = r.Form.Get("idtype")
	req.IDValue = r.Form.Get("idvalue")
	req.Service = r.Form.Get("service")
	return req, nil
}

// ListFields handles GET /fields
func (h *Handler) ListFields(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListFields(r.Context())
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	out := make([]FieldResponse, 0, len(list))
	if err := copier.Copy(&out, &list); err != nil {
		h.renderError(w, r, tokenerrors.InternalWrap(err, "failed to build response"))
		return
	}
	render.Status(r, http.StatusOK)
	render.JSON(w, r, out)
}

// ListServices handles GET /services
func (h *Handler) ListServices(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListServices(r.Context())
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	out := make([]ServiceResponse, 0, len(list))
	for _, st := range list {
		var item ServiceResponse
		if err := copier.Copy(&item, &st.Service); err != nil {
			h.renderError(w, r, tokenerrors.InternalWrap(err, "failed to build response"))
			return
		}
		item.TokenEnabled = st.TokenEnabled
		out = append(out, item)
	}
	render.Status(r, http.StatusOK)
	render.JSON(w, r, out)
}

func (h *Handler) renderError(w http.ResponseWriter, r *http.Request, err error) {
	status := tokenerrors.HTTPStatus(err)
	code := tokenerrors.GetCode(err)
	message := err.Error()

	if status == http.StatusInternalServerError {
		slog.Error("Token request failed", "path", r.URL.Path, "error", err)
		message = "An internal error occurred"
	} else {
		var e *tokenerrors.Error
		if errors.As(err, &e) {
			message = e.Message
		}
	}

	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{Error: message, Code: string(code)})
}

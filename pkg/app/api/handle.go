package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/render"
	"github.com/tendant/idm-portal/pkg/app"
	"github.com/tendant/idm-portal/pkg/client"
	"github.com/tendant/idm-portal/pkg/errors"
)

var now = func() time.Time { return time.Now().UTC() }

// Handle implements ServerInterface over the app service.
type Handle struct {
	appService *app.Service
	source     string
}

type Option func(*Handle)

// WithSource sets the source tag appended to SPA login links.
func WithSource(source string) Option {
	return func(h *Handle) {
		h.source = source
	}
}

func NewHandle(appService *app.Service, opts ...Option) *Handle {
	h := &Handle{
		appService: appService,
		source:     "portal",
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ListApps handles GET /
func (h *Handle) ListApps(w http.ResponseWriter, r *http.Request, params ListAppsParams) *Response {
	var t app.Type
	if params.Type != nil && *params.Type != "" {
		parsed, ok := app.ParseType(*params.Type)
		if !ok {
			return errorResponse(errors.InvalidInput("type", "must be Spa or Api"))
		}
		t = parsed
	}

	apps, err := h.appService.Fetch(r.Context(), t)
	if err != nil {
		return errorResponse(err)
	}
	return jsonResponse(http.StatusOK, toViews(apps))
}

// CreateSpa handles POST /spa
func (h *Handle) CreateSpa(w http.ResponseWriter, r *http.Request) *Response {
	ctx := r.Context()
	actor, resp := actorOf(r)
	if resp != nil {
		return resp
	}

	var req AppRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		return errorResponse(errors.InvalidInput("body", "invalid JSON"))
	}
	if err := ValidateAppRequest(&req, app.TypeSpa); err != nil {
		return errorResponse(err)
	}
	if err := h.appService.ValidateClientID(ctx, req.ClientID, 0); err != nil {
		return errorResponse(err)
	}
	apis, err := h.resolveApis(r, req.Apis)
	if err != nil {
		return errorResponse(err)
	}

	a := &app.App{CreatedBy: actor.UserId}
	toApp(req, a)
	if err := h.appService.CreateSpa(ctx, a, apis); err != nil {
		return errorResponse(err)
	}
	return jsonResponse(http.StatusCreated, toView(a, ""))
}

// CreateApi handles POST /api
func (h *Handle) CreateApi(w http.ResponseWriter, r *http.Request) *Response {
	ctx := r.Context()
	actor, resp := actorOf(r)
	if resp != nil {
		return resp
	}

	var req AppRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		return errorResponse(errors.InvalidInput("body", "invalid JSON"))
	}
	if err := ValidateAppRequest(&req, app.TypeApi); err != nil {
		return errorResponse(err)
	}
	if err := h.appService.ValidateClientID(ctx, req.ClientID, 0); err != nil {
		return errorResponse(err)
	}

	a := &app.App{CreatedBy: actor.UserId}
	toApp(req, a)
	if err := h.appService.CreateApi(ctx, a); err != nil {
		return errorResponse(err)
	}
	return h.viewWithSecret(http.StatusCreated, a)
}

// GetApp handles GET /{id}
func (h *Handle) GetApp(w http.ResponseWriter, r *http.Request, id int) *Response {
	a, resp := h.load(r, id)
	if resp != nil {
		return resp
	}
	return h.viewWithSecret(http.StatusOK, a)
}

// UpdateApp handles PUT /{id}. The client id cannot change.
func (h *Handle) UpdateApp(w http.ResponseWriter, r *http.Request, id int) *Response {
	ctx := r.Context()
	actor, resp := actorOf(r)
	if resp != nil {
		return resp
	}
	a, resp := h.load(r, id)
	if resp != nil {
		return resp
	}

	var req AppRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		return errorResponse(errors.InvalidInput("body", "invalid JSON"))
	}
	if err := ValidateAppRequest(&req, a.Type); err != nil {
		return errorResponse(err)
	}
	if req.ClientID != a.ClientID {
		return errorResponse(errors.InvalidInput("client_id", "cannot be changed"))
	}

	toApp(req, a)
	a.SetUpdated(actor.UserId, now())

	if a.Type == app.TypeSpa {
		apis, err := h.resolveApis(r, req.Apis)
		if err != nil {
			return errorResponse(err)
		}
		if err := h.appService.UpdateSpa(ctx, a, apis); err != nil {
			return errorResponse(err)
		}
		return jsonResponse(http.StatusOK, toView(a, ""))
	}

	if err := h.appService.UpdateApi(ctx, a); err != nil {
		return errorResponse(err)
	}
	return h.viewWithSecret(http.StatusOK, a)
}

// DeleteApp handles DELETE /{id}
func (h *Handle) DeleteApp(w http.ResponseWriter, r *http.Request, id int) *Response {
	actor, resp := actorOf(r)
	if resp != nil {
		return resp
	}
	a, resp := h.load(r, id)
	if resp != nil {
		return resp
	}

	if err := h.appService.Remove(r.Context(), a, actor.UserId); err != nil {
		return errorResponse(err)
	}
	return &Response{Code: http.StatusNoContent}
}

// GetAppApis handles GET /{id}/apis
func (h *Handle) GetAppApis(w http.ResponseWriter, r *http.Request, id int) *Response {
	a, resp := h.load(r, id)
	if resp != nil {
		return resp
	}
	if a.Type != app.TypeSpa {
		return errorResponse(errors.InvalidInput("id", "not an SPA"))
	}

	apis, err := h.appService.GetPermissionApis(r.Context(), a, nil)
	if err != nil {
		return errorResponse(err)
	}
	return jsonResponse(http.StatusOK, toViews(apis))
}

// ResetSecret handles POST /{id}/reset-secret
func (h *Handle) ResetSecret(w http.ResponseWriter, r *http.Request, id int) *Response {
	actor, resp := actorOf(r)
	if resp != nil {
		return resp
	}
	a, resp := h.load(r, id)
	if resp != nil {
		return resp
	}
	if a.Type != app.TypeApi {
		return errorResponse(errors.InvalidInput("id", "only API apps have a secret"))
	}

	a.SetUpdated(actor.UserId, now())
	if err := h.appService.ResetClientSecret(r.Context(), a); err != nil {
		return errorResponse(err)
	}
	slog.Info("client secret reset", "client_id", a.ClientID, "actor", actor.UserId)
	return h.viewWithSecret(http.StatusOK, a)
}

// ValidateSecret handles GET /{id}/validate-secret
func (h *Handle) ValidateSecret(w http.ResponseWriter, r *http.Request, id int) *Response {
	a, resp := h.load(r, id)
	if resp != nil {
		return resp
	}

	valid, err := h.appService.ValidateClientSecret(r.Context(), a)
	if err != nil {
		return errorResponse(err)
	}
	return jsonResponse(http.StatusOK, ValidateSecretResponse{Valid: valid})
}

// ListMyApps lists the SPAs the current user may open, linked through their
// login entry point.
func (h *Handle) ListMyApps(w http.ResponseWriter, r *http.Request) *Response {
	actor, resp := actorOf(r)
	if resp != nil {
		return resp
	}

	spas, err := h.appService.Fetch(r.Context(), app.TypeSpa)
	if err != nil {
		return errorResponse(err)
	}

	views := []AppView{}
	for i := range spas {
		a := &spas[i]
		if !a.VisibleTo(actor.Roles) {
			continue
		}
		view := toView(a, "")
		view.URL = a.LoginURL(h.source)
		views = append(views, view)
	}
	return jsonResponse(http.StatusOK, views)
}

// MyAppsHandler serves ListMyApps at GET /apps.
func MyAppsHandler(h *Handle) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respond(w, r, h.ListMyApps(w, r))
	}
}

func (h *Handle) load(r *http.Request, id int) (*app.App, *Response) {
	a, err := h.appService.GetByID(r.Context(), id)
	if err != nil {
		return nil, errorResponse(err)
	}
	if a == nil {
		return nil, errorResponse(errors.NotFound("app", strconv.Itoa(id)))
	}
	return a, nil
}

func (h *Handle) resolveApis(r *http.Request, clientIDs []string) ([]app.App, error) {
	apis := make([]app.App, 0, len(clientIDs))
	for _, clientID := range clientIDs {
		api, err := h.appService.FindByClientID(r.Context(), clientID)
		if err != nil {
			return nil, err
		}
		if api == nil || api.Type != app.TypeApi {
			return nil, errors.ValidationFailed(map[string]interface{}{"apis": "unknown api: " + clientID})
		}
		apis = append(apis, *api)
	}
	return apis, nil
}

func (h *Handle) viewWithSecret(code int, a *app.App) *Response {
	secret, err := h.appService.GetDecryptClientSecret(a)
	if err != nil {
		return errorResponse(err)
	}
	return jsonResponse(code, toView(a, secret))
}

func actorOf(r *http.Request) (*client.AuthUser, *Response) {
	actor, ok := client.GetAuthUser(r.Context())
	if !ok {
		return nil, errorResponse(errors.Unauthorized("sign in required"))
	}
	return actor, nil
}

func errorResponse(err error) *Response {
	code := errors.GetCode(err)
	status := errors.MapErrorCodeToHTTPStatus(code)
	body := ErrorResponse{
		Code:    string(code),
		Message: "internal error",
		Details: errors.GetDetails(err),
	}

	if msg := errors.GetMessage(err); msg != "" {
		body.Message = msg
	}
	if status >= http.StatusInternalServerError {
		slog.Error("app request failed", "code", code, "error", err)
		body.Details = nil
	}
	return jsonResponse(status, body)
}

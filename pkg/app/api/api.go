package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/discord-gophers/goapi-gen/runtime"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

// Response is a common response struct for all the API calls.
// A Response object may be instantiated via functions for specific operation responses.
type Response struct {
	body        interface{}
	Code        int
	contentType string
}

// Render implements the render.Renderer interface. It sets the Content-Type header
// and status code based on the response definition.
func (resp *Response) Render(w http.ResponseWriter, r *http.Request) error {
	w.Header().Set("Content-Type", resp.contentType)
	render.Status(r, resp.Code)
	return nil
}

// MarshalJSON implements the json.Marshaler interface.
// This is used to only marshal the body of the response.
func (resp *Response) MarshalJSON() ([]byte, error) {
	return json.Marshal(resp.body)
}

func jsonResponse(code int, body interface{}) *Response {
	return &Response{
		body:        body,
		Code:        code,
		contentType: "application/json",
	}
}

// ServerInterface represents all server handlers.
type ServerInterface interface {
	// (GET /)
	ListApps(w http.ResponseWriter, r *http.Request, params ListAppsParams) *Response
	// (POST /spa)
	CreateSpa(w http.ResponseWriter, r *http.Request) *Response
	// (POST /api)
	CreateApi(w http.ResponseWriter, r *http.Request) *Response
	// (GET /{id})
	GetApp(w http.ResponseWriter, r *http.Request, id int) *Response
	// (PUT /{id})
	UpdateApp(w http.ResponseWriter, r *http.Request, id int) *Response
	// (DELETE /{id})
	DeleteApp(w http.ResponseWriter, r *http.Request, id int) *Response
	// (GET /{id}/apis)
	GetAppApis(w http.ResponseWriter, r *http.Request, id int) *Response
	// (POST /{id}/reset-secret)
	ResetSecret(w http.ResponseWriter, r *http.Request, id int) *Response
	// (GET /{id}/validate-secret)
	ValidateSecret(w http.ResponseWriter, r *http.Request, id int) *Response
}

// ListAppsParams defines parameters for ListApps.
type ListAppsParams struct {
	Type *string `json:"type,omitempty"`
}

// ServerInterfaceWrapper converts contexts to parameters.
type ServerInterfaceWrapper struct {
	Handler          ServerInterface
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

func (siw *ServerInterfaceWrapper) ListApps(w http.ResponseWriter, r *http.Request) {
	var params ListAppsParams
	if err := runtime.BindQueryParameter("form", true, false, "type", r.URL.Query(), &params.Type); err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "type", Err: err})
		return
	}
	respond(w, r, siw.Handler.ListApps(w, r, params))
}

func (siw *ServerInterfaceWrapper) CreateSpa(w http.ResponseWriter, r *http.Request) {
	respond(w, r, siw.Handler.CreateSpa(w, r))
}

func (siw *ServerInterfaceWrapper) CreateApi(w http.ResponseWriter, r *http.Request) {
	respond(w, r, siw.Handler.CreateApi(w, r))
}

// withID binds the {id} path parameter before calling op.
func (siw *ServerInterfaceWrapper) withID(op func(w http.ResponseWriter, r *http.Request, id int) *Response) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var id int
		if err := runtime.BindStyledParameter("simple", false, "id", chi.URLParam(r, "id"), &id); err != nil {
			siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "id", Err: err})
			return
		}
		respond(w, r, op(w, r, id))
	}
}

func respond(w http.ResponseWriter, r *http.Request, resp *Response) {
	if resp == nil {
		return
	}
	if resp.body != nil {
		render.Render(w, r, resp)
		return
	}
	w.WriteHeader(resp.Code)
}

type InvalidParamFormatError struct {
	ParamName string
	Err       error
}

func (e *InvalidParamFormatError) Error() string {
	return fmt.Sprintf("Invalid format for parameter %s: %v", e.ParamName, e.Err)
}

// ServerOptions carries the router and error handler for Handler.
type ServerOptions struct {
	BaseURL          string
	BaseRouter       chi.Router
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

type ServerOption func(*ServerOptions)

func WithRouter(r chi.Router) ServerOption {
	return func(s *ServerOptions) {
		s.BaseRouter = r
	}
}

func WithErrorHandler(handler func(w http.ResponseWriter, r *http.Request, err error)) ServerOption {
	return func(s *ServerOptions) {
		s.ErrorHandlerFunc = handler
	}
}

// Handler creates http.Handler with routing matching OpenAPI spec.
func Handler(si ServerInterface, opts ...ServerOption) http.Handler {
	options := &ServerOptions{
		BaseURL:    "/",
		BaseRouter: chi.NewRouter(),
		ErrorHandlerFunc: func(w http.ResponseWriter, r *http.Request, err error) {
			http.Error(w, err.Error(), http.StatusBadRequest)
		},
	}
	for _, f := range opts {
		f(options)
	}

	r := options.BaseRouter
	wrapper := ServerInterfaceWrapper{
		Handler:          si,
		ErrorHandlerFunc: options.ErrorHandlerFunc,
	}

	r.Route(options.BaseURL, func(r chi.Router) {
		r.Get("/", wrapper.ListApps)
		r.Post("/spa", wrapper.CreateSpa)
		r.Post("/api", wrapper.CreateApi)
		r.Get("/{id}", wrapper.withID(si.GetApp))
		r.Put("/{id}", wrapper.withID(si.UpdateApp))
		r.Delete("/{id}", wrapper.withID(si.DeleteApp))
		r.Get("/{id}/apis", wrapper.withID(si.GetAppApis))
		r.Post("/{id}/reset-secret", wrapper.withID(si.ResetSecret))
		r.Get("/{id}/validate-secret", wrapper.withID(si.ValidateSecret))
	})
	return r
}

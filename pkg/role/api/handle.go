package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	rolepkg "github.com/tendant/idm-portal/pkg/role"
)

// Response is a common response struct for all the API calls.
type Response struct {
	body        interface{}
	Code        int
	contentType string
}

func (resp *Response) Render(w http.ResponseWriter, r *http.Request) error {
	w.Header().Set("Content-Type", resp.contentType)
	render.Status(r, resp.Code)
	return nil
}

func (resp *Response) MarshalJSON() ([]byte, error) {
	return json.Marshal(resp.body)
}

// GetJSON200Response is a constructor method for a Get response.
func GetJSON200Response(body []RoleView) *Response {
	return &Response{
		body:        body,
		Code:        http.StatusOK,
		contentType: "application/json",
	}
}

type RoleView struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Title string `json:"title"`
}

type Handle struct {
	roleService *rolepkg.RoleService
}

func NewHandle(roleService *rolepkg.RoleService) *Handle {
	return &Handle{
		roleService: roleService,
	}
}

// Get lists the roles that can be assigned from the portal.
func (h *Handle) Get(w http.ResponseWriter, r *http.Request) *Response {
	roles, err := h.roleService.Fetch(r.Context())
	if err != nil {
		return &Response{
			Code:        http.StatusInternalServerError,
			body:        fmt.Sprintf("failed to find roles: %v", err),
			contentType: "application/json",
		}
	}

	views := make([]RoleView, len(roles))
	for i, role := range roles {
		views[i] = RoleView{
			ID:    role.ID.String(),
			Name:  role.Name,
			Title: role.Title,
		}
	}
	return GetJSON200Response(views)
}

// Handler routes GET / to h.Get.
func Handler(h *Handle) http.Handler {
	r := chi.NewRouter()
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		if resp := h.Get(w, r); resp != nil {
			render.Render(w, r, resp)
		}
	})
	return r
}

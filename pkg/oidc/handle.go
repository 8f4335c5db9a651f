package oidc

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
	"github.com/go-chi/render"
	"github.com/ory/fosite"
	"github.com/ory/fosite/compose"
	"github.com/tendant/idm-portal/pkg/client"
	"github.com/tendant/idm-portal/pkg/registry"
	"github.com/tendant/idm-portal/pkg/role"
	"github.com/tendant/idm-portal/pkg/user"
)

// UserResolver looks up the account behind a portal session.
type UserResolver interface {
	FindByID(ctx context.Context, id string) (*user.User, error)
	GetRoles(ctx context.Context, u *user.User) ([]role.AppRole, error)
}

type Handle struct {
	// JWT Auth for validating portal session tokens
	JwtAuth *jwtauth.JWTAuth

	OAuth2Provider fosite.OAuth2Provider

	SigningKey *SigningKey
	Config     Config

	users         UserResolver
	scopeStrategy fosite.ScopeStrategy
}

// NewHandle composes the authorization engine over clients read from reg.
func NewHandle(jwtAuth *jwtauth.JWTAuth, reg registry.Registry, users UserResolver, key *SigningKey, config Config) *Handle {
	fositeConfig := &fosite.Config{
		AccessTokenLifespan:         config.AccessTokenLifespan,
		RefreshTokenLifespan:        config.RefreshTokenLifespan,
		AuthorizeCodeLifespan:       config.AuthorizeCodeLifespan,
		IDTokenLifespan:             config.IDTokenLifespan,
		IDTokenIssuer:               config.Issuer,
		AccessTokenIssuer:           config.Issuer,
		GlobalSecret:                []byte(config.GlobalSecret),
		SendDebugMessagesToClients:  config.SendDebugMessagesToClients,
		EnforcePKCEForPublicClients: true,
		ScopeStrategy:               fosite.ExactScopeStrategy,
		AllowedPromptValues:         []string{"login", "none", "consent", "select_account"},
	}

	return &Handle{
		JwtAuth:        jwtAuth,
		OAuth2Provider: compose.ComposeAllEnabled(fositeConfig, NewClientStore(reg), key.PrivateKey),
		SigningKey:     key,
		Config:         config,
		users:          users,
		scopeStrategy:  fositeConfig.ScopeStrategy,
	}
}

// Routes mounts the provider endpoints. The authorize endpoint reads the
// portal session from the Authorization header or the access_token cookie.
func (h *Handle) Routes(r chi.Router) {
	r.Get(PathDiscovery, h.DiscoveryEndpoint)
	r.Get(PathJwks, h.JwksEndpoint)
	r.Group(func(r chi.Router) {
		r.Use(client.Verifier(h.JwtAuth))
		r.Get(PathAuthorize, h.AuthorizeEndpoint)
		r.Post(PathAuthorize, h.AuthorizeEndpoint)
	})
	r.Post(PathToken, h.TokenEndpoint)
	r.Get(PathUserInfo, h.UserInfoEndpoint)
	r.Post(PathUserInfo, h.UserInfoEndpoint)
	r.Post(PathIntrospection, h.IntrospectionEndpoint)
}

func (h *Handle) AuthorizeEndpoint(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ar, err := h.OAuth2Provider.NewAuthorizeRequest(ctx, r)
	if err != nil {
		slog.Error("NewAuthorizeRequest failed", "err", err)
		h.OAuth2Provider.WriteAuthorizeError(ctx, w, ar, err)
		return
	}

	authUser, err := client.UserFromRequest(r)
	if err != nil {
		slog.Info("no portal session, redirecting to login", "client_id", ar.GetClient().GetID(), "err", err)
		http.Redirect(w, r, h.loginRedirect(r), http.StatusFound)
		return
	}

	u, err := h.users.FindByID(ctx, authUser.UserId)
	if err != nil {
		slog.Error("failed to load session user", "user_id", authUser.UserId, "err", err)
		h.OAuth2Provider.WriteAuthorizeError(ctx, w, ar, fosite.ErrServerError.WithWrap(err).WithDebug(err.Error()))
		return
	}
	if u == nil {
		slog.Warn("session names an unknown user", "user_id", authUser.UserId)
		http.Error(w, "The user details cannot be retrieved.", http.StatusUnauthorized)
		return
	}

	roles, err := h.users.GetRoles(ctx, u)
	if err != nil {
		slog.Error("failed to load user roles", "user_id", u.ID, "err", err)
		h.OAuth2Provider.WriteAuthorizeError(ctx, w, ar, fosite.ErrServerError.WithWrap(err).WithDebug(err.Error()))
		return
	}

	identity := BuildUserIdentity(u, roles, ar.GetRequestedScopes(), ar.GetClient().GetScopes())
	for _, scope := range identity.Scopes {
		ar.GrantScope(scope)
	}

	session := identity.Session()
	now := time.Now().UTC()
	session.Claims.AuthTime = now
	session.Claims.RequestedAt = now
	session.Headers.Extra["kid"] = h.SigningKey.KeyID

	response, err := h.OAuth2Provider.NewAuthorizeResponse(ctx, ar, session)
	if err != nil {
		slog.Error("NewAuthorizeResponse failed", "err", err)
		h.OAuth2Provider.WriteAuthorizeError(ctx, w, ar, err)
		return
	}

	slog.Info("authorization granted", "user_id", u.ID, "client_id", ar.GetClient().GetID(), "scopes", identity.Scopes)
	h.OAuth2Provider.WriteAuthorizeResponse(ctx, w, ar, response)
}

// loginRedirect points the browser at the login page with the authorize
// request to come back to. Posted parameters are folded into the query.
func (h *Handle) loginRedirect(r *http.Request) string {
	target := *r.URL
	if r.Method == http.MethodPost {
		_ = r.ParseForm()
		query := target.Query()
		for key, values := range r.PostForm {
			for _, v := range values {
				query.Add(key, v)
			}
		}
		target.RawQuery = query.Encode()
	}

	sep := "?"
	if strings.Contains(h.Config.LoginURL, "?") {
		sep = "&"
	}
	return h.Config.LoginURL + sep + "redirect=" + url.QueryEscape(target.RequestURI())
}

func (h *Handle) TokenEndpoint(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	session := NewSession()
	ar, err := h.OAuth2Provider.NewAccessRequest(ctx, r, session)
	if err != nil {
		slog.Error("NewAccessRequest failed", "grant_type", r.PostFormValue("grant_type"), "err", err)
		h.OAuth2Provider.WriteAccessError(ctx, w, ar, err)
		return
	}

	// Code and refresh grants carry the principal stored at the authorize
	// step; only client credentials need one built here.
	if ar.GetGrantTypes().ExactOne("client_credentials") {
		clientID := ar.GetClient().GetID()
		if s, ok := ar.GetSession().(*Session); ok {
			BuildClientIdentity(clientID).applyTo(s)
		}
		for _, scope := range ar.GetRequestedScopes() {
			if h.scopeStrategy(ar.GetClient().GetScopes(), scope) {
				ar.GrantScope(scope)
			}
		}
		slog.Info("client credentials granted", "client_id", clientID, "scopes", ar.GetGrantedScopes())
	}

	response, err := h.OAuth2Provider.NewAccessResponse(ctx, ar)
	if err != nil {
		slog.Error("NewAccessResponse failed", "client_id", ar.GetClient().GetID(), "err", err)
		h.OAuth2Provider.WriteAccessError(ctx, w, ar, err)
		return
	}

	h.OAuth2Provider.WriteAccessResponse(ctx, w, ar, response)
}

func (h *Handle) UserInfoEndpoint(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	token := fosite.AccessTokenFromRequest(r)
	tokenType, ar, err := h.OAuth2Provider.IntrospectToken(ctx, token, fosite.AccessToken, NewSession())
	if err != nil {
		slog.Warn("token introspection failed", "err", err)
		http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
		return
	}
	if tokenType != fosite.AccessToken {
		slog.Warn("invalid token type", "expected", fosite.AccessToken, "got", tokenType)
		http.Error(w, "Invalid token type", http.StatusUnauthorized)
		return
	}

	session, ok := ar.GetSession().(*Session)
	if !ok || session.GetSubject() == "" {
		slog.Error("access token without a subject", "client_id", ar.GetClient().GetID())
		http.Error(w, "Invalid token: missing subject", http.StatusUnauthorized)
		return
	}

	info := map[string]interface{}{ClaimSubject: session.GetSubject()}
	for key, value := range session.Extra {
		if key != ClaimSubject {
			info[key] = value
		}
	}

	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
	render.JSON(w, r, info)
}

func (h *Handle) IntrospectionEndpoint(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ir, err := h.OAuth2Provider.NewIntrospectionRequest(ctx, r, NewSession())
	if err != nil {
		slog.Warn("introspection failed", "err", err)
		h.OAuth2Provider.WriteIntrospectionError(ctx, w, err)
		return
	}
	h.OAuth2Provider.WriteIntrospectionResponse(ctx, w, ir)
}

func (h *Handle) JwksEndpoint(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.SigningKey.JWKSet())
}

func (h *Handle) DiscoveryEndpoint(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, NewProviderMetadata(h.Config.Issuer))
}

package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
	"github.com/go-chi/render"
	"github.com/tendant/chi-demo/app"
	appapi "github.com/tendant/idm-portal/pkg/app/api"
	"github.com/tendant/idm-portal/pkg/bootstrap"
	"github.com/tendant/idm-portal/pkg/client"
	"github.com/tendant/idm-portal/pkg/oidc"
	"github.com/tendant/idm-portal/pkg/ratelimit"
	"github.com/tendant/idm-portal/pkg/role"
	roleapi "github.com/tendant/idm-portal/pkg/role/api"
	"github.com/tendant/idm-portal/pkg/seed"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource: true,
	}))
	slog.SetDefault(logger)

	config, err := bootstrap.LoadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "err", err)
		os.Exit(1)
	}

	ctx := context.Background()
	services, err := bootstrap.Build(ctx, config)
	if err != nil {
		slog.Error("Failed to initialize services", "err", err)
		os.Exit(1)
	}
	defer services.Close()

	if config.Seed {
		result, err := seed.Run(ctx, services.SeedDeps(), config.Admin)
		if err != nil {
			slog.Error("Failed to seed", "err", err)
			os.Exit(1)
		}
		seed.PrintResult(os.Stdout, result)
		seed.LogResult(result)
	}

	signingKey, err := oidc.EnsureSigningKey(config.OIDC.PrivateKeyPath)
	if err != nil {
		slog.Error("Failed to load signing key", "err", err, "path", config.OIDC.PrivateKeyPath)
		os.Exit(1)
	}

	oidcConfig := oidc.DefaultConfig()
	oidcConfig.Issuer = config.OIDC.Issuer
	oidcConfig.LoginURL = config.OIDC.LoginURL
	oidcConfig.GlobalSecret = config.OIDC.GlobalSecret
	oidcConfig.AccessTokenLifespan = config.OIDC.AccessTokenLifespan
	oidcConfig.RefreshTokenLifespan = config.OIDC.RefreshTokenLifespan
	oidcConfig.AuthorizeCodeLifespan = config.OIDC.AuthorizeCodeLifespan
	if err := oidcConfig.Validate(); err != nil {
		slog.Error("Invalid OIDC configuration", "err", err)
		os.Exit(1)
	}

	tokenAuth := jwtauth.New("HS256", []byte(config.Jwt.JwtSecret), nil)

	server := app.DefaultApp()
	app.RoutesHealthz(server.R)
	app.RoutesHealthzReady(server.R)

	oidcHandle := oidc.NewHandle(tokenAuth, services.Registry, services.Users, signingKey, oidcConfig)
	if config.RateLimit.Enabled {
		limiter := ratelimit.NewMiddleware(ratelimit.Config{
			Burst:     config.RateLimit.Burst,
			PerSecond: config.RateLimit.PerSecond,
			BucketTTL: config.RateLimit.BucketTTL,
		})
		oidcHandle.Routes(server.R.With(limiter.Handler))
	} else {
		oidcHandle.Routes(server.R)
	}

	swagger, err := appapi.GetSwagger()
	if err != nil {
		slog.Error("Failed to load OpenAPI document", "err", err)
		os.Exit(1)
	}
	server.R.Get("/api/openapi.json", appapi.SpecHandler(swagger))

	appHandle := appapi.NewHandle(services.Apps)
	roleHandle := roleapi.NewHandle(services.Roles)

	server.R.Group(func(r chi.Router) {
		r.Use(client.Verifier(tokenAuth))
		r.Use(client.AuthUserMiddleware)

		r.Get("/api/me", func(w http.ResponseWriter, r *http.Request) {
			authUser, _ := client.GetAuthUser(r.Context())
			render.JSON(w, r, authUser)
		})
		r.Get("/api/me/apps", appapi.MyAppsHandler(appHandle))

		r.Group(func(r chi.Router) {
			r.Use(client.RequirePermission(role.PermissionAdmin))
			r.Mount("/api/apps", appapi.Handler(appHandle))
			r.Mount("/api/roles", roleapi.Handler(roleHandle))
		})
	})

	server.Run()
}

package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/tendant/chi-demo/app"
	dbutils "github.com/tendant/db-utils/db"

	"github.com/pressroom/articles-api/pkg/articlesrequest"
	"github.com/pressroom/articles-api/pkg/authn"
	"github.com/pressroom/articles-api/pkg/identity"
	"github.com/pressroom/articles-api/pkg/keycloak"
	"github.com/pressroom/articles-api/pkg/profile"
)

type ApiDbConfig struct {
	Host     string `env:"API_PG_HOST" env-default:"localhost"`
	Port     uint16 `env:"API_PG_PORT" env-default:"5432"`
	Database string `env:"API_PG_DATABASE" env-default:"articles_db"`
	User     string `env:"API_PG_USER" env-default:"articles"`
	Password string `env:"API_PG_PASSWORD" env-default:"pwd"`
}

func (d ApiDbConfig) toDbConfig() dbutils.DbConfig {
	return dbutils.DbConfig{
		Host:     d.Host,
		Port:     d.Port,
		Database: d.Database,
		User:     d.User,
		Password: d.Password,
	}
}

type KeycloakConfig struct {
	Site         string `env:"KEYCLOAK_SITE" env-default:"http://localhost:8080"`
	Realm        string `env:"KEYCLOAK_REALM" env-default:"pressroom"`
	ClientID     string `env:"KEYCLOAK_CLIENT_ID" env-default:"articles-api"`
	ClientSecret string `env:"KEYCLOAK_CLIENT_SECRET"`
}

type Config struct {
	ApiDbConfig    ApiDbConfig
	KeycloakConfig KeycloakConfig
	AppConfig      app.AppConfig
}

func main() {

	config := Config{}
	cleanenv.ReadEnv(&config)

	server := app.DefaultApp()

	app.RoutesHealthz(server.R)
	app.RoutesHealthzReady(server.R)

	dbConfig := config.ApiDbConfig.toDbConfig()
	pool, err := dbutils.NewDbPool(context.Background(), dbConfig)
	if err != nil {
		slog.Error("Failed creating dbpool", "db", dbConfig.Database, "host", dbConfig.Host, "port", dbConfig.Port, "user", dbConfig.User)
		os.Exit(-1)
	}

	keycloakConfig := keycloak.Config{
		Site:         config.KeycloakConfig.Site,
		Realm:        config.KeycloakConfig.Realm,
		ClientID:     config.KeycloakConfig.ClientID,
		ClientSecret: config.KeycloakConfig.ClientSecret,
	}
	if err := keycloakConfig.Validate(); err != nil {
		slog.Error("Failed validating keycloak config", "err", err)
		os.Exit(-1)
	}

	jwksCache := keycloak.NewJWKSCache(keycloakConfig)
	verifier := keycloak.NewVerifier(jwksCache, keycloakConfig)

	identityRepo := identity.NewPostgresIdentityRepository(pool)
	identityService := identity.NewIdentityService(identityRepo)

	authMiddleware := authn.NewMiddleware(verifier, identityService)

	requestRepo := articlesrequest.NewPostgresArticlesRequestRepository(pool)
	requestService := articlesrequest.NewArticlesRequestService(requestRepo)
	requestHandler := articlesrequest.NewHandler(requestService)

	profileHandler := profile.NewHandler()

	server.R.Route("/api/v1", func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)
		r.Use(authn.RequireIdentity)
		profileHandler.RegisterRoutes(r)
		requestHandler.RegisterRoutes(r)
	})

	server.Run()

}

// Package config manages application configuration for the shelf API.
//
// Configuration comes from environment variables. An optional .env file
// (path overridable with ENV_FILE) is read first; values already present in
// the environment win.
//
//	cfg, err := config.Load()
//	if err == nil {
//	    err = cfg.Validate()
//	}
//
// # Configuration Groups
//
//   - ServerConfig: port, environment, timeouts, CORS origins
//   - DatabaseConfig: DB_DRIVER (surrealdb, mongodb, sqlite, postgres) and
//     the settings of each driver; only the selected one is validated
//   - SessionConfig: cookie name and flags, session TTL, sweep interval
//   - AuthConfig: bcrypt cost, CATALOG_REQUIRE_ADMIN, login rate limit
//   - SeedConfig: default admin and guest accounts
//
// Validate reports every problem at once using errors.Join.
package config

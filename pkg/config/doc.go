// Package config loads env-tagged configuration structs from the process
// environment, with optional .env file support for local development.
//
// Every configurable component in this module declares a Config struct
// with env tags (worker.Config, breaker.Config, pg.Config, redis.Config,
// email.Config). This package turns those into populated values:
//
//	var workerCfg worker.Config
//	config.MustLoad(&workerCfg)
//
//	var breakerCfg breaker.Config
//	if err := config.Load(&breakerCfg); err != nil {
//	    // Handle error
//	}
//
// Parsed configs are cached per type for the process lifetime, so the
// same Config struct can be loaded from multiple places without
// re-reading the environment.
package config

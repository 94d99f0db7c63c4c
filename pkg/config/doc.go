// Package config loads typed configuration from environment variables.
//
// Each component declares its own struct with `env` tags (pg.Config,
// redis.Config, billing.PaddleConfig and so on) and the command wiring calls
// Load once per type. A local .env file is read on first use when present.
//
//	var app config.App
//	if err := config.Load(&app); err != nil {
//		return err
//	}
//
// Parsed values are cached per type. Call ResetCache in tests that change the
// environment between loads.
package config

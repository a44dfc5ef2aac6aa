// Package config loads imageflow configuration from YAML files and the
// environment.
//
// Sources are merged in order: an imageflow.yml found on the search path
// (or given explicitly), then IMAGEFLOW_* environment variables, then a
// .env file when present. Environment variables map onto nested keys, so
// IMAGEFLOW_BATCH_WORKERS=8 sets batch.workers.
//
//	cfg, err := config.Load()
//	if err != nil {
//		...
//	}
package config

// Package config loads, validates, and watches the poincare
// configuration.
//
// # Overview
//
// Configuration is a YAML file loaded by Load or LoadWithEnvOverrides.
// Unset fields receive defaults from ApplyDefaults; the result is then
// checked by Validate so the rest of the program can trust every field.
// Environment variables of the form POINCARE_SECTION_FIELD override
// file values, which makes container deployments configurable without
// editing files.
//
// # Usage
//
//	cfg, err := config.LoadWithEnvOverrides("poincare.yaml")
//	if err != nil {
//	    return err
//	}
//
// Watcher reloads the file on change, debouncing the event bursts that
// editors produce when saving:
//
//	w, _ := config.NewWatcher("poincare.yaml", 0)
//	go w.Watch(ctx, onReload, onError)
package config

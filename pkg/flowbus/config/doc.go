// Package config loads dispatcher settings from files and the environment.
//
// Settings are resolved in layers: built-in defaults, then an optional
// YAML or JSON file, then FLOWBUS_* environment variables. The result is
// validated before use.
//
// # Quick Start
//
//	s, err := config.Load("flowbus.yaml")
//	if err != nil {
//	    return err
//	}
//	d, err := flowbus.FromSettings(s)
//
// # File Format
//
//	log_level: info
//	log_format: json
//	recover_panics: true
//	metrics: true
//	tracing: false
//	journal:
//	  driver: sqlite
//	  path: ./failures.db
//
// # Environment
//
// Every field can be overridden with an environment variable:
//
//	FLOWBUS_LOG_LEVEL=debug
//	FLOWBUS_LOG_FORMAT=text
//	FLOWBUS_RECOVER_PANICS=false
//	FLOWBUS_METRICS=true
//	FLOWBUS_TRACING=true
//	FLOWBUS_JOURNAL_DRIVER=memory
//	FLOWBUS_JOURNAL_PATH=./failures.db
//	FLOWBUS_JOURNAL_MAX_SIZE=500
package config

// Package config loads, validates, and persists the cache configuration.
//
// Configuration is layered: NewDefault supplies defaults, LoadFromFile
// merges a YAML file over them, and LoadFromEnv applies CONTENTCACHE_*
// environment overrides last. Sizes are human-readable strings ("64MB",
// "1GB") parsed with power-of-1024 units.
//
// Example YAML:
//
//	cache:
//	  max_size: 64MB
//	  type_priorities:
//	    .cfg: 0.9
//	    .bin: 0.1
//	logging:
//	  level: info
//	  format: console
//	metrics:
//	  enabled: true
//	  port: 9090
package config

// Package config loads cloak's runtime configuration.
//
// Values come from three sources, merged in priority order with mergo:
// environment variables (prefix CLOAK_), an optional JSON file named by
// CLOAK_CONFIG, and built-in defaults under the user's config and cache
// directories. A value set by an earlier source is never overridden.
package config

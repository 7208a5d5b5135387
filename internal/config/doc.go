// Package config resolves server settings and the quoting rate catalog from
// CLI flags, a YAML file, environment variables (optionally seeded from a
// dotenv file) and built-in defaults, in that order of precedence.
package config

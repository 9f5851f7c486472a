// Package config holds everything that is fixed before a run starts: the
// process-wide economic Parameters, the per-variable catalog of
// VariableSpec entries, and the application configuration loaded from
// environment variables and an optional YAML file.
//
// Configuration errors are the only fatal errors in the system. Everything
// is validated up front so that once a run begins, failures degrade to
// missing data instead of aborting.
package config

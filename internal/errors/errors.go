// Package errors defines domain-level errors shared by the heal-mcp commands and engines.
//
// Package-specific failures (e.g. config load errors, incomplete snapshots) live beside the code that
// produces them; the errors here cross package boundaries and are matched with errors.Is by the commands
// to decide how a failure is reported to the operator.
package errors

import (
	"errors"
)

var (
	// ErrServerNotFound indicates that the named MCP server is not present in the configuration being operated on.
	ErrServerNotFound = errors.New("server not found")

	// ErrNoServers indicates that a configuration has no MCP servers to operate on.
	ErrNoServers = errors.New("no servers found")

	// ErrCancelled indicates that the operator cancelled an interactive operation,
	// either by declining a prompt, closing input, or interrupting the process.
	// Nothing beyond what was already confirmed and applied has been written.
	ErrCancelled = errors.New("operation cancelled")

	// ErrOverwriteDeclined indicates that the operator chose not to replace an existing server entry.
	ErrOverwriteDeclined = errors.New("overwrite declined")

	// ErrNoConfigs indicates that none of the known configuration files exist.
	ErrNoConfigs = errors.New("no MCP configuration files found")

	// ErrInvalidConfigs indicates that at least one configuration file is unparsable or structurally invalid.
	ErrInvalidConfigs = errors.New("some configurations have issues")

	// ErrMissingDependencies indicates that runtimes most MCP servers need are not installed.
	ErrMissingDependencies = errors.New("required dependencies are missing")

	// ErrUnknownPlatform indicates that a platform name does not match any configured location.
	ErrUnknownPlatform = errors.New("unknown platform")
)

// Package perms provides centralized file and directory permission constants
// used when heal-mcp writes configuration files, snapshots and caches.
package perms

import "os"

// File permission constants for different security contexts.
const (
	// RegularFile permissions for standard files (new configuration files, caches).
	// Mode 0644: owner read/write, group read, others read.
	RegularFile os.FileMode = 0o644

	// SecureFile permissions for files which may contain credentials (configs with API keys in 'env').
	// Mode 0600: owner read/write only, no group or other access.
	SecureFile os.FileMode = 0o600
)

// Directory permission constants for different security contexts.
const (
	// RegularDir permissions for standard directories (cache, parent directories of configs).
	// Mode 0755: owner read/write/execute, group read/execute, others read/execute.
	RegularDir os.FileMode = 0o755

	// SecureDir permissions for directories holding copies of configuration (backups).
	// Mode 0700: owner read/write/execute only, no group or other access.
	SecureDir os.FileMode = 0o700
)

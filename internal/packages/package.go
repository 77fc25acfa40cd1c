package packages

// Ecosystem is the package source a server is launched from.
type Ecosystem string

const (
	// None means no package could be identified.
	None Ecosystem = ""

	// NPM is the Node package registry, launched through 'npx'.
	NPM Ecosystem = "npm"

	// PyPI is the Python package index, launched through 'uvx'.
	PyPI Ecosystem = "pypi"

	// Local marks servers started through a generic package manager script, e.g. 'npm start'.
	// These are not looked up remotely.
	Local Ecosystem = "local"
)

// LatestTag is the dist-tag used to request the newest published version.
const LatestTag = "latest"

// Package is the package a server entry launches.
type Package struct {
	// Name is the bare package name, without any version pin, e.g. '@modelcontextprotocol/server-github'.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// Ecosystem is where the package is published.
	Ecosystem Ecosystem `json:"ecosystem,omitempty" yaml:"ecosystem,omitempty"`

	// Version is the version requested in the launch arguments.
	// Empty when unpinned, LatestTag when '@latest' was requested.
	Version string `json:"version,omitempty" yaml:"version,omitempty"`
}

// Remote reports whether the package can be looked up in a registry.
func (p Package) Remote() bool {
	return p.Name != "" && (p.Ecosystem == NPM || p.Ecosystem == PyPI)
}

// Pinned reports whether a concrete version was requested.
func (p Package) Pinned() bool {
	return p.Version != "" && p.Version != LatestTag
}

// String returns the package in the form used on the command line, e.g. 'pkg@1.2.3'.
func (p Package) String() string {
	if p.Version == "" {
		return p.Name
	}
	if p.Ecosystem == PyPI && p.Version != LatestTag {
		return p.Name + "==" + p.Version
	}
	return p.Name + "@" + p.Version
}

// Package packages identifies the published package an MCP server entry launches.
package packages

import (
	"slices"
	"strings"
)

// Identify works out which package (if any) is launched by command and args.
//
// The rules are tried in order over the token list [command, args...]:
//
//   - 'npx': the token after '-y' (or '--yes'), or the first non-flag token containing both '@' and '/', is an npm package.
//   - 'uvx': the first non-flag token after the launcher is a PyPI package.
//   - 'npm' or 'pnpm': a local script, not looked up remotely.
//
// Anything else yields the zero Package.
func Identify(command string, args []string) Package {
	tokens := make([]string, 0, len(args)+1)
	if command != "" {
		tokens = append(tokens, command)
	}
	tokens = append(tokens, args...)

	if len(tokens) == 0 {
		return Package{}
	}

	if idx := slices.Index(tokens, string(NPX)); idx != -1 {
		return identifyNPM(tokens[idx+1:])
	}

	if idx := slices.Index(tokens, string(UVX)); idx != -1 {
		return identifyPyPI(tokens[idx+1:])
	}

	if slices.Contains(tokens, string(NPMRun)) || slices.Contains(tokens, string(PNPM)) {
		return Package{Ecosystem: Local}
	}

	return Package{}
}

func identifyNPM(tokens []string) Package {
	for i, tok := range tokens {
		switch {
		case (tok == "-y" || tok == "--yes") && i+1 < len(tokens):
			return npmPackage(tokens[i+1])
		case !IsFlag(tok) && strings.Contains(tok, "@") && strings.Contains(tok, "/"):
			return npmPackage(tok)
		}
	}

	return Package{}
}

func identifyPyPI(tokens []string) Package {
	for _, tok := range tokens {
		if IsFlag(tok) {
			continue
		}

		name, version := tok, ""
		if i := strings.Index(tok, "=="); i > 0 {
			name, version = tok[:i], tok[i+2:]
		} else if i := strings.LastIndex(tok, "@"); i > 0 {
			name, version = tok[:i], tok[i+1:]
		}

		return Package{Name: name, Ecosystem: PyPI, Version: version}
	}

	return Package{}
}

// npmPackage splits a token such as '@scope/pkg@1.2.3' into name and version.
// A leading '@' marks a scope, not a version.
func npmPackage(tok string) Package {
	name, version := tok, ""
	if i := strings.LastIndex(tok, "@"); i > 0 {
		name, version = tok[:i], tok[i+1:]
	}

	return Package{Name: name, Ecosystem: NPM, Version: version}
}

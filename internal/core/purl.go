package core

import (
	"fmt"

	"github.com/git-pkgs/purl"
)

// ApplyPURLs resolves pkg: identifiers from spec.PURLs onto the
// per-source fields. Explicit fields win over PURL-derived ones, so a
// catalog can mix both styles. Supported types: github, npm, pypi.
func ApplyPURLs(spec *TechnologySpec) error {
	for _, raw := range spec.PURLs {
		p, err := purl.Parse(raw)
		if err != nil {
			return fmt.Errorf("technology %s: parsing %q: %w", spec.Name, raw, err)
		}

		name := p.Name
		if p.Namespace != "" {
			name = p.Namespace + "/" + p.Name
		}

		switch Source(p.Type) {
		case SourceGitHub:
			if spec.GitHubRepo == "" {
				spec.GitHubRepo = name
			}
		case SourceNPM:
			if spec.NPMPackage == "" {
				spec.NPMPackage = name
			}
		case SourcePyPI:
			if spec.PyPIPackage == "" {
				spec.PyPIPackage = name
			}
		default:
			return fmt.Errorf("technology %s: unsupported purl type %q", spec.Name, p.Type)
		}
	}
	return nil
}

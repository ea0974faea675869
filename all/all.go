// Package all registers every source collector via blank imports.
//
// Import it for side effects:
//
//	import _ "github.com/adoptioncheck/radar/all"
package all

import (
	_ "github.com/adoptioncheck/radar/internal/github"
	_ "github.com/adoptioncheck/radar/internal/npm"
	_ "github.com/adoptioncheck/radar/internal/pypi"
)

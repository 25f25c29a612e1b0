// Package forgekit is a toolkit for the ForgeScript template language:
// a recovering parser that turns source into span-annotated trees, tree
// analyses, a fetched metadata catalogue, and a configurable validator.
//
// The subpackages are independent layers. parser has no dependencies on
// the others; visitor depends on parser; validator ties parser output
// to a metadata.Catalogue.
package forgekit

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// Name is the toolkit's canonical name.
const Name = "forgekit"

// Version is the toolkit release version.
const Version = "0.3.0"

// SemVer returns Version parsed for programmatic comparison.
func SemVer() *semver.Version {
	return semver.MustParse(Version)
}

// Info returns a one-line human readable identification string.
func Info() string {
	return fmt.Sprintf("%s v%s", Name, Version)
}

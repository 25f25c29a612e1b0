package metadata

import "fmt"

// SourceKind tells how a source's document URLs were configured.
type SourceKind uint8

const (
	SourceCustom SourceKind = iota
	SourceGitHub
)

func (k SourceKind) String() string {
	if k == SourceGitHub {
		return "github"
	}
	return "custom"
}

// DocKind identifies one of the three document kinds a source serves.
type DocKind uint8

const (
	DocFunctions DocKind = iota
	DocEnums
	DocEvents
)

func (d DocKind) String() string {
	switch d {
	case DocFunctions:
		return "functions"
	case DocEnums:
		return "enums"
	case DocEvents:
		return "events"
	default:
		return "unknown"
	}
}

// FetchStatus is the outcome of the most recent FetchAll for a source.
type FetchStatus uint8

const (
	StatusNotFetched FetchStatus = iota
	StatusOK
	StatusPartial
	StatusFailed
)

func (s FetchStatus) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusPartial:
		return "partial"
	case StatusFailed:
		return "failed"
	default:
		return "not fetched"
	}
}

// Source is a registered metadata origin for one file-extension domain.
// Sources are owned by the catalogue; registering the same extension
// again replaces the prior entry in place.
type Source struct {
	Extension string
	Kind      SourceKind

	// An empty URL means that document kind is not fetched.
	FunctionsURL string
	EnumsURL     string
	EventsURL    string

	// Set for GitHub sources.
	Repo   string
	Branch string

	Status FetchStatus
}

// url returns the configured URL for a document kind, empty if unset.
func (s *Source) url(doc DocKind) string {
	switch doc {
	case DocFunctions:
		return s.FunctionsURL
	case DocEnums:
		return s.EnumsURL
	case DocEvents:
		return s.EventsURL
	default:
		return ""
	}
}

// githubRawBase is the fixed path layout GitHub sources derive their
// document URLs from.
const githubRawBase = "https://raw.githubusercontent.com/%s/%s/%s"

func githubSource(extension, repo, branch string) Source {
	return Source{
		Extension:    extension,
		Kind:         SourceGitHub,
		Repo:         repo,
		Branch:       branch,
		FunctionsURL: fmt.Sprintf(githubRawBase, repo, branch, "functions.json"),
		EnumsURL:     fmt.Sprintf(githubRawBase, repo, branch, "enums.json"),
		EventsURL:    fmt.Sprintf(githubRawBase, repo, branch, "events.json"),
	}
}

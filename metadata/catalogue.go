package metadata

import (
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Catalogue aggregates function, enum, and event metadata from its
// registered sources. Names are normalized to lowercase for lookup;
// stored records keep their original casing. All mutation funnels
// through FetchAll, Clear, and ImportCache, each presenting an
// all-or-nothing view to concurrent readers.
type Catalogue struct {
	mu        sync.RWMutex
	sources   []Source
	functions map[string]*Function // lowercase name -> definition
	aliases   map[string]string    // lowercase alias -> lowercase name
	enums     map[string]*Enum
	events    map[string]*Event
	populated bool

	client *http.Client
	logger *slog.Logger
}

// CatalogueOption configures a new catalogue.
type CatalogueOption func(*Catalogue)

// WithHTTPClient replaces the client used by FetchAll.
func WithHTTPClient(c *http.Client) CatalogueOption {
	return func(cat *Catalogue) { cat.client = c }
}

// WithLogger attaches a logger for fetch/merge diagnostics.
func WithLogger(l *slog.Logger) CatalogueOption {
	return func(cat *Catalogue) { cat.logger = l }
}

// New returns an empty catalogue with no registered sources.
func New(opts ...CatalogueOption) *Catalogue {
	cat := &Catalogue{
		functions: make(map[string]*Function),
		aliases:   make(map[string]string),
		enums:     make(map[string]*Enum),
		events:    make(map[string]*Event),
		client:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(cat)
	}
	return cat
}

// AddCustomSource registers a source by explicit document URLs. An
// empty URL means that document kind is not fetched. No I/O happens
// until FetchAll.
func (c *Catalogue) AddCustomSource(extension, functionsURL, enumsURL, eventsURL string) {
	c.addSource(Source{
		Extension:    extension,
		Kind:         SourceCustom,
		FunctionsURL: functionsURL,
		EnumsURL:     enumsURL,
		EventsURL:    eventsURL,
	})
}

// AddGitHubSource registers a source whose three document URLs are
// derived from the repository and branch under the fixed raw layout.
func (c *Catalogue) AddGitHubSource(extension, repo, branch string) {
	c.addSource(githubSource(extension, repo, branch))
}

func (c *Catalogue) addSource(src Source) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.sources {
		if c.sources[i].Extension == src.Extension {
			c.sources[i] = src
			return
		}
	}
	c.sources = append(c.sources, src)
}

// Sources returns a snapshot of the registered sources.
func (c *Catalogue) Sources() []Source {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Source, len(c.sources))
	copy(out, c.sources)
	return out
}

// Clear empties the aggregate maps and resets fetch statuses but keeps
// the registered sources, so FetchAll can run again without
// re-registration.
func (c *Catalogue) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.functions = make(map[string]*Function)
	c.aliases = make(map[string]string)
	c.enums = make(map[string]*Enum)
	c.events = make(map[string]*Event)
	for i := range c.sources {
		c.sources[i].Status = StatusNotFetched
	}
	c.populated = false
}

// Populated reports whether the catalogue has been loaded at least
// once, by FetchAll or ImportCache. Validation against an unpopulated
// catalogue is a caller contract violation.
func (c *Catalogue) Populated() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.populated
}

// GetFunctionExact returns the function whose name or alias matches
// exactly (case-insensitive), or nil.
func (c *Catalogue) GetFunctionExact(name string) *Function {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lookupExact(strings.ToLower(name))
}

func (c *Catalogue) lookupExact(lower string) *Function {
	if fn, ok := c.functions[lower]; ok {
		return fn
	}
	if primary, ok := c.aliases[lower]; ok {
		return c.functions[primary]
	}
	return nil
}

// GetFunction resolves a name with an exact case-insensitive match
// first, then falls back to the longest registered name or alias that
// is a prefix of the query. The fallback lets an unbracketed run like
// "pingms" resolve to "ping". Returns nil when nothing matches.
func (c *Catalogue) GetFunction(name string) *Function {
	c.mu.RLock()
	defer c.mu.RUnlock()

	lower := strings.ToLower(name)
	if fn := c.lookupExact(lower); fn != nil {
		return fn
	}

	best := ""
	for key := range c.functions {
		if len(key) > len(best) && strings.HasPrefix(lower, key) {
			best = key
		}
	}
	for alias, primary := range c.aliases {
		if len(alias) > len(best) && strings.HasPrefix(lower, alias) {
			best = primary
		}
	}
	if best == "" {
		return nil
	}
	return c.functions[best]
}

// Suggest returns the closest known function name for an unresolved
// query, ranked by edit distance with lexicographic tie-break, or ""
// when nothing is remotely similar.
func (c *Catalogue) Suggest(name string) string {
	c.mu.RLock()
	candidates := make([]string, 0, len(c.functions))
	for _, fn := range c.functions {
		candidates = append(candidates, fn.Name)
	}
	c.mu.RUnlock()

	if len(candidates) == 0 {
		return ""
	}
	ranks := fuzzy.RankFindFold(name, candidates)
	if len(ranks) == 0 {
		return ""
	}
	sort.Slice(ranks, func(i, j int) bool {
		if ranks[i].Distance != ranks[j].Distance {
			return ranks[i].Distance < ranks[j].Distance
		}
		return ranks[i].Target < ranks[j].Target
	})
	return ranks[0].Target
}

// GetCompletions returns every function name whose name or alias
// starts with prefix (case-insensitive), ordered ascending by name.
func (c *Catalogue) GetCompletions(prefix string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	lower := strings.ToLower(prefix)
	seen := make(map[string]struct{})
	for key, fn := range c.functions {
		if strings.HasPrefix(key, lower) {
			seen[fn.Name] = struct{}{}
		}
	}
	for alias, primary := range c.aliases {
		if strings.HasPrefix(alias, lower) {
			if fn, ok := c.functions[primary]; ok {
				seen[fn.Name] = struct{}{}
			}
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetEnum returns the enum with the given name (case-insensitive).
func (c *Catalogue) GetEnum(name string) *Enum {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.enums[strings.ToLower(name)]
}

// GetEvent returns the event with the given name (case-insensitive).
func (c *Catalogue) GetEvent(name string) *Event {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.events[strings.ToLower(name)]
}

// FunctionCount returns the number of distinct functions (aliases do
// not add to the count).
func (c *Catalogue) FunctionCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.functions)
}

// EnumCount returns the number of stored enums.
func (c *Catalogue) EnumCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.enums)
}

// EventCount returns the number of stored events.
func (c *Catalogue) EventCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.events)
}

// mergeFunctions installs definitions under the caller-held write
// lock. Later merges overwrite earlier entries on name collision.
func (c *Catalogue) mergeFunctions(fns []*Function) {
	for _, fn := range fns {
		if fn == nil || fn.Name == "" {
			continue
		}
		key := strings.ToLower(fn.Name)
		c.functions[key] = fn
		for _, alias := range fn.Aliases {
			if alias == "" {
				continue
			}
			c.aliases[strings.ToLower(alias)] = key
		}
	}
}

func (c *Catalogue) mergeEnums(enums []*Enum) {
	for _, e := range enums {
		if e == nil || e.Name == "" {
			continue
		}
		c.enums[strings.ToLower(e.Name)] = e
	}
}

func (c *Catalogue) mergeEvents(events []*Event) {
	for _, ev := range events {
		if ev == nil || ev.Name == "" {
			continue
		}
		c.events[strings.ToLower(ev.Name)] = ev
	}
}

func (c *Catalogue) debugf(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}

func (c *Catalogue) warnf(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Warn(msg, args...)
	}
}

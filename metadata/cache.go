package metadata

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrMalformedCache marks an ImportCache payload that could not be
// restored. The catalogue's prior state is left untouched.
var ErrMalformedCache = errors.New("metadata: malformed cache")

const cacheVersion = 1

// cacheDoc is the self-contained serialization of the three aggregate
// maps. Functions, enums, and events round-trip losslessly, including
// enum value order.
type cacheDoc struct {
	Version   int         `json:"version"`
	Functions []*Function `json:"functions"`
	Enums     []*Enum     `json:"enums"`
	Events    []*Event    `json:"events"`
}

// ExportCache serializes the current aggregate maps. Entries are
// sorted by name so identical catalogues export byte-identical
// documents.
func (c *Catalogue) ExportCache() ([]byte, error) {
	c.mu.RLock()
	doc := cacheDoc{Version: cacheVersion}
	for _, fn := range c.functions {
		doc.Functions = append(doc.Functions, fn)
	}
	for _, e := range c.enums {
		doc.Enums = append(doc.Enums, e)
	}
	for _, ev := range c.events {
		doc.Events = append(doc.Events, ev)
	}
	c.mu.RUnlock()

	sort.Slice(doc.Functions, func(i, j int) bool { return doc.Functions[i].Name < doc.Functions[j].Name })
	sort.Slice(doc.Enums, func(i, j int) bool { return doc.Enums[i].Name < doc.Enums[j].Name })
	sort.Slice(doc.Events, func(i, j int) bool { return doc.Events[i].Name < doc.Events[j].Name })

	return json.Marshal(doc)
}

// ImportCache replaces the aggregate maps with the deserialized
// document, without re-fetching. The swap is all-or-nothing: on a
// malformed payload or version mismatch the prior state is untouched
// and ErrMalformedCache is returned.
func (c *Catalogue) ImportCache(data []byte) error {
	var doc cacheDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedCache, err)
	}
	if doc.Version != cacheVersion {
		return fmt.Errorf("%w: unsupported version %d", ErrMalformedCache, doc.Version)
	}

	functions := make(map[string]*Function, len(doc.Functions))
	aliases := make(map[string]string)
	for _, fn := range doc.Functions {
		if fn == nil || fn.Name == "" {
			return fmt.Errorf("%w: function entry without name", ErrMalformedCache)
		}
		key := strings.ToLower(fn.Name)
		functions[key] = fn
		for _, alias := range fn.Aliases {
			if alias != "" {
				aliases[strings.ToLower(alias)] = key
			}
		}
	}
	enums := make(map[string]*Enum, len(doc.Enums))
	for _, e := range doc.Enums {
		if e == nil || e.Name == "" {
			return fmt.Errorf("%w: enum entry without name", ErrMalformedCache)
		}
		enums[strings.ToLower(e.Name)] = e
	}
	events := make(map[string]*Event, len(doc.Events))
	for _, ev := range doc.Events {
		if ev == nil || ev.Name == "" {
			return fmt.Errorf("%w: event entry without name", ErrMalformedCache)
		}
		events[strings.ToLower(ev.Name)] = ev
	}

	c.mu.Lock()
	c.functions = functions
	c.aliases = aliases
	c.enums = enums
	c.events = events
	c.populated = true
	c.mu.Unlock()
	return nil
}

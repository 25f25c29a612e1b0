package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
)

// ErrMalformedDocument marks a fetched document whose payload could
// not be decoded at all. Individual bad entries inside an otherwise
// valid document are skipped, not fatal.
var ErrMalformedDocument = errors.New("metadata: malformed document")

// FetchFailure records one document that could not be retrieved or
// decoded during FetchAll.
type FetchFailure struct {
	Extension string
	Doc       DocKind
	Err       error
}

func (f FetchFailure) Error() string {
	return fmt.Sprintf("fetch %s for %q: %v", f.Doc, f.Extension, f.Err)
}

func (f FetchFailure) Unwrap() error { return f.Err }

// FetchResult aggregates the outcome of one FetchAll run.
type FetchResult struct {
	Functions int
	Enums     int
	Events    int
	Failures  []FetchFailure
}

// OK reports whether every configured document was fetched and merged.
func (r *FetchResult) OK() bool { return len(r.Failures) == 0 }

func (r *FetchResult) String() string {
	s := fmt.Sprintf("fetched %d functions, %d enums, %d events",
		r.Functions, r.Enums, r.Events)
	if len(r.Failures) > 0 {
		s += fmt.Sprintf(" (%d failures)", len(r.Failures))
	}
	return s
}

type fetchTask struct {
	ext string
	doc DocKind
	url string
}

// FetchAll retrieves every configured document of every registered
// source concurrently and merges the results. A failure on one
// document never aborts the others; it is recorded in the result and
// against the source's status. Cancelling ctx aborts outstanding
// requests; documents that already completed are still merged, so the
// caller gets the partial results gathered so far.
//
// Documents are merged in registration order under the write lock, so
// a later-registered source deterministically wins name collisions and
// concurrent readers never observe a partially merged document.
func (c *Catalogue) FetchAll(ctx context.Context) *FetchResult {
	c.mu.RLock()
	var tasks []fetchTask
	for _, src := range c.sources {
		for _, doc := range []DocKind{DocFunctions, DocEnums, DocEvents} {
			if url := src.url(doc); url != "" {
				tasks = append(tasks, fetchTask{ext: src.Extension, doc: doc, url: url})
			}
		}
	}
	c.mu.RUnlock()

	bodies := make([][]byte, len(tasks))
	errs := make([]error, len(tasks))

	var wg sync.WaitGroup
	for i := range tasks {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			bodies[i], errs[i] = c.fetchDocument(ctx, tasks[i].url)
		}(i)
	}
	wg.Wait()

	res := &FetchResult{}
	failed := make(map[string]int)
	succeeded := make(map[string]int)

	c.mu.Lock()
	defer c.mu.Unlock()

	for i, task := range tasks {
		if errs[i] != nil {
			res.Failures = append(res.Failures, FetchFailure{
				Extension: task.ext, Doc: task.doc, Err: errs[i],
			})
			failed[task.ext]++
			continue
		}
		if err := c.mergeDocument(task, bodies[i], res); err != nil {
			res.Failures = append(res.Failures, FetchFailure{
				Extension: task.ext, Doc: task.doc, Err: err,
			})
			failed[task.ext]++
			continue
		}
		succeeded[task.ext]++
	}

	for i := range c.sources {
		ext := c.sources[i].Extension
		switch {
		case failed[ext] == 0 && succeeded[ext] > 0:
			c.sources[i].Status = StatusOK
		case failed[ext] > 0 && succeeded[ext] > 0:
			c.sources[i].Status = StatusPartial
		case failed[ext] > 0:
			c.sources[i].Status = StatusFailed
		}
	}
	c.populated = true

	c.debugf("fetch complete",
		"functions", res.Functions, "enums", res.Enums, "events", res.Events,
		"failures", len(res.Failures))
	return res
}

// mergeDocument decodes one fetched document and merges it under the
// already-held write lock. The merge per document is atomic from a
// reader's point of view.
func (c *Catalogue) mergeDocument(task fetchTask, body []byte, res *FetchResult) error {
	switch task.doc {
	case DocFunctions:
		fns, err := c.decodeFunctions(body, task.ext)
		if err != nil {
			return err
		}
		c.mergeFunctions(fns)
		res.Functions += len(fns)
	case DocEnums:
		enums, err := decodeEnums(body)
		if err != nil {
			return err
		}
		c.mergeEnums(enums)
		res.Enums += len(enums)
	case DocEvents:
		events, err := c.decodeEvents(body, task.ext)
		if err != nil {
			return err
		}
		c.mergeEvents(events)
		res.Events += len(events)
	}
	return nil
}

func (c *Catalogue) fetchDocument(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s for %s", resp.Status, url)
	}
	return io.ReadAll(resp.Body)
}

// decodeFunctions parses a functions document: a JSON array of
// function definitions. Entries that fail to decode are skipped with a
// warning so one bad entry does not block the rest of the file.
func (c *Catalogue) decodeFunctions(data []byte, ext string) ([]*Function, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	fns := make([]*Function, 0, len(raw))
	for i, item := range raw {
		var fn Function
		if err := json.Unmarshal(item, &fn); err != nil || fn.Name == "" {
			c.warnf("skipping function entry", "index", i, "extension", ext, "err", err)
			continue
		}
		fn.Extension = ext
		fns = append(fns, &fn)
	}
	return fns, nil
}

// decodeEnums parses an enums document: a JSON object mapping enum
// name to its ordered list of valid keys.
func decodeEnums(data []byte) ([]*Enum, error) {
	var raw map[string][]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	enums := make([]*Enum, 0, len(raw))
	for name, keys := range raw {
		e := &Enum{Name: name, Values: make([]EnumValue, len(keys))}
		for i, key := range keys {
			e.Values[i] = EnumValue{Key: key, Display: key}
		}
		enums = append(enums, e)
	}
	return enums, nil
}

// decodeEvents parses an events document: a JSON array of event
// definitions, item-tolerant like decodeFunctions.
func (c *Catalogue) decodeEvents(data []byte, ext string) ([]*Event, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	events := make([]*Event, 0, len(raw))
	for i, item := range raw {
		var ev Event
		if err := json.Unmarshal(item, &ev); err != nil || ev.Name == "" {
			c.warnf("skipping event entry", "index", i, "extension", ext, "err", err)
			continue
		}
		events = append(events, &ev)
	}
	return events, nil
}

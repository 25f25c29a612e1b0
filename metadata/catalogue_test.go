package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testCatalogue returns a populated catalogue without any fetching.
func testCatalogue(t *testing.T, fns []*Function, enums []*Enum, events []*Event) *Catalogue {
	t.Helper()
	c := New()
	c.mu.Lock()
	c.mergeFunctions(fns)
	c.mergeEnums(enums)
	c.mergeEvents(events)
	c.populated = true
	c.mu.Unlock()
	return c
}

func sampleFunctions() []*Function {
	return []*Function{
		{Name: "ping", Args: []ArgSpec{{Name: "target", Required: true}}},
		{Name: "pingCount"},
		{Name: "sendMessage", Aliases: []string{"send", "msg"}},
		{Name: "random", Args: []ArgSpec{
			{Name: "min", Required: true},
			{Name: "max", Required: true},
			{Name: "seed"},
		}},
	}
}

// TestGetFunctionExact tests case-insensitive name and alias lookup.
func TestGetFunctionExact(t *testing.T) {
	cat := testCatalogue(t, sampleFunctions(), nil, nil)

	fn := cat.GetFunctionExact("PING")
	require.NotNil(t, fn)
	assert.Equal(t, "ping", fn.Name)

	fn = cat.GetFunctionExact("MSG")
	require.NotNil(t, fn, "alias lookup should resolve")
	assert.Equal(t, "sendMessage", fn.Name)

	assert.Nil(t, cat.GetFunctionExact("pingc"), "partial names do not match exactly")
	assert.Nil(t, cat.GetFunctionExact("missing"))
}

// TestGetFunctionPrefix tests the longest-prefix fallback used for
// unbracketed runs like "pingms".
func TestGetFunctionPrefix(t *testing.T) {
	cat := testCatalogue(t, sampleFunctions(), nil, nil)

	fn := cat.GetFunction("pingms")
	require.NotNil(t, fn)
	assert.Equal(t, "ping", fn.Name)

	// The longer registered name wins over its own prefix.
	fn = cat.GetFunction("pingCountTotal")
	require.NotNil(t, fn)
	assert.Equal(t, "pingCount", fn.Name)

	// Alias prefixes resolve to the primary definition.
	fn = cat.GetFunction("sendNow")
	require.NotNil(t, fn)
	assert.Equal(t, "sendMessage", fn.Name)

	assert.Nil(t, cat.GetFunction("zzz"))
}

// TestSuggest tests fuzzy suggestions for near-miss names.
func TestSuggest(t *testing.T) {
	cat := testCatalogue(t, sampleFunctions(), nil, nil)

	assert.Equal(t, "sendMessage", cat.Suggest("sendMesage"))
	assert.Equal(t, "ping", cat.Suggest("png"))
	assert.Equal(t, "", cat.Suggest("qqqqqqqq"), "nothing similar yields empty")

	empty := New()
	assert.Equal(t, "", empty.Suggest("anything"))
}

// TestGetCompletions tests prefix completion over names and aliases.
func TestGetCompletions(t *testing.T) {
	cat := testCatalogue(t, sampleFunctions(), nil, nil)

	assert.Equal(t, []string{"ping", "pingCount"}, cat.GetCompletions("pin"))
	assert.Equal(t, []string{"sendMessage"}, cat.GetCompletions("SEND"))
	assert.Equal(t, []string{"sendMessage"}, cat.GetCompletions("ms"), "alias prefix completes to primary name")
	assert.Empty(t, cat.GetCompletions("zzz"))

	all := cat.GetCompletions("")
	assert.Equal(t, []string{"ping", "pingCount", "random", "sendMessage"}, all)
}

// TestEnumAndEventLookup tests the remaining lookup surfaces.
func TestEnumAndEventLookup(t *testing.T) {
	enums := []*Enum{{Name: "Color", Values: []EnumValue{{Key: "red", Display: "Red"}, {Key: "blue", Display: "Blue"}}}}
	events := []*Event{{Name: "messageCreate", Description: "fires on new messages"}}
	cat := testCatalogue(t, nil, enums, events)

	e := cat.GetEnum("color")
	require.NotNil(t, e)
	assert.Equal(t, []string{"red", "blue"}, e.Keys())
	assert.True(t, e.Has("red"))
	assert.False(t, e.Has("Red"), "Has compares keys, not display names")

	ev := cat.GetEvent("MESSAGECREATE")
	require.NotNil(t, ev)
	assert.Equal(t, "messageCreate", ev.Name)

	assert.Nil(t, cat.GetEnum("shape"))
	assert.Nil(t, cat.GetEvent("nope"))
}

// TestArity tests required/max computation including variadic tails.
func TestArity(t *testing.T) {
	tests := []struct {
		name         string
		fn           Function
		wantRequired int
		wantMax      int
	}{
		{
			name:         "no arguments",
			fn:           Function{Name: "now"},
			wantRequired: 0, wantMax: 0,
		},
		{
			name: "mixed required and optional",
			fn: Function{Name: "random", Args: []ArgSpec{
				{Name: "min", Required: true},
				{Name: "max", Required: true},
				{Name: "seed"},
			}},
			wantRequired: 2, wantMax: 3,
		},
		{
			name: "variadic tail",
			fn: Function{Name: "concat", Args: []ArgSpec{
				{Name: "first", Required: true},
				{Name: "rest", Variadic: true},
			}},
			wantRequired: 1, wantMax: -1,
		},
		{
			name: "required variadic does not add to the minimum",
			fn: Function{Name: "join", Args: []ArgSpec{
				{Name: "parts", Required: true, Variadic: true},
			}},
			wantRequired: 0, wantMax: -1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			required, max := tt.fn.Arity()
			assert.Equal(t, tt.wantRequired, required)
			assert.Equal(t, tt.wantMax, max)
		})
	}
}

// TestSourceRegistration tests replace-in-place for same-extension
// registration and the GitHub URL layout.
func TestSourceRegistration(t *testing.T) {
	cat := New()
	cat.AddGitHubSource("forge", "acme/forge-docs", "main")
	cat.AddCustomSource("extras", "https://example.test/functions.json", "", "")
	cat.AddGitHubSource("forge", "acme/forge-docs", "v2")

	sources := cat.Sources()
	require.Len(t, sources, 2, "re-registering an extension replaces it")

	forge := sources[0]
	assert.Equal(t, "forge", forge.Extension)
	assert.Equal(t, "https://raw.githubusercontent.com/acme/forge-docs/v2/functions.json", forge.FunctionsURL)
	assert.Equal(t, "https://raw.githubusercontent.com/acme/forge-docs/v2/enums.json", forge.EnumsURL)
	assert.Equal(t, "https://raw.githubusercontent.com/acme/forge-docs/v2/events.json", forge.EventsURL)
	assert.Equal(t, StatusNotFetched, forge.Status)

	extras := sources[1]
	assert.Equal(t, SourceCustom, extras.Kind)
	assert.Empty(t, extras.EnumsURL)
}

// TestClear tests that Clear empties data but keeps sources registered.
func TestClear(t *testing.T) {
	cat := testCatalogue(t, sampleFunctions(), nil, nil)
	cat.AddGitHubSource("forge", "acme/forge-docs", "main")

	require.True(t, cat.Populated())
	require.NotZero(t, cat.FunctionCount())

	cat.Clear()

	assert.False(t, cat.Populated())
	assert.Zero(t, cat.FunctionCount())
	assert.Zero(t, cat.EnumCount())
	assert.Zero(t, cat.EventCount())
	assert.Len(t, cat.Sources(), 1, "sources survive Clear")
	assert.Nil(t, cat.GetFunctionExact("ping"))
}

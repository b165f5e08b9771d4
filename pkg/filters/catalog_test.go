// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package filters_test

import (
	"testing"

	"carvel.dev/liquid/pkg/filters"
	"carvel.dev/liquid/pkg/template/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type filterCase struct {
	name   string
	val    interface{}
	args   []interface{}
	kwargs map[string]interface{}
	want   core.Value
}

func runFilterCases(t *testing.T, cases []filterCase) {
	table := filters.NewBuiltinTable()

	for _, tc := range cases {
		var args []core.Value
		for _, arg := range tc.args {
			args = append(args, core.FromGo(arg))
		}
		kwargs := map[string]core.Value{}
		for k, v := range tc.kwargs {
			kwargs[k] = core.FromGo(v)
		}

		result, err := table.Apply(tc.name, core.FromGo(tc.val), args, kwargs)
		require.NoError(t, err, "%s %v %v", tc.name, tc.val, tc.args)
		assert.Equal(t, tc.want, result, "%s %v %v", tc.name, tc.val, tc.args)
	}
}

func applyErr(t *testing.T, name string, val interface{}, args ...interface{}) error {
	var coreArgs []core.Value
	for _, arg := range args {
		coreArgs = append(coreArgs, core.FromGo(arg))
	}
	_, err := filters.NewBuiltinTable().Apply(name, core.FromGo(val), coreArgs, nil)
	require.Error(t, err, name)
	return err
}

func strs(vals ...string) core.List {
	result := core.List{}
	for _, val := range vals {
		result = append(result, core.String(val))
	}
	return result
}

func TestStringFilters(t *testing.T) {
	runFilterCases(t, []filterCase{
		{name: "upcase", val: "abc", want: core.String("ABC")},
		{name: "downcase", val: "ABC", want: core.String("abc")},
		{name: "capitalize", val: "hELLO world", want: core.String("Hello world")},
		{name: "append", val: "a", args: []interface{}{"b"}, want: core.String("ab")},
		{name: "append", val: 1, args: []interface{}{2}, want: core.String("12")},
		{name: "prepend", val: "world", args: []interface{}{"hello "}, want: core.String("hello world")},
		{name: "strip", val: "  x \n", want: core.String("x")},
		{name: "lstrip", val: "  x ", want: core.String("x ")},
		{name: "rstrip", val: "  x ", want: core.String("  x")},
		{name: "strip_newlines", val: "a\nb\r\nc", want: core.String("abc")},
		{name: "newline_to_br", val: "a\nb", want: core.String("a<br />\nb")},
		{name: "strip_html", val: "<p>Hi <b>there</b></p><!-- x -->", want: core.String("Hi there")},
		{name: "escape", val: "<a href='x'>&", want: core.String("&lt;a href=&#39;x&#39;&gt;&amp;")},
		{name: "url_encode", val: "a b&c", want: core.String("a+b%26c")},
		{name: "url_decode", val: "a+b%26c", want: core.String("a b&c")},
		{name: "replace", val: "a-b-c", args: []interface{}{"-", "+"}, want: core.String("a+b+c")},
		{name: "replace_first", val: "a-b-c", args: []interface{}{"-", "+"}, want: core.String("a+b-c")},
		{name: "remove", val: "a-b-c", args: []interface{}{"-"}, want: core.String("abc")},
		{name: "remove_first", val: "a-b-c", args: []interface{}{"-"}, want: core.String("ab-c")},
		{name: "split", val: "a,b,c", args: []interface{}{","}, want: strs("a", "b", "c")},
		{name: "split", val: " a  b ", args: []interface{}{" "}, want: strs("a", "b")},
		{name: "split", val: "", args: []interface{}{","}, want: core.List{}},
		{name: "truncate", val: "Ground control to Major Tom.", args: []interface{}{20}, want: core.String("Ground control to...")},
		{name: "truncate", val: "short", want: core.String("short")},
		{name: "truncate", val: "abcdef", args: []interface{}{3, ""}, want: core.String("abc")},
		{name: "truncatewords", val: "Ground control to Major Tom.", args: []interface{}{3}, want: core.String("Ground control to...")},
		{name: "truncatewords", val: "one two", args: []interface{}{3}, want: core.String("one two")},
		{name: "slice", val: "Liquid", args: []interface{}{2, 5}, want: core.String("quid")},
		{name: "slice", val: "Liquid", args: []interface{}{-3, 2}, want: core.String("ui")},
		{name: "slice", val: "Liquid", args: []interface{}{0}, want: core.String("L")},
		{name: "slice", val: []interface{}{1, 2, 3}, args: []interface{}{1, 5}, want: core.List{core.Int(2), core.Int(3)}},
	})
}

func TestArrayFilters(t *testing.T) {
	people := []interface{}{
		map[string]interface{}{"name": "bo", "age": 30, "active": true},
		map[string]interface{}{"name": "al", "age": 25, "active": false},
		map[string]interface{}{"name": "cy", "age": 35},
	}

	runFilterCases(t, []filterCase{
		{name: "size", val: []interface{}{1, 2}, want: core.Int(2)},
		{name: "size", val: "héllo", want: core.Int(5)},
		{name: "size", val: 5, want: core.Int(0)},
		{name: "first", val: []interface{}{1, 2}, want: core.Int(1)},
		{name: "first", val: []interface{}{}, want: core.Nil},
		{name: "last", val: []interface{}{1, 2}, want: core.Int(2)},
		{name: "last", val: "abc", want: core.String("c")},
		{name: "join", val: []interface{}{"a", "b"}, args: []interface{}{", "}, want: core.String("a, b")},
		{name: "join", val: []interface{}{1, 2}, want: core.String("1 2")},
		{name: "reverse", val: []interface{}{1, 2, 3}, want: core.List{core.Int(3), core.Int(2), core.Int(1)}},
		{name: "sort", val: []interface{}{"b", "a", "C"}, want: strs("C", "a", "b")},
		{name: "sort", val: []interface{}{3, 1.5, 2}, want: core.List{core.Float(1.5), core.Int(2), core.Int(3)}},
		{name: "sort_natural", val: []interface{}{"b", "a", "C"}, want: strs("a", "b", "C")},
		{name: "uniq", val: []interface{}{1, 1.0, 2, "2"}, want: core.List{core.Int(1), core.Int(2), core.String("2")}},
		{name: "compact", val: []interface{}{1, nil, 2}, want: core.List{core.Int(1), core.Int(2)}},
		{name: "map", val: people, args: []interface{}{"name"}, want: strs("bo", "al", "cy")},
		{name: "concat", val: []interface{}{1}, args: []interface{}{[]interface{}{2}}, want: core.List{core.Int(1), core.Int(2)}},
	})
}

func TestSortByProperty(t *testing.T) {
	people := core.FromGo([]interface{}{
		map[string]interface{}{"name": "bo", "age": 30},
		map[string]interface{}{"name": "al"},
		map[string]interface{}{"name": "cy", "age": 25},
	})

	table := filters.NewBuiltinTable()

	sorted, err := table.Apply("sort", people, []core.Value{core.String("age")}, nil)
	require.NoError(t, err)

	names, err := table.Apply("map", sorted, []core.Value{core.String("name")}, nil)
	require.NoError(t, err)
	assert.Equal(t, strs("cy", "bo", "al"), names)
}

func TestWhere(t *testing.T) {
	people := core.FromGo([]interface{}{
		map[string]interface{}{"name": "bo", "role": "admin", "active": true},
		map[string]interface{}{"name": "al", "role": "user", "active": false},
		map[string]interface{}{"name": "cy", "role": "admin"},
	})

	table := filters.NewBuiltinTable()

	admins, err := table.Apply("where", people, []core.Value{core.String("role"), core.String("admin")}, nil)
	require.NoError(t, err)
	assert.Len(t, admins, 2)

	active, err := table.Apply("where", people, []core.Value{core.String("active")}, nil)
	require.NoError(t, err)
	require.Len(t, active, 1)

	name, _ := core.Get(active.(core.List)[0], core.String("name"))
	assert.Equal(t, core.String("bo"), name)
}

func TestSortMixedTypesFails(t *testing.T) {
	err := applyErr(t, "sort", []interface{}{1, "a"})
	assert.True(t, core.IsCode(err, core.FilterFailed))
}

func TestMathFilters(t *testing.T) {
	runFilterCases(t, []filterCase{
		{name: "plus", val: 1, args: []interface{}{2}, want: core.Int(3)},
		{name: "plus", val: 1, args: []interface{}{2.5}, want: core.Float(3.5)},
		{name: "plus", val: "4", args: []interface{}{"1"}, want: core.Int(5)},
		{name: "minus", val: 5, args: []interface{}{7}, want: core.Int(-2)},
		{name: "times", val: 3, args: []interface{}{1.5}, want: core.Float(4.5)},
		{name: "divided_by", val: 7, args: []interface{}{2}, want: core.Int(3)},
		{name: "divided_by", val: -7, args: []interface{}{2}, want: core.Int(-4)},
		{name: "divided_by", val: 7, args: []interface{}{2.0}, want: core.Float(3.5)},
		{name: "modulo", val: 7, args: []interface{}{3}, want: core.Int(1)},
		{name: "modulo", val: -7, args: []interface{}{3}, want: core.Int(2)},
		{name: "abs", val: -3, want: core.Int(3)},
		{name: "abs", val: "-1.5", want: core.Float(1.5)},
		{name: "ceil", val: 1.2, want: core.Int(2)},
		{name: "ceil", val: "1.2", want: core.Int(2)},
		{name: "floor", val: 1.8, want: core.Int(1)},
		{name: "round", val: 2.5, want: core.Int(3)},
		{name: "round", val: 3.14159, args: []interface{}{2}, want: core.Float(3.14)},
		{name: "at_least", val: 4, args: []interface{}{5}, want: core.Int(5)},
		{name: "at_least", val: 6, args: []interface{}{5}, want: core.Int(6)},
		{name: "at_most", val: 4, args: []interface{}{5}, want: core.Int(4)},
		{name: "at_most", val: 6, args: []interface{}{5}, want: core.Int(5)},
	})
}

func TestMathFilterErrors(t *testing.T) {
	err := applyErr(t, "divided_by", 1, 0)
	assert.Contains(t, err.Error(), "divided by 0")

	err = applyErr(t, "modulo", 1.5, 0.0)
	assert.Contains(t, err.Error(), "divided by 0")

	err = applyErr(t, "plus", "abc", 1)
	assert.Contains(t, err.Error(), "expected a number, got 'abc'")
}

func TestDefault(t *testing.T) {
	runFilterCases(t, []filterCase{
		{name: "default", val: nil, args: []interface{}{"x"}, want: core.String("x")},
		{name: "default", val: false, args: []interface{}{"x"}, want: core.String("x")},
		{name: "default", val: false, args: []interface{}{"x"}, kwargs: map[string]interface{}{"allow_false": true}, want: core.False},
		{name: "default", val: "", args: []interface{}{"x"}, want: core.String("x")},
		{name: "default", val: []interface{}{}, args: []interface{}{"x"}, want: core.String("x")},
		{name: "default", val: "a", args: []interface{}{"x"}, want: core.String("a")},
		{name: "default", val: 0, args: []interface{}{"x"}, want: core.Int(0)},
	})
}

func TestHashAndEncodingFilters(t *testing.T) {
	runFilterCases(t, []filterCase{
		{name: "md5", val: "hello", want: core.String("5d41402abc4b2a76b9719d911017c592")},
		{name: "sha256", val: "hello", want: core.String("2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824")},
		{name: "base64_encode", val: "hello", want: core.String("aGVsbG8=")},
		{name: "base64_decode", val: "aGVsbG8=", want: core.String("hello")},
		{name: "json", val: []interface{}{1, "a<b", nil, true}, want: core.String(`[1,"a<b",null,true]`)},
		{name: "json", val: "x", want: core.String(`"x"`)},
	})
}

func TestJSONKeepsKeyOrder(t *testing.T) {
	m := core.NewMap()
	m.Set("b", core.Int(1))
	m.Set("a", core.List{core.True, core.Nil})

	table := filters.NewBuiltinTable()

	result, err := table.Apply("json", m, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, core.String(`{"b":1,"a":[true,null]}`), result)

	small := core.NewMap()
	small.Set("a", core.Int(1))

	result, err = table.Apply("json", small, nil, map[string]core.Value{"indent": core.Int(2)})
	require.NoError(t, err)
	assert.Equal(t, core.String("{\n  \"a\": 1\n}"), result)
}

func TestYAMLAndTOML(t *testing.T) {
	m := core.NewMap()
	m.Set("port", core.Int(8080))
	m.Set("name", core.String("x"))

	table := filters.NewBuiltinTable()

	result, err := table.Apply("yaml", m, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, core.String("port: 8080\nname: x\n"), result)

	result, err = table.Apply("toml", m, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, core.String("name = \"x\"\nport = 8080\n"), result)

	_, err = table.Apply("toml", core.List{}, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected a hash, got array")
}

func TestParseFilters(t *testing.T) {
	table := filters.NewBuiltinTable()

	parsed, err := table.Apply("parse_json", core.String(`{"b": 1, "a": [1, 2]}`), nil, nil)
	require.NoError(t, err)
	parsedMap, ok := parsed.(*core.Map)
	require.True(t, ok)
	assert.Equal(t, []string{"b", "a"}, parsedMap.Keys())
	items, _ := parsedMap.Get("a")
	assert.Equal(t, core.List{core.Int(1), core.Int(2)}, items)

	parsed, err = table.Apply("parse_yaml", core.String("name: x\ntags: [a]\n"), nil, nil)
	require.NoError(t, err)
	name, _ := core.Get(parsed, core.String("name"))
	assert.Equal(t, core.String("x"), name)

	parsed, err = table.Apply("parse_toml", core.String("a = 1\n[b]\nc = 'x'\n"), nil, nil)
	require.NoError(t, err)
	nested, _ := core.Get(parsed, core.String("b"))
	c, _ := core.Get(nested, core.String("c"))
	assert.Equal(t, core.String("x"), c)
	a, _ := core.Get(parsed, core.String("a"))
	assert.Equal(t, core.Int(1), a)
}

func TestRegexpFilters(t *testing.T) {
	runFilterCases(t, []filterCase{
		{name: "regex_match", val: "abc123", args: []interface{}{`\d+`}, want: core.True},
		{name: "regex_match", val: "abc", args: []interface{}{`^\d+$`}, want: core.False},
		{name: "regex_replace", val: "a1b2", args: []interface{}{`(\d)`, "<$1>"}, want: core.String("a<1>b<2>")},
	})

	err := applyErr(t, "regex_match", "x", "(")
	assert.True(t, core.IsCode(err, core.FilterFailed))
}

func TestVersionFilters(t *testing.T) {
	runFilterCases(t, []filterCase{
		{name: "version_compare", val: "1.2.0", args: []interface{}{"1.10.0"}, want: core.Int(-1)},
		{name: "version_compare", val: "v2.0", args: []interface{}{"2.0.0"}, want: core.Int(0)},
		{name: "version_satisfies", val: "1.5.0", args: []interface{}{">= 1.2, < 2"}, want: core.True},
		{name: "version_satisfies", val: "2.1.0", args: []interface{}{"~> 1.2"}, want: core.False},
	})

	err := applyErr(t, "version_compare", "not-a-version", "1.0")
	assert.Contains(t, err.Error(), "parsing version 'not-a-version'")
}

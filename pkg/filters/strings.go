// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package filters

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"carvel.dev/liquid/pkg/template/core"
)

var (
	htmlTagRegexp = regexp.MustCompile(`(?s)<script.*?</script>|<style.*?</style>|<!--.*?-->|<[^>]*>`)
	htmlEscaper   = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;", "'", "&#39;")
)

type stringFilters struct{}

func (b stringFilters) register(t *Table) {
	t.Register("append", b.Append)
	t.Register("prepend", b.Prepend)
	t.Register("capitalize", b.unary(b.capitalize))
	t.Register("upcase", b.unary(strings.ToUpper))
	t.Register("downcase", b.unary(strings.ToLower))
	t.Register("strip", b.unary(strings.TrimSpace))
	t.Register("lstrip", b.unary(func(s string) string { return strings.TrimLeftFunc(s, unicode.IsSpace) }))
	t.Register("rstrip", b.unary(func(s string) string { return strings.TrimRightFunc(s, unicode.IsSpace) }))
	t.Register("strip_newlines", b.unary(strings.NewReplacer("\r\n", "", "\n", "").Replace))
	t.Register("newline_to_br", b.unary(strings.NewReplacer("\r\n", "<br />\n", "\n", "<br />\n").Replace))
	t.Register("strip_html", b.unary(func(s string) string { return htmlTagRegexp.ReplaceAllString(s, "") }))
	t.Register("escape", b.unary(htmlEscaper.Replace))
	t.Register("url_encode", b.unary(url.QueryEscape))
	t.Register("url_decode", b.URLDecode)
	t.Register("replace", b.Replace)
	t.Register("replace_first", b.ReplaceFirst)
	t.Register("remove", b.Remove)
	t.Register("remove_first", b.RemoveFirst)
	t.Register("split", b.Split)
	t.Register("truncate", b.Truncate)
	t.Register("truncatewords", b.TruncateWords)
	t.Register("slice", b.Slice)
}

func (stringFilters) unary(fn func(string) string) Func {
	return func(val core.Value, args []core.Value, kwargs map[string]core.Value) (core.Value, error) {
		if err := expectArgs(args, 0, 0); err != nil {
			return nil, err
		}
		if err := checkKwargNames(kwargs); err != nil {
			return nil, err
		}
		return core.String(fn(core.Display(val))), nil
	}
}

func (stringFilters) capitalize(s string) string {
	runes := []rune(s)
	if len(runes) == 0 {
		return s
	}
	return string(unicode.ToUpper(runes[0])) + strings.ToLower(string(runes[1:]))
}

func (stringFilters) Append(val core.Value, args []core.Value, _ map[string]core.Value) (core.Value, error) {
	if err := expectArgs(args, 1, 1); err != nil {
		return nil, err
	}
	return core.String(core.Display(val) + core.Display(args[0])), nil
}

func (stringFilters) Prepend(val core.Value, args []core.Value, _ map[string]core.Value) (core.Value, error) {
	if err := expectArgs(args, 1, 1); err != nil {
		return nil, err
	}
	return core.String(core.Display(args[0]) + core.Display(val)), nil
}

func (stringFilters) URLDecode(val core.Value, args []core.Value, _ map[string]core.Value) (core.Value, error) {
	if err := expectArgs(args, 0, 0); err != nil {
		return nil, err
	}
	result, err := url.QueryUnescape(core.Display(val))
	if err != nil {
		return nil, err
	}
	return core.String(result), nil
}

func (stringFilters) Replace(val core.Value, args []core.Value, _ map[string]core.Value) (core.Value, error) {
	if err := expectArgs(args, 1, 2); err != nil {
		return nil, err
	}
	return core.String(strings.ReplaceAll(core.Display(val), stringArg(args, 0), stringArg(args, 1))), nil
}

func (stringFilters) ReplaceFirst(val core.Value, args []core.Value, _ map[string]core.Value) (core.Value, error) {
	if err := expectArgs(args, 1, 2); err != nil {
		return nil, err
	}
	return core.String(strings.Replace(core.Display(val), stringArg(args, 0), stringArg(args, 1), 1)), nil
}

func (stringFilters) Remove(val core.Value, args []core.Value, _ map[string]core.Value) (core.Value, error) {
	if err := expectArgs(args, 1, 1); err != nil {
		return nil, err
	}
	return core.String(strings.ReplaceAll(core.Display(val), stringArg(args, 0), "")), nil
}

func (stringFilters) RemoveFirst(val core.Value, args []core.Value, _ map[string]core.Value) (core.Value, error) {
	if err := expectArgs(args, 1, 1); err != nil {
		return nil, err
	}
	return core.String(strings.Replace(core.Display(val), stringArg(args, 0), "", 1)), nil
}

func (stringFilters) Split(val core.Value, args []core.Value, _ map[string]core.Value) (core.Value, error) {
	if err := expectArgs(args, 1, 1); err != nil {
		return nil, err
	}

	str := core.Display(val)
	if len(str) == 0 {
		return core.List{}, nil
	}

	var pieces []string
	if sep := stringArg(args, 0); sep == " " {
		pieces = strings.Fields(str)
	} else {
		pieces = strings.Split(str, sep)
	}

	result := make(core.List, len(pieces))
	for i, piece := range pieces {
		result[i] = core.String(piece)
	}
	return result, nil
}

func (stringFilters) Truncate(val core.Value, args []core.Value, _ map[string]core.Value) (core.Value, error) {
	if err := expectArgs(args, 0, 2); err != nil {
		return nil, err
	}
	length, err := intArg(args, 0, 50)
	if err != nil {
		return nil, err
	}
	ellipsis := "..."
	if len(args) > 1 {
		ellipsis = stringArg(args, 1)
	}

	runes := []rune(core.Display(val))
	if len(runes) <= length {
		return core.String(string(runes)), nil
	}

	keep := length - len([]rune(ellipsis))
	if keep < 0 {
		keep = 0
	}
	return core.String(string(runes[:keep]) + ellipsis), nil
}

func (stringFilters) TruncateWords(val core.Value, args []core.Value, _ map[string]core.Value) (core.Value, error) {
	if err := expectArgs(args, 0, 2); err != nil {
		return nil, err
	}
	count, err := intArg(args, 0, 15)
	if err != nil {
		return nil, err
	}
	if count < 1 {
		count = 1
	}
	ellipsis := "..."
	if len(args) > 1 {
		ellipsis = stringArg(args, 1)
	}

	words := strings.Fields(core.Display(val))
	if len(words) <= count {
		return core.String(core.Display(val)), nil
	}
	return core.String(strings.Join(words[:count], " ") + ellipsis), nil
}

// Slice works on strings (by character) and arrays. Negative offsets count
// from the end.
func (stringFilters) Slice(val core.Value, args []core.Value, _ map[string]core.Value) (core.Value, error) {
	if err := expectArgs(args, 1, 2); err != nil {
		return nil, err
	}
	start, err := intArg(args, 0, 0)
	if err != nil {
		return nil, err
	}
	length, err := intArg(args, 1, 1)
	if err != nil {
		return nil, err
	}

	bounds := func(size int) (int, int) {
		from := start
		if from < 0 {
			from += size
		}
		if from < 0 {
			from = 0
		}
		if from > size {
			from = size
		}
		to := from + length
		if to > size {
			to = size
		}
		if to < from {
			to = from
		}
		return from, to
	}

	if list, ok := val.(core.List); ok {
		from, to := bounds(len(list))
		return append(core.List{}, list[from:to]...), nil
	}

	runes := []rune(core.Display(val))
	from, to := bounds(len(runes))
	return core.String(string(runes[from:to])), nil
}

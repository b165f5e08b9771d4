// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package filters

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"carvel.dev/liquid/pkg/orderedmap"
	"carvel.dev/liquid/pkg/template/core"
	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

type encodingFilters struct{}

func (b encodingFilters) register(t *Table) {
	t.Register("json", b.JSON)
	t.Register("parse_json", b.ParseYAML)
	t.Register("yaml", b.YAML)
	t.Register("parse_yaml", b.ParseYAML)
	t.Register("toml", b.TOML)
	t.Register("parse_toml", b.ParseTOML)
	t.Register("base64_encode", b.Base64Encode)
	t.Register("base64_decode", b.Base64Decode)
}

// JSON keeps hash keys in insertion order. indent: N pretty-prints.
func (encodingFilters) JSON(val core.Value, args []core.Value, kwargs map[string]core.Value) (core.Value, error) {
	if err := expectArgs(args, 0, 0); err != nil {
		return nil, err
	}
	if err := checkKwargNames(kwargs, "indent"); err != nil {
		return nil, err
	}

	indent := 0
	if indentVal, found := kwargs["indent"]; found {
		var err error
		indent, err = core.ToInt(indentVal)
		if err != nil {
			return nil, fmt.Errorf("indent: %s", msgOf(err))
		}
	}

	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	if indent > 0 {
		encoder.SetIndent("", strings.Repeat(" ", indent))
	}
	if err := encoder.Encode(core.ToGo(val)); err != nil {
		return nil, err
	}
	return core.String(strings.TrimSuffix(buf.String(), "\n")), nil
}

func (encodingFilters) YAML(val core.Value, args []core.Value, _ map[string]core.Value) (core.Value, error) {
	if err := expectArgs(args, 0, 0); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(core.ToGo(val)); err != nil {
		return nil, err
	}
	if err := encoder.Close(); err != nil {
		return nil, err
	}
	return core.String(buf.String()), nil
}

// ParseYAML also serves parse_json since JSON documents are valid YAML.
func (encodingFilters) ParseYAML(val core.Value, args []core.Value, _ map[string]core.Value) (core.Value, error) {
	if err := expectArgs(args, 0, 0); err != nil {
		return nil, err
	}
	result, err := orderedmap.FromYAMLBytes([]byte(core.Display(val)))
	if err != nil {
		return nil, err
	}
	return core.FromGo(result), nil
}

// TOML requires a hash at the top level.
func (encodingFilters) TOML(val core.Value, args []core.Value, _ map[string]core.Value) (core.Value, error) {
	if err := expectArgs(args, 0, 0); err != nil {
		return nil, err
	}
	if _, ok := val.(*core.Map); !ok {
		return nil, fmt.Errorf("expected a hash, got %s", val.Kind())
	}

	var buf bytes.Buffer
	err := toml.NewEncoder(&buf).Encode(orderedmap.Conversion{Object: core.ToGo(val)}.AsUnorderedStringMaps())
	if err != nil {
		return nil, err
	}
	return core.String(buf.String()), nil
}

func (encodingFilters) ParseTOML(val core.Value, args []core.Value, _ map[string]core.Value) (core.Value, error) {
	if err := expectArgs(args, 0, 0); err != nil {
		return nil, err
	}
	var result map[string]interface{}
	if _, err := toml.Decode(core.Display(val), &result); err != nil {
		return nil, err
	}
	return core.FromGo(result), nil
}

func (encodingFilters) Base64Encode(val core.Value, args []core.Value, _ map[string]core.Value) (core.Value, error) {
	if err := expectArgs(args, 0, 0); err != nil {
		return nil, err
	}
	return core.String(base64.StdEncoding.EncodeToString([]byte(core.Display(val)))), nil
}

func (encodingFilters) Base64Decode(val core.Value, args []core.Value, _ map[string]core.Value) (core.Value, error) {
	if err := expectArgs(args, 0, 0); err != nil {
		return nil, err
	}
	result, err := base64.StdEncoding.DecodeString(core.Display(val))
	if err != nil {
		return nil, err
	}
	return core.String(result), nil
}

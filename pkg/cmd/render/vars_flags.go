// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package render

import (
	"fmt"
	"os"
	"strings"

	"carvel.dev/liquid/pkg/files"
	"carvel.dev/liquid/pkg/orderedmap"
	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
)

// VarsFlags collect template variables. Later sources win: vars files,
// then env variables, then individual key-value flags.
type VarsFlags struct {
	EnvFromStrings []string
	EnvFromYAML    []string

	KVsFromStrings []string
	KVsFromYAML    []string
	KVsFromFiles   []string

	Files []string
}

func (s *VarsFlags) Set(cmd *cobra.Command) {
	cmd.Flags().StringArrayVar(&s.EnvFromStrings, "vars-env", nil, "Extract variables (as strings) from prefixed env vars (format: PREFIX for PREFIX_all__key1=str) (can be specified multiple times)")
	cmd.Flags().StringArrayVar(&s.EnvFromYAML, "vars-env-yaml", nil, "Extract variables (parsed as YAML) from prefixed env vars (format: PREFIX for PREFIX_all__key1=true) (can be specified multiple times)")

	cmd.Flags().StringArrayVarP(&s.KVsFromStrings, "var", "v", nil, "Set specific variable to given value, as string (format: all.key1.subkey=123) (can be specified multiple times)")
	cmd.Flags().StringArrayVar(&s.KVsFromYAML, "var-yaml", nil, "Set specific variable to given value, parsed as YAML (format: all.key1.subkey=true) (can be specified multiple times)")
	cmd.Flags().StringArrayVar(&s.KVsFromFiles, "var-file", nil, "Set specific variable to given file contents, as string (format: all.key1.subkey=/file/path) (can be specified multiple times)")

	cmd.Flags().StringArrayVar(&s.Files, "vars-file", nil, "Read variables from a YAML, JSON or TOML file (ie local path, HTTP URL, -) (can be specified multiple times)")
}

type varsFlagsSource struct {
	Values        []string
	TransformFunc func(string) (interface{}, error)
}

// Values merges all variable sources. dataFiles are vars files found among
// the regular inputs; they come before --vars-file files.
func (s *VarsFlags) Values(dataFiles []*files.File) (*orderedmap.Map, error) {
	plainValFunc := func(rawVal string) (interface{}, error) { return rawVal, nil }

	yamlValFunc := func(rawVal string) (interface{}, error) {
		val, err := orderedmap.FromYAMLBytes([]byte(rawVal))
		if err != nil {
			return nil, fmt.Errorf("Deserializing YAML value: %s", err)
		}
		return val, nil
	}

	varsFiles, err := files.NewFiles(s.Files, false)
	if err != nil {
		return nil, err
	}

	result := orderedmap.NewMap()

	for _, file := range append(append([]*files.File{}, dataFiles...), varsFiles...) {
		vals, err := s.varsFile(file)
		if err != nil {
			return nil, err
		}
		// Keys from files are taken literally, dots included
		vals.Iterate(func(key, val interface{}) {
			result.Set(fmt.Sprintf("%v", key), val)
		})
	}

	var flagVals []*orderedmap.Map

	for _, src := range []varsFlagsSource{{s.EnvFromStrings, plainValFunc}, {s.EnvFromYAML, yamlValFunc}} {
		for _, envPrefix := range src.Values {
			vals, err := s.env(envPrefix, src.TransformFunc)
			if err != nil {
				return nil, fmt.Errorf("Extracting variables from env under prefix '%s': %s", envPrefix, err)
			}
			flagVals = append(flagVals, vals)
		}
	}

	// KVs and files take precedence over environment variables
	for _, src := range []varsFlagsSource{{s.KVsFromStrings, plainValFunc}, {s.KVsFromYAML, yamlValFunc}} {
		for _, kv := range src.Values {
			vals, err := s.kv(kv, src.TransformFunc)
			if err != nil {
				return nil, fmt.Errorf("Extracting variable from KV: %s", err)
			}
			flagVals = append(flagVals, vals)
		}
	}

	for _, file := range s.KVsFromFiles {
		vals, err := s.file(file)
		if err != nil {
			return nil, fmt.Errorf("Extracting variable from file: %s", err)
		}
		flagVals = append(flagVals, vals)
	}

	err = s.mergeIntoNestedMap(result, flagVals)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *VarsFlags) varsFile(file *files.File) (*orderedmap.Map, error) {
	data, err := file.Bytes()
	if err != nil {
		return nil, fmt.Errorf("Reading vars %s: %s", file.Description(), err)
	}

	var val interface{}

	if strings.HasSuffix(file.RelativePath(), ".toml") {
		var raw map[string]interface{}
		_, err = toml.Decode(string(data), &raw)
		val = orderedmap.Conversion{Object: raw}.FromUnorderedMaps()
	} else {
		// JSON is a subset of YAML
		val, err = orderedmap.FromYAMLBytes(data)
	}
	if err != nil {
		return nil, fmt.Errorf("Unmarshaling vars %s: %s", file.Description(), err)
	}

	switch typedVal := val.(type) {
	case nil:
		return orderedmap.NewMap(), nil
	case *orderedmap.Map:
		return typedVal, nil
	default:
		return nil, fmt.Errorf("Expected vars %s to contain a map, but was %T", file.Description(), val)
	}
}

func (s *VarsFlags) env(prefix string, valueFunc func(string) (interface{}, error)) (*orderedmap.Map, error) {
	result := orderedmap.NewMap()
	envVars := os.Environ()

	for _, envVar := range envVars {
		pieces := strings.SplitN(envVar, "=", 2)
		if len(pieces) != 2 {
			return nil, fmt.Errorf("Expected env variable to be key-value pair (format: key=value)")
		}

		if !strings.HasPrefix(pieces[0], prefix+"_") {
			continue
		}

		val, err := valueFunc(pieces[1])
		if err != nil {
			return nil, fmt.Errorf("Extracting variable from env variable '%s': %s", pieces[0], err)
		}

		// '__' gets translated into a '.' since periods may not be liked by shells
		result.Set(strings.Replace(strings.TrimPrefix(pieces[0], prefix+"_"), "__", ".", -1), val)
	}

	return result, nil
}

func (s *VarsFlags) kv(kv string, valueFunc func(string) (interface{}, error)) (*orderedmap.Map, error) {
	result := orderedmap.NewMap()

	pieces := strings.SplitN(kv, "=", 2)
	if len(pieces) != 2 {
		return nil, fmt.Errorf("Expected format key=value")
	}

	val, err := valueFunc(pieces[1])
	if err != nil {
		return nil, fmt.Errorf("Deserializing value for key '%s': %s", pieces[0], err)
	}

	result.Set(pieces[0], val)

	return result, nil
}

func (s *VarsFlags) file(kv string) (*orderedmap.Map, error) {
	result := orderedmap.NewMap()

	pieces := strings.SplitN(kv, "=", 2)
	if len(pieces) != 2 {
		return nil, fmt.Errorf("Expected format key=/file/path")
	}

	contents, err := os.ReadFile(pieces[1])
	if err != nil {
		return nil, fmt.Errorf("Reading file '%s'", pieces[1])
	}

	result.Set(pieces[0], string(contents))

	return result, nil
}

func (s *VarsFlags) mergeIntoNestedMap(result *orderedmap.Map, multipleVals []*orderedmap.Map) error {
	for _, vals := range multipleVals {
		err := vals.IterateErr(func(key, val interface{}) error {
			keyPieces := strings.Split(key.(string), ".")
			currMap := result
			for _, keyPiece := range keyPieces[:len(keyPieces)-1] {
				subMap, found := currMap.Get(keyPiece)
				if found {
					if typedSubMap, ok := subMap.(*orderedmap.Map); ok {
						currMap = typedSubMap
					} else {
						return fmt.Errorf("Expected key '%s' to not conflict with other variables at piece '%s'", key, keyPiece)
					}
				} else {
					newCurrMap := orderedmap.NewMap()
					currMap.Set(keyPiece, newCurrMap)
					currMap = newCurrMap
				}
			}
			currMap.Set(keyPieces[len(keyPieces)-1], val)
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

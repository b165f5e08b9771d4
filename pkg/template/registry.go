// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package template

import (
	"sort"
	"strings"
)

// Names of the virtual tags used for bookkeeping. They cannot be used
// directly inside a template.
const (
	TagRoot    = "__ROOT__"
	TagEnd     = "__END__"
	TagLiteral = "__LITERAL__"
	TagRaw     = "__RAW__"
	TagComment = "__COMMENT__"
	TagOutput  = "__OUTPUT__"
)

type Voidness int

const (
	NonVoid Voidness = iota
	Void
	// MaybeVoid tags are blocks until something shows they were used as a
	// single tag: another tag opens, an outer tag closes or input ends.
	MaybeVoid
)

func (v Voidness) String() string {
	switch v {
	case NonVoid:
		return "block"
	case Void:
		return "void"
	case MaybeVoid:
		return "maybe-void"
	default:
		return "unknown"
	}
}

// Relation constrains where a tag may appear relative to other tags.
type Relation struct {
	Names    []string
	Required bool
	// Immediate requires the relation to be the direct parent instead of
	// any ancestor.
	Immediate bool
}

func (r Relation) Has(name string) bool {
	for _, n := range r.Names {
		if n == name {
			return true
		}
	}
	return false
}

func (r Relation) IsSet() bool { return len(r.Names) > 0 }

func (r Relation) AsString() string {
	var quoted []string
	for _, n := range r.Names {
		quoted = append(quoted, "'"+n+"'")
	}
	return strings.Join(quoted, ", ")
}

// Payload is the parsed form of a tag. Render is called with the node the
// payload belongs to.
type Payload interface {
	Render(ctx *RenderCtx, node *TagNode) error
}

// Descriptor describes one tag: its nesting rules and how to parse its
// arguments. Parents lists tags that must enclose this one; Elders lists
// tags this one may follow as part of the same construct (e.g. 'elsif'
// after 'if').
type Descriptor struct {
	Name    string
	Void    Voidness
	Parents Relation
	Elders  Relation
	Parse   func(args string) (Payload, error)
}

// Registry maps tag names to descriptors. It must be fully populated before
// templates are built with it.
type Registry struct {
	descriptors map[string]*Descriptor
}

func NewRegistry() *Registry {
	return &Registry{descriptors: map[string]*Descriptor{}}
}

// Register adds or replaces a tag.
func (r *Registry) Register(desc Descriptor) {
	if len(desc.Name) == 0 {
		panic("Expected tag descriptor to have a name")
	}
	if desc.Parse == nil {
		panic("Expected tag descriptor '" + desc.Name + "' to have a parse function")
	}
	r.descriptors[desc.Name] = &desc
}

func (r *Registry) Lookup(name string) (*Descriptor, bool) {
	desc, found := r.descriptors[name]
	return desc, found
}

// Names lists the tags usable in templates, sorted.
func (r *Registry) Names() []string {
	var names []string
	for name := range r.descriptors {
		if !isVirtualTag(name) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func isVirtualTag(name string) bool { return strings.HasPrefix(name, "__") }

// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package template

// NewBuiltinRegistry returns a registry holding the virtual tags and the
// standard tag set. Each call returns a new registry, so callers may
// register extra tags without affecting others.
func NewBuiltinRegistry() *Registry {
	r := NewRegistry()

	// Bookkeeping
	r.Register(Descriptor{Name: TagRoot, Parse: noArgs(TagRoot, blockPayload{})})
	r.Register(Descriptor{Name: TagEnd, Parse: noArgs("end", nil)})
	r.Register(Descriptor{Name: TagLiteral, Void: Void, Parse: parseText})
	r.Register(Descriptor{Name: TagRaw, Void: Void, Parse: parseText})
	r.Register(Descriptor{Name: TagComment, Void: Void, Parse: parseComment})
	r.Register(Descriptor{Name: TagOutput, Void: Void, Parse: parseOutput})

	conditionElders := Relation{Names: []string{"if", "elsif", "unless"}, Required: true}
	loops := Relation{Names: []string{"for", "tablerow"}, Required: true}

	r.Register(Descriptor{Name: "if", Parse: parseCondition(false)})
	r.Register(Descriptor{Name: "unless", Parse: parseCondition(true)})
	r.Register(Descriptor{Name: "elsif", Elders: conditionElders, Parse: parseCondition(false)})
	r.Register(Descriptor{
		Name:   "else",
		// 'case' is listed so a case with only an else fails when rendered
		Elders: Relation{Names: []string{"if", "elsif", "unless", "for", "when", "case"}, Required: true},
		Parse:  noArgs("else", elsePayload{}),
	})

	r.Register(Descriptor{Name: "for", Parse: parseFor})
	r.Register(Descriptor{Name: "tablerow", Parse: parseTablerow})
	r.Register(Descriptor{Name: "break", Void: Void, Parents: loops, Parse: noArgs("break", loopControlPayload{breakLoop: true})})
	r.Register(Descriptor{Name: "continue", Void: Void, Parents: loops, Parse: noArgs("continue", loopControlPayload{})})
	r.Register(Descriptor{Name: "cycle", Void: Void, Parse: parseCycle})

	r.Register(Descriptor{Name: "case", Parse: parseCase})
	r.Register(Descriptor{
		Name:    "when",
		Parents: Relation{Names: []string{"case"}, Required: true, Immediate: true},
		Elders:  Relation{Names: []string{"when"}},
		Parse:   parseWhen,
	})

	r.Register(Descriptor{Name: "assign", Void: Void, Parse: parseAssign})
	r.Register(Descriptor{Name: "capture", Parse: parseCapture})
	r.Register(Descriptor{Name: "increment", Void: Void, Parse: parseCounter(1)})
	r.Register(Descriptor{Name: "decrement", Void: Void, Parse: parseCounter(-1)})
	r.Register(Descriptor{Name: "echo", Void: Void, Parse: parseOutput})

	r.Register(Descriptor{Name: "comment", Void: MaybeVoid, Parse: parseCommentTag})
	r.Register(Descriptor{Name: "raw", Parse: noArgs("raw", blockPayload{})})

	return r
}

func parseText(text string) (Payload, error) { return textPayload{text}, nil }

func parseComment(text string) (Payload, error) { return commentPayload{text}, nil }

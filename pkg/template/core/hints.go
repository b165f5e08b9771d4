// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"fmt"
)

// HintFor suggests a fix for common mistakes, mostly habits carried over
// from other template languages. Returns "" when nothing applies.
func HintFor(code ErrorCode, name string) string {
	switch code {
	case UnknownTag:
		switch name {
		case "elif", "elseif":
			return "use 'elsif' instead of '" + name + "'"
		case "endelse", "endelsif", "endwhen":
			return "close the whole construct with its opening tag's end (e.g. 'endif', 'endcase')"
		case "set":
			return "use 'assign' instead of 'set'"
		case "block", "extends", "include", "render", "macro":
			return fmt.Sprintf("tag '%s' is not supported by this engine", name)
		case "while":
			return "use 'for' with a range, e.g. {% for i in (1..n) %}"
		}

	case UndefinedFilter:
		switch name {
		case "upper":
			return "use 'upcase' instead of 'upper'"
		case "lower":
			return "use 'downcase' instead of 'lower'"
		case "length", "len", "count":
			return "use 'size' instead of '" + name + "'"
		case "trim":
			return "use 'strip' instead of 'trim'"
		case "tojson", "to_json":
			return "use 'json' instead of '" + name + "'"
		}

	case UndefinedVariable:
		switch name {
		case "True":
			return "use 'true' instead of 'True'"
		case "False":
			return "use 'false' instead of 'False'"
		case "None", "null":
			return "use 'nil' instead of '" + name + "' to indicate no value"
		case "loop":
			return "use 'forloop' to access loop metadata"
		}

	case BadExpression:
		switch name {
		case "&&":
			return "use 'and' instead of '&&' for logical-and"
		case "||":
			return "use 'or' instead of '||' for logical-or"
		case "!":
			return "use 'unless' or '!= true' instead of '!'"
		}
	}

	return ""
}

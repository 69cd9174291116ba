// internal/schema/rules.go
package schema

import (
	"fmt"
	"strings"
)

// Pattern is a path prefix. "*" matches any element name; any other element
// must equal the stack entry at the same depth. A pattern of length n matches
// every stack of depth >= n whose first n entries agree with it.
type Pattern []string

// P builds a pattern from a slash-separated string such as "*/test/accuracy".
func P(s string) Pattern {
	return Pattern(strings.Split(s, "/"))
}

// Match reports whether stack starts with the pattern.
func (p Pattern) Match(stack []string) bool {
	if len(stack) < len(p) {
		return false
	}
	for i, name := range p {
		if name != "*" && name != stack[i] {
			return false
		}
	}
	return true
}

func (p Pattern) String() string {
	return strings.Join(p, "/")
}

// Rule binds a pattern to the hooks that copy matching events into the run.
// Either hook may be nil.
type Rule struct {
	Pattern Pattern
	OnOpen  func(x *extractor, path []string) error
	OnLeaf  func(x *extractor, path []string, raw string) error
}

// exampleFields are the per-example element names shared by both test layouts.
var exampleFields = []string{"truth", "tag", "dist", "time", "resp", "mask", "feat"}

// exampleLayouts are the two places the runner nests test examples:
// document/pass/test/examples/<field> and document/test/example/example_N/<field>.
var exampleLayouts = []string{"*/*/test/*", "*/test/example/*"}

// Rules is the extraction table, evaluated in order; the first pattern that
// matches the current stack handles the event.
var Rules = buildRules()

func buildRules() []Rule {
	rules := []Rule{
		{Pattern: P("*/test_lag"), OnLeaf: setEmissionInterval},
		{Pattern: P("*/param/test_lag"), OnLeaf: setEmissionInterval},
	}
	for _, layout := range exampleLayouts {
		for _, field := range exampleFields {
			rules = append(rules, exampleRule(layout, field))
		}
	}
	rules = append(rules,
		Rule{Pattern: P("*/accuracy"), OnLeaf: setAccuracy},
		Rule{Pattern: P("*/test/accuracy"), OnLeaf: setAccuracy},
		Rule{Pattern: P("*/test/param"), OnLeaf: addParameter},
		Rule{Pattern: P("*/param/*"), OnLeaf: setArg},
		Rule{Pattern: P("*/param"), OnLeaf: addParameter},
		Rule{Pattern: P("*/args/corpus"), OnLeaf: setCorpus},
		Rule{Pattern: P("*/args/*"), OnLeaf: setArg},
		Rule{Pattern: P("*/*/score"), OnLeaf: addScore},
		Rule{Pattern: P("*/*/*/score"), OnLeaf: addScore},
	)
	return rules
}

func exampleRule(layout, field string) Rule {
	r := Rule{Pattern: P(layout + "/" + field)}
	switch field {
	case "truth":
		r.OnLeaf = func(x *extractor, path []string, raw string) error {
			return x.startExample(path[len(path)-2], x.text(raw))
		}
	case "tag":
		r.OnLeaf = func(x *extractor, path []string, raw string) error {
			x.pending().Predicted = x.text(raw)
			return nil
		}
	case "dist":
		r.OnLeaf = func(x *extractor, path []string, raw string) error {
			d, err := parseNumber(path, x.text(raw))
			if err != nil {
				return err
			}
			return x.commit(d)
		}
	case "time":
		r.OnLeaf = func(x *extractor, path []string, raw string) error {
			v, err := parseNumber(path, x.text(raw))
			if err != nil {
				return err
			}
			x.pending().ElapsedTime = &v
			return nil
		}
	case "resp":
		r.OnLeaf = setResponse
	case "mask":
		r.OnLeaf = setMask
	case "feat":
		r.OnOpen = func(x *extractor, path []string) error {
			if len(path) == len(r.Pattern) {
				x.startFeatureBlock()
			}
			return nil
		}
		r.OnLeaf = addFeature
	default:
		panic(fmt.Sprintf("schema: no handler for example field %q", field))
	}
	return r
}

// Lookup returns the first rule matching stack, or nil.
func Lookup(stack []string) *Rule {
	for i := range Rules {
		if Rules[i].Pattern.Match(stack) {
			return &Rules[i]
		}
	}
	return nil
}

package dynamic

import "strings"

// Trim applies Inner into a scratch buffer, then strips any matching
// prefix/suffix override token (first match wins, case-insensitive) before
// surrounding the remainder with Prefix/Suffix. Abstains if Inner produced
// nothing.
type Trim struct {
	Inner           SqlNode
	Prefix          string
	PrefixOverrides []string
	Suffix          string
	SuffixOverrides []string
}

func (n *Trim) Apply(ctx *DynamicContext) (bool, error) {
	scratch := &DynamicContext{bindings: ctx.bindings, env: ctx.env, counter: ctx.counter}
	contributed, err := n.Inner.Apply(scratch)
	if err != nil {
		return false, err
	}
	ctx.counter = scratch.counter
	if !contributed {
		return false, nil
	}

	text := strings.TrimSpace(scratch.SQL())
	if text == "" {
		return false, nil
	}

	text = trimFirstMatch(text, n.PrefixOverrides, true)
	text = trimFirstMatch(text, n.SuffixOverrides, false)

	var out strings.Builder
	out.WriteString(n.Prefix)
	out.WriteString(text)
	out.WriteString(n.Suffix)
	ctx.AppendSql(out.String())
	return true, nil
}

func trimFirstMatch(text string, overrides []string, leading bool) string {
	for _, tok := range overrides {
		if tok == "" {
			continue
		}
		if leading {
			if len(text) >= len(tok) && strings.EqualFold(text[:len(tok)], tok) {
				return strings.TrimLeft(text[len(tok):], " \t")
			}
		} else {
			if len(text) >= len(tok) && strings.EqualFold(text[len(text)-len(tok):], tok) {
				return strings.TrimRight(text[:len(text)-len(tok)], " \t")
			}
		}
	}
	return text
}

// Where applies Inner, and if it contributed, trims a leading AND/OR
// (case-insensitive) and prefixes "WHERE ". Abstains if Inner contributed
// nothing.
type Where struct {
	Inner SqlNode
}

var whereOverrides = []string{"AND ", "OR ", "AND\n", "OR\n", "AND\t", "OR\t"}

func (n *Where) Apply(ctx *DynamicContext) (bool, error) {
	trim := &Trim{Inner: n.Inner, Prefix: "WHERE ", PrefixOverrides: whereOverrides}
	return trim.Apply(ctx)
}

// Set applies Inner like Where, but prefixes "SET " and strips a trailing
// comma.
type Set struct {
	Inner SqlNode
}

func (n *Set) Apply(ctx *DynamicContext) (bool, error) {
	trim := &Trim{Inner: n.Inner, Prefix: "SET ", SuffixOverrides: []string{","}}
	return trim.Apply(ctx)
}

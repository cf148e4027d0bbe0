// Package routetable implements the gateway's route matcher: a
// segment trie keyed on listen_path, queried once per request ahead
// of any handler construction.
package routetable

import (
	"strings"

	"github.com/latticegw/gatewayd/internal/gwerrors"
	"github.com/latticegw/gatewayd/internal/proxydef"
)

// node is one path segment in the trie. literal children are keyed by
// their exact segment text; param is the single ":name" child, if any.
type node struct {
	literal   map[string]*node
	param     *node
	paramName string
	def       *proxydef.Definition
}

// Table is an immutable, built-once route matcher. It is safe for
// concurrent read-only use by many goroutines, the same way AppState
// is shared without locking.
type Table struct {
	root *node
}

// Match is the result of a successful lookup: the matched definition,
// any path parameters captured along the way, and the number of
// leading request-path segments consumed by the pattern's literal
// (non-parameter) prefix.
type Match struct {
	Definition      *proxydef.Definition
	Params          map[string]string
	LiteralSegments int
}

// Build constructs a Table from defs. A listen_path registered twice
// is a Routing error, not a silent override.
func Build(defs []proxydef.Definition) (*Table, error) {
	root := &node{literal: map[string]*node{}}
	for i := range defs {
		if err := insert(root, defs[i].ListenPath, &defs[i]); err != nil {
			return nil, err
		}
	}
	return &Table{root: root}, nil
}

func insert(root *node, path string, def *proxydef.Definition) error {
	segments := splitSegments(path)
	cur := root
	for _, seg := range segments {
		if strings.HasPrefix(seg, ":") {
			name := seg[1:]
			if cur.param == nil {
				cur.param = &node{literal: map[string]*node{}, paramName: name}
			}
			cur = cur.param
			continue
		}
		next, ok := cur.literal[seg]
		if !ok {
			next = &node{literal: map[string]*node{}}
			cur.literal[seg] = next
		}
		cur = next
	}
	if cur.def != nil {
		return gwerrors.New(gwerrors.Routing, "duplicate listen_path: "+path)
	}
	cur.def = def
	return nil
}

// Match finds the definition registered for path. Exact literal
// matches win over parameter matches at every segment; the longest
// literal prefix wins overall. A path that continues past a registered
// pattern matches that pattern as a prefix when no longer pattern
// matches, so an exact match wins over a prefix match. Matching is case-sensitive and does
// not percent-decode; a trailing slash is a distinct, significant
// segment.
func (t *Table) Match(path string) (Match, bool) {
	segments := splitSegments(path)
	params := map[string]string{}
	n, literalSegments, ok := match(t.root, segments, params, 0, true)
	if !ok || n.def == nil {
		return Match{}, false
	}
	return Match{Definition: n.def, Params: params, LiteralSegments: literalSegments}, true
}

// match walks the trie consuming segments one at a time. literalRun
// tracks whether every segment consumed so far (on this branch) was a
// literal match; literalSoFar is only advanced while literalRun still
// holds, so it ends up holding the length of the pattern's leading
// literal prefix, before the first parameter segment. When neither a
// literal nor a parameter child leads to a match, a node carrying a
// definition matches as a prefix of the remaining segments.
func match(cur *node, segments []string, params map[string]string, literalSoFar int, literalRun bool) (*node, int, bool) {
	if len(segments) == 0 {
		if cur.def != nil {
			return cur, literalSoFar, true
		}
		return nil, 0, false
	}
	seg, rest := segments[0], segments[1:]

	if next, ok := cur.literal[seg]; ok {
		nextLiteralSoFar := literalSoFar
		if literalRun {
			nextLiteralSoFar++
		}
		if n, lit, ok := match(next, rest, params, nextLiteralSoFar, literalRun); ok {
			return n, lit, true
		}
	}
	if cur.param != nil {
		trial := map[string]string{}
		for k, v := range params {
			trial[k] = v
		}
		trial[cur.param.paramName] = seg
		if n, lit, ok := match(cur.param, rest, trial, literalSoFar, false); ok {
			for k, v := range trial {
				params[k] = v
			}
			return n, lit, true
		}
	}
	if cur.def != nil {
		return cur, literalSoFar, true
	}
	return nil, 0, false
}

// splitSegments splits a path into segments, preserving a trailing
// empty segment for a trailing slash so that "/a/" and "/a" remain
// distinct registrations.
func splitSegments(path string) []string {
	trimmed := strings.TrimPrefix(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

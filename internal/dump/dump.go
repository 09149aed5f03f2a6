// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

// Package dump writes token streams and parse trees in human and machine
// readable forms.
package dump

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
	"gopkg.in/yaml.v3"

	"gopkg.microglot.org/luaparser.go/internal/compiler/lua"
	"gopkg.microglot.org/luaparser.go/internal/syntax"
)

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown output format %q: want text, json, or yaml", s)
}

// Tokens writes one line per token: the token type padded to a column
// followed by the quoted source text. Newline tokens have no text column.
func Tokens(w io.Writer, tokens []*syntax.Token) error {
	for _, token := range tokens {
		if _, err := fmt.Fprintf(w, "%-24s", token.Type); err != nil {
			return err
		}
		if token.Type != syntax.TokenTypeNewline {
			if _, err := fmt.Fprintf(w, "'%s'", token.Text); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	return nil
}

// Tree writes root and all of its descendants in the given format.
func Tree(w io.Writer, root lua.Node, format Format) error {
	r := describe(root)
	switch format {
	case FormatText:
		return writeText(w, r, 0)
	case FormatJSON:
		return writeJSON(w, r)
	case FormatYAML:
		return writeYAML(w, r)
	}
	return fmt.Errorf("unknown output format %q", format)
}

// record is the format independent description of one node.
type record struct {
	Kind     string
	Start    int
	End      int
	Detail   string
	Children []*record
}

func describe(n lua.Node) *record {
	rng := n.Range()
	r := &record{
		Kind:   n.Kind().String(),
		Start:  rng.Start,
		End:    rng.End,
		Detail: detail(n),
	}
	for _, child := range lua.Children(n) {
		r.Children = append(r.Children, describe(child))
	}
	return r
}

// detail is the part of a node that its kind and children do not show.
func detail(n lua.Node) string {
	switch n := n.(type) {
	case *lua.Chunk:
		return n.URI
	case *lua.Name:
		return n.ID
	case *lua.Number:
		return n.Text()
	case *lua.String:
		return strconv.Quote(n.Value)
	case *lua.Index:
		return n.Notation.String()
	case *lua.Field:
		if n.Bracketed {
			return "bracketed"
		}
	case *lua.LocalAssign:
		attribs := make([]string, 0, len(n.Attribs))
		for _, a := range n.Attribs {
			if a != "" {
				attribs = append(attribs, "<"+a+">")
			}
		}
		return strings.Join(attribs, " ")
	case *lua.BinaryOp:
		return n.Operator.String()
	case *lua.UnaryOp:
		return n.Operator.String()
	}
	return ""
}

func writeText(w io.Writer, r *record, depth int) error {
	line := fmt.Sprintf("%s%s [%d..%d]", strings.Repeat("  ", depth), r.Kind, r.Start, r.End)
	if r.Detail != "" {
		line = line + " " + r.Detail
	}
	if _, err := fmt.Fprintln(w, line); err != nil {
		return err
	}
	for _, child := range r.Children {
		if err := writeText(w, child, depth+1); err != nil {
			return err
		}
	}
	return nil
}

func (r *record) asMap() map[string]any {
	m := map[string]any{
		"kind":  r.Kind,
		"start": r.Start,
		"end":   r.End,
	}
	if r.Detail != "" {
		m["detail"] = r.Detail
	}
	if len(r.Children) > 0 {
		children := make([]any, 0, len(r.Children))
		for _, child := range r.Children {
			children = append(children, child.asMap())
		}
		m["children"] = children
	}
	return m
}

func writeJSON(w io.Writer, r *record) error {
	s, err := structpb.NewStruct(r.asMap())
	if err != nil {
		return err
	}
	b, err := protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(s)
	if err != nil {
		return err
	}
	if _, err := w.Write(b); err != nil {
		return err
	}
	_, err = fmt.Fprintln(w)
	return err
}

// asYAML builds the document node by hand so that keys keep a fixed order.
func (r *record) asYAML() *yaml.Node {
	scalar := func(tag string, value string) *yaml.Node {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
	}
	m := &yaml.Node{Kind: yaml.MappingNode}
	m.Content = append(m.Content,
		scalar("!!str", "kind"), scalar("!!str", r.Kind),
		scalar("!!str", "start"), scalar("!!int", strconv.Itoa(r.Start)),
		scalar("!!str", "end"), scalar("!!int", strconv.Itoa(r.End)),
	)
	if r.Detail != "" {
		m.Content = append(m.Content, scalar("!!str", "detail"), scalar("!!str", r.Detail))
	}
	if len(r.Children) > 0 {
		seq := &yaml.Node{Kind: yaml.SequenceNode}
		for _, child := range r.Children {
			seq.Content = append(seq.Content, child.asYAML())
		}
		m.Content = append(m.Content, scalar("!!str", "children"), seq)
	}
	return m
}

func writeYAML(w io.Writer, r *record) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r.asYAML()); err != nil {
		return err
	}
	return enc.Close()
}

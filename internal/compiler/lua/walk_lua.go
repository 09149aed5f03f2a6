// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package lua

import (
	"context"

	"gopkg.microglot.org/luaparser.go/internal/optional"
	"gopkg.microglot.org/luaparser.go/internal/syntax"
)

// Children returns the direct children of n in source order. A terminal
// else body contributes its statements directly.
func Children(n Node) []Node {
	var out []Node
	switch n := n.(type) {
	case *Chunk:
		out = append(out, n.Body)
	case *Block:
		out = appendStmts(out, n.Body)
	case *Assign:
		out = appendExprs(out, n.Targets)
		out = appendExprs(out, n.Values)
	case *LocalAssign:
		out = appendNames(out, n.Targets)
		out = appendExprs(out, n.Values)
	case *Do:
		out = appendStmts(out, n.Body)
	case *While:
		out = append(out, n.Test)
		out = appendStmts(out, n.Body)
	case *Repeat:
		out = appendStmts(out, n.Body)
		out = append(out, n.Test)
	case *If:
		out = append(out, n.Test)
		out = appendStmts(out, n.Body)
		out = appendOrElse(out, n.OrElse)
	case *ElseIf:
		out = append(out, n.Test)
		out = appendStmts(out, n.Body)
		out = appendOrElse(out, n.OrElse)
	case *Forin:
		out = appendNames(out, n.Targets)
		out = appendExprs(out, n.Iter)
		out = appendStmts(out, n.Body)
	case *Fornum:
		out = append(out, n.Target, n.Start, n.Stop)
		if n.Step != nil {
			out = append(out, n.Step)
		}
		out = appendStmts(out, n.Body)
	case *Label:
		out = append(out, n.ID)
	case *Goto:
		out = append(out, n.Label)
	case *Return:
		out = appendExprs(out, n.Values)
	case *Function:
		out = append(out, n.Name)
		out = appendExprs(out, n.Params)
		out = appendStmts(out, n.Body)
	case *Method:
		out = append(out, n.Source, n.Name)
		out = appendExprs(out, n.Params)
		out = appendStmts(out, n.Body)
	case *LocalFunction:
		out = append(out, n.Name)
		out = appendExprs(out, n.Params)
		out = appendStmts(out, n.Body)
	case *AnonymousFunction:
		out = appendExprs(out, n.Params)
		out = appendStmts(out, n.Body)
	case *Table:
		for _, f := range n.Fields {
			out = append(out, f)
		}
	case *Field:
		if n.Key != nil {
			out = append(out, n.Key)
		}
		out = append(out, n.Value)
	case *Index:
		out = append(out, n.Value, n.Idx)
	case *Call:
		out = append(out, n.Func)
		out = appendExprs(out, n.Args)
	case *Invoke:
		out = append(out, n.Source, n.Func)
		out = appendExprs(out, n.Args)
	case *BinaryOp:
		out = append(out, n.Left, n.Right)
	case *UnaryOp:
		out = append(out, n.Operand)
	}
	return out
}

func appendStmts(out []Node, stmts []Stmt) []Node {
	for _, s := range stmts {
		out = append(out, s)
	}
	return out
}

func appendExprs(out []Node, exprs []Expr) []Node {
	for _, e := range exprs {
		out = append(out, e)
	}
	return out
}

func appendNames(out []Node, names []*Name) []Node {
	for _, n := range names {
		out = append(out, n)
	}
	return out
}

func appendOrElse(out []Node, o OrElse) []Node {
	if e := o.ElseIf(); e != nil {
		return append(out, e)
	}
	if body, ok := o.Terminal(); ok {
		return appendStmts(out, body)
	}
	return out
}

// Walk returns a lazy pre-order iterator over root and all of its
// descendants. Children are visited in source order. Nothing is computed
// until Next is called and the iterator may be abandoned at any point.
func Walk(root Node) syntax.Iterator[Node] {
	return &walker{stack: []walkFrame{{nodes: []Node{root}}}}
}

type walkFrame struct {
	nodes []Node
	next  int
}

type walker struct {
	stack []walkFrame
}

func (w *walker) Next(ctx context.Context) optional.Optional[Node] {
	for len(w.stack) > 0 {
		top := &w.stack[len(w.stack)-1]
		if top.next >= len(top.nodes) {
			w.stack = w.stack[:len(w.stack)-1]
			continue
		}
		n := top.nodes[top.next]
		top.next = top.next + 1
		if children := Children(n); len(children) > 0 {
			w.stack = append(w.stack, walkFrame{nodes: children})
		}
		return optional.Some(n)
	}
	return optional.None[Node]()
}

func (w *walker) Close(ctx context.Context) error {
	w.stack = nil
	return nil
}

// Inspect calls f for root and each descendant in pre-order. When f returns
// false the children of that node are skipped.
func Inspect(root Node, f func(Node) bool) {
	if !f(root) {
		return
	}
	for _, child := range Children(root) {
		Inspect(child, f)
	}
}

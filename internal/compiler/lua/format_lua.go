// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package lua

import (
	"context"
	"strconv"
	"strings"
)

// Format renders the structure of a tree in a compact notation such as
// Chunk(Block([Assign([Name(i)],[Number(3)])])). Optional parts that are
// absent are left out.
func Format(n Node) string {
	var b strings.Builder
	writeNode(&b, n)
	return b.String()
}

func writeNode(b *strings.Builder, n Node) {
	switch n := n.(type) {
	case nil:
		_, _ = b.WriteString("_")
	case *Chunk:
		writeCall(b, "Chunk", func() { writeNode(b, n.Body) })
	case *Block:
		writeCall(b, "Block", func() { writeStmts(b, n.Body) })
	case *Assign:
		writeCall(b, "Assign", func() {
			writeExprs(b, n.Targets)
			_ = b.WriteByte(',')
			writeExprs(b, n.Values)
		})
	case *LocalAssign:
		writeCall(b, "LocalAssign", func() {
			_ = b.WriteByte('[')
			for x, t := range n.Targets {
				if x > 0 {
					_ = b.WriteByte(',')
				}
				writeNode(b, t)
				if n.Attribs[x] != "" {
					_, _ = b.WriteString("<" + n.Attribs[x] + ">")
				}
			}
			_, _ = b.WriteString("],")
			writeExprs(b, n.Values)
		})
	case *Do:
		writeCall(b, "Do", func() { writeStmts(b, n.Body) })
	case *While:
		writeCall(b, "While", func() {
			writeNode(b, n.Test)
			_ = b.WriteByte(',')
			writeStmts(b, n.Body)
		})
	case *Repeat:
		writeCall(b, "Repeat", func() {
			writeStmts(b, n.Body)
			_ = b.WriteByte(',')
			writeNode(b, n.Test)
		})
	case *If:
		writeCall(b, "If", func() { writeBranch(b, n.Test, n.Body, n.OrElse) })
	case *ElseIf:
		writeCall(b, "ElseIf", func() { writeBranch(b, n.Test, n.Body, n.OrElse) })
	case *Forin:
		writeCall(b, "Forin", func() {
			writeNames(b, n.Targets)
			_ = b.WriteByte(',')
			writeExprs(b, n.Iter)
			_ = b.WriteByte(',')
			writeStmts(b, n.Body)
		})
	case *Fornum:
		writeCall(b, "Fornum", func() {
			writeNode(b, n.Target)
			_ = b.WriteByte(',')
			writeNode(b, n.Start)
			_ = b.WriteByte(',')
			writeNode(b, n.Stop)
			if n.Step != nil {
				_ = b.WriteByte(',')
				writeNode(b, n.Step)
			}
			_ = b.WriteByte(',')
			writeStmts(b, n.Body)
		})
	case *Label:
		writeCall(b, "Label", func() { writeNode(b, n.ID) })
	case *Goto:
		writeCall(b, "Goto", func() { writeNode(b, n.Label) })
	case *Return:
		writeCall(b, "Return", func() { writeExprs(b, n.Values) })
	case *Function:
		writeCall(b, "Function", func() {
			writeNode(b, n.Name)
			_ = b.WriteByte(',')
			writeFuncBody(b, n.Params, n.Body)
		})
	case *Method:
		writeCall(b, "Method", func() {
			writeNode(b, n.Source)
			_ = b.WriteByte(',')
			writeNode(b, n.Name)
			_ = b.WriteByte(',')
			writeFuncBody(b, n.Params, n.Body)
		})
	case *LocalFunction:
		writeCall(b, "LocalFunction", func() {
			writeNode(b, n.Name)
			_ = b.WriteByte(',')
			writeFuncBody(b, n.Params, n.Body)
		})
	case *AnonymousFunction:
		writeCall(b, "AnonymousFunction", func() { writeFuncBody(b, n.Params, n.Body) })
	case *Name:
		_, _ = b.WriteString("Name(" + n.ID + ")")
	case *Number:
		_, _ = b.WriteString("Number(" + n.Text() + ")")
	case *String:
		_, _ = b.WriteString("String(" + strconv.Quote(n.Value) + ")")
	case *Table:
		writeCall(b, "Table", func() {
			_ = b.WriteByte('[')
			for x, f := range n.Fields {
				if x > 0 {
					_ = b.WriteByte(',')
				}
				if f.Bracketed {
					_ = b.WriteByte('[')
					writeNode(b, f.Key)
					_ = b.WriteByte(']')
					continue
				}
				writeNode(b, f.Key)
			}
			_, _ = b.WriteString("],")
			writeExprs(b, n.Values())
		})
	case *Field:
		writeCall(b, "Field", func() {
			writeNode(b, n.Key)
			_ = b.WriteByte(',')
			writeNode(b, n.Value)
		})
	case *Index:
		writeCall(b, "Index", func() {
			writeNode(b, n.Value)
			_ = b.WriteByte(',')
			writeNode(b, n.Idx)
		})
	case *Call:
		writeCall(b, "Call", func() {
			writeNode(b, n.Func)
			_ = b.WriteByte(',')
			writeExprs(b, n.Args)
		})
	case *Invoke:
		writeCall(b, "Invoke", func() {
			writeNode(b, n.Source)
			_ = b.WriteByte(',')
			writeNode(b, n.Func)
			_ = b.WriteByte(',')
			writeExprs(b, n.Args)
		})
	case *BinaryOp:
		writeCall(b, n.Kind().String(), func() {
			writeNode(b, n.Left)
			_ = b.WriteByte(',')
			writeNode(b, n.Right)
		})
	case *UnaryOp:
		writeCall(b, n.Kind().String(), func() { writeNode(b, n.Operand) })
	default:
		// Leaves without content print their kind alone.
		_, _ = b.WriteString(n.Kind().String())
	}
}

func writeCall(b *strings.Builder, name string, args func()) {
	_, _ = b.WriteString(name)
	_ = b.WriteByte('(')
	args()
	_ = b.WriteByte(')')
}

func writeBranch(b *strings.Builder, test Expr, body []Stmt, orElse OrElse) {
	writeNode(b, test)
	_ = b.WriteByte(',')
	writeStmts(b, body)
	if e := orElse.ElseIf(); e != nil {
		_ = b.WriteByte(',')
		writeNode(b, e)
	} else if stmts, ok := orElse.Terminal(); ok {
		_ = b.WriteByte(',')
		writeStmts(b, stmts)
	}
}

func writeFuncBody(b *strings.Builder, params []Expr, body []Stmt) {
	writeExprs(b, params)
	_ = b.WriteByte(',')
	writeStmts(b, body)
}

func writeStmts(b *strings.Builder, stmts []Stmt) {
	_ = b.WriteByte('[')
	for x, s := range stmts {
		if x > 0 {
			_ = b.WriteByte(',')
		}
		writeNode(b, s)
	}
	_ = b.WriteByte(']')
}

func writeExprs(b *strings.Builder, exprs []Expr) {
	_ = b.WriteByte('[')
	for x, e := range exprs {
		if x > 0 {
			_ = b.WriteByte(',')
		}
		writeNode(b, e)
	}
	_ = b.WriteByte(']')
}

func writeNames(b *strings.Builder, names []*Name) {
	_ = b.WriteByte('[')
	for x, n := range names {
		if x > 0 {
			_ = b.WriteByte(',')
		}
		writeNode(b, n)
	}
	_ = b.WriteByte(']')
}

// Equal reports whether two trees have the same shape, the same node values,
// and cover the same token text at every node.
func Equal(a Node, b Node) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if Format(a) != Format(b) {
		return false
	}
	ctx := context.Background()
	wa := Walk(a)
	wb := Walk(b)
	defer wa.Close(ctx)
	defer wb.Close(ctx)
	for {
		na := wa.Next(ctx)
		nb := wb.Next(ctx)
		if na.IsPresent() != nb.IsPresent() {
			return false
		}
		if !na.IsPresent() {
			return true
		}
		x, y := na.Value(), nb.Value()
		if x.Kind() != y.Kind() || x.Range() != y.Range() || Source(x) != Source(y) {
			return false
		}
	}
}

// Package infer walks the typed AST and assigns each node a principal type,
// generating and immediately solving unification constraints as it goes. It
// implements algorithm W: there is no separate constraint-collection pass,
// each node is unified against its context the moment it is visited.
package infer

import (
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/mlcore/hindley/internal/ast"
	"github.com/mlcore/hindley/internal/env"
	"github.com/mlcore/hindley/internal/herr"
	"github.com/mlcore/hindley/internal/types"
	"github.com/mlcore/hindley/internal/unify"
)

// scope is a chain of local bindings introduced by fn/let/letrec, falling
// back to the Environment's top-level term table once the chain is
// exhausted. It exists because lambda parameters and let-bound names are not
// top-level terms and have no business living in the Environment's term
// table.
type scope struct {
	parent *scope
	name   string
	typ    types.Type
	env    *env.Environment
}

func newScope(e *env.Environment) *scope { return &scope{env: e} }

func (s *scope) push(name string, t types.Type) *scope {
	return &scope{parent: s, name: name, typ: t, env: s.env}
}

func (s *scope) lookup(name string) (types.Type, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if cur.name == name {
			return cur.typ, true
		}
	}
	if info := s.env.LookupTerm(name); info != nil {
		if sch := info.Scheme(); sch != nil {
			return sch, true
		}
	}
	return nil, false
}

// Infer assigns a principal type to node and every subexpression it
// contains, resolving free variables against e's top-level terms. The
// returned type is pruned.
func Infer(e *env.Environment, node ast.Node) (types.Type, error) {
	t, err := infer(newScope(e), node, nil)
	if err != nil {
		return nil, err
	}
	return unify.Prune(t), nil
}

// DeriveType returns the principal type previously assigned to node by
// Infer, pruned to its representative.
func DeriveType(node ast.Node) types.Type {
	t := ast.TypeOf(node)
	if t == nil {
		return nil
	}
	return unify.Prune(t)
}

func infer(s *scope, node ast.Node, nonGeneric []types.Type) (types.Type, error) {
	switch n := node.(type) {
	case *ast.Literal:
		return inferLiteral(s, n)
	case *ast.Variable:
		return inferVariable(s, n, nonGeneric)
	case *ast.Abstraction:
		return inferAbstraction(s, n, nonGeneric)
	case *ast.Application:
		return inferApplication(s, n, nonGeneric)
	case *ast.Let:
		return inferLet(s, n, nonGeneric)
	case *ast.Letrec:
		return inferLetrec(s, n, nonGeneric)
	case *ast.If:
		return inferIf(s, n, nonGeneric)
	case *ast.Sequence:
		return inferSequence(s, n, nonGeneric)
	case *ast.HostEscape:
		return inferHostEscape(s, n)
	default:
		return nil, herr.New(herr.ParseError, node.Pos(), "infer: unrecognised node %T", node)
	}
}

func inferLiteral(s *scope, n *ast.Literal) (types.Type, error) {
	t := s.env.IntType()
	ast.SetType(n, t)
	return t, nil
}

func inferVariable(s *scope, n *ast.Variable, nonGeneric []types.Type) (types.Type, error) {
	scheme, ok := s.lookup(n.Name)
	if !ok {
		return nil, herr.New(herr.UnboundVariable, n.Pos(), "unbound variable %q", n.Name)
	}
	instance, _ := unify.Fresh(s.env.Vars(), scheme, nonGeneric)
	ast.SetType(n, instance)
	return instance, nil
}

func inferAbstraction(s *scope, n *ast.Abstraction, nonGeneric []types.Type) (types.Type, error) {
	paramVars := make([]*types.Var, len(n.Params))
	paramTypes := make([]types.Type, len(n.Params))
	inner := s
	innerNonGeneric := nonGeneric
	for i, p := range n.Params {
		v := s.env.NewVar()
		paramVars[i] = v
		paramTypes[i] = v
		inner = inner.push(p, v)
		innerNonGeneric = append(innerNonGeneric, types.Type(v))
	}
	bodyType, err := infer(inner, n.Body, innerNonGeneric)
	if err != nil {
		return nil, err
	}
	t := &types.Fun{From: paramTypes, To: bodyType}
	ast.SetType(n, t)
	return t, nil
}

func inferApplication(s *scope, n *ast.Application, nonGeneric []types.Type) (types.Type, error) {
	ratorType, err := infer(s, n.Rator, nonGeneric)
	if err != nil {
		return nil, err
	}
	randTypes := make([]types.Type, len(n.Rands))
	for i, r := range n.Rands {
		rt, err := infer(s, r, nonGeneric)
		if err != nil {
			return nil, err
		}
		randTypes[i] = rt
	}
	result := s.env.NewVar()
	if err := unify.Unify(ratorType, &types.Fun{From: randTypes, To: result}); err != nil {
		return nil, wrapUnifyError(n.Pos(), err)
	}
	ast.SetType(n, result)
	return result, nil
}

func inferLet(s *scope, n *ast.Let, nonGeneric []types.Type) (types.Type, error) {
	inner := s
	for _, b := range n.Bindings {
		// Inferred with the *outer* nonGeneric set, not extended: this is
		// exactly what makes let-polymorphism possible, unlike letrec.
		valueType, err := infer(inner, b.Body, nonGeneric)
		if err != nil {
			return nil, err
		}
		inner = inner.push(b.Name, valueType)
	}
	bodyType, err := infer(inner, n.Body, nonGeneric)
	if err != nil {
		return nil, err
	}
	ast.SetType(n, bodyType)
	return bodyType, nil
}

func inferLetrec(s *scope, n *ast.Letrec, nonGeneric []types.Type) (types.Type, error) {
	placeholders := make([]*types.Var, len(n.Bindings))
	inner := s
	innerNonGeneric := nonGeneric
	for i, b := range n.Bindings {
		v := s.env.NewVar()
		placeholders[i] = v
		inner = inner.push(b.Name, v)
		innerNonGeneric = append(innerNonGeneric, types.Type(v))
	}
	for i, b := range n.Bindings {
		valueType, err := infer(inner, b.Body, innerNonGeneric)
		if err != nil {
			return nil, err
		}
		if err := unify.Unify(placeholders[i], valueType); err != nil {
			return nil, wrapUnifyError(b.Body.Pos(), err)
		}
	}
	// The placeholders drop out of non_generic for the body: uses of the
	// recursively-bound names outside the recursive group are polymorphic.
	bodyType, err := infer(inner, n.Body, nonGeneric)
	if err != nil {
		return nil, err
	}
	ast.SetType(n, bodyType)
	return bodyType, nil
}

func inferIf(s *scope, n *ast.If, nonGeneric []types.Type) (types.Type, error) {
	condType, err := infer(s, n.Cond, nonGeneric)
	if err != nil {
		return nil, err
	}
	if err := unify.Unify(condType, s.env.BoolType()); err != nil {
		return nil, wrapUnifyError(n.Cond.Pos(), err)
	}
	thenType, err := infer(s, n.Then, nonGeneric)
	if err != nil {
		return nil, err
	}
	elseType, err := infer(s, n.Else, nonGeneric)
	if err != nil {
		return nil, err
	}
	if err := unify.Unify(thenType, elseType); err != nil {
		return nil, wrapUnifyError(n.Pos(), err)
	}
	ast.SetType(n, thenType)
	return thenType, nil
}

func inferSequence(s *scope, n *ast.Sequence, nonGeneric []types.Type) (types.Type, error) {
	if len(n.Items) == 0 {
		t := s.env.UnitType()
		ast.SetType(n, t)
		return t, nil
	}
	var last types.Type
	for _, item := range n.Items {
		t, err := infer(s, item, nonGeneric)
		if err != nil {
			return nil, err
		}
		last = t
	}
	ast.SetType(n, last)
	return last, nil
}

func inferHostEscape(s *scope, n *ast.HostEscape) (types.Type, error) {
	// The type already sits on the node, set by the value parser from the
	// surface "(lisp <type> <raw>)" annotation; it is trusted without
	// further checking.
	return ast.TypeOf(n), nil
}

// wrapUnifyError translates a package unify failure, which carries only a
// Kind and a message, into the positioned herr taxonomy the rest of the
// engine reports through.
func wrapUnifyError(pos lexer.Position, err error) error {
	ue, ok := err.(*unify.Error)
	if !ok {
		return herr.New(herr.TypeMismatch, pos, "%v", err)
	}
	switch ue.Kind {
	case unify.KindArityMismatch:
		return herr.New(herr.ArityMismatch, pos, "%s", ue.Msg)
	case unify.KindInfiniteType:
		return herr.New(herr.InfiniteType, pos, "%s", ue.Msg)
	default:
		return herr.New(herr.TypeMismatch, pos, "%s", ue.Msg)
	}
}

package entity

import "reflex/internal/source"

// ExprKind classifies expression nodes handed to the constant evaluator.
type ExprKind uint8

const (
	ExprInvalid ExprKind = iota
	ExprIntLit
	ExprBoolLit
	ExprNullptr
	ExprStringLit
	ExprReflect
	ExprDeclRef
	ExprParamRef
	ExprThis
	ExprMember
	ExprBinary
	ExprCall
	ExprMetaCall
	ExprInitList
	ExprTemplateParam
	ExprAddrOf
	ExprLift
	ExprSplice
	ExprConstant
)

// BinaryOp is a binary operator usable in constant expressions.
type BinaryOp uint8

const (
	BinAdd BinaryOp = iota + 1
	BinSub
	BinMul
	BinDiv
	BinRem
	BinEq
	BinNe
	BinLt
	BinLe
	BinGt
	BinGe
	BinAnd
	BinOr
)

// ReflOperandKind says what a reflect-operator expression names.
type ReflOperandKind uint8

const (
	ReflOperandNull ReflOperandKind = iota
	ReflOperandType
	ReflOperandDecl
	ReflOperandTemplate
	ReflOperandNamespace
)

// ReflOperand is the operand of the reflect operator.
type ReflOperand struct {
	Kind     ReflOperandKind
	Type     TypeID
	Decl     DeclID
	Template TemplateID
}

// Expr is one expression node.
type Expr struct {
	Kind    ExprKind
	Type    TypeID
	Span    source.Span
	Int     int64
	Bool    bool
	Text    string
	Decl    DeclID // DeclRef target, Member field, Call callee
	Index   uint32 // ParamRef / TemplateParam index, MetaCall ID, Constant slot
	Op      BinaryOp
	L       ExprID // Binary lhs, Member base, Call receiver, AddrOf/Lift/Splice operand
	R       ExprID
	Args    []ExprID
	Operand ReflOperand
	Result  TypeID // ExprLift: result type recorded by the lift
}

// Exprs is the expression arena.
type Exprs struct {
	data []Expr
}

func newExprs() *Exprs {
	return &Exprs{data: make([]Expr, 1, 64)}
}

// New stores e and returns its ID.
func (a *Exprs) New(e Expr) ExprID {
	id := ExprID(arenaIndex(len(a.data), "exprs"))
	a.data = append(a.data, e)
	return id
}

// Len is the number of stored nodes, counting the reserved zero slot.
func (a *Exprs) Len() int { return len(a.data) }

// Get returns the node for id or nil.
func (a *Exprs) Get(id ExprID) *Expr {
	if !id.IsValid() || int(id) >= len(a.data) {
		return nil
	}
	return &a.data[id]
}

// Synthetic expression construction. These helpers are the adapter surface
// the reflection core uses to turn reflections back into syntax.

func (p *Program) IntLit(t TypeID, v int64) ExprID {
	return p.Exprs.New(Expr{Kind: ExprIntLit, Type: t, Int: v})
}

func (p *Program) BoolLit(v bool) ExprID {
	return p.Exprs.New(Expr{Kind: ExprBoolLit, Type: p.Types.Builtins().Bool, Bool: v})
}

func (p *Program) NullptrLit() ExprID {
	return p.Exprs.New(Expr{Kind: ExprNullptr, Type: p.Types.Builtins().Nullptr})
}

// StringLit builds a narrow string literal of type const char[len+1].
func (p *Program) StringLit(s string) ExprID {
	b := p.Types.Builtins()
	n := arenaIndex(len(s)+1, "string literal")
	t := p.Types.Array(p.Types.Qualified(b.Char, QualConst), n)
	return p.Exprs.New(Expr{Kind: ExprStringLit, Type: t, Text: s})
}

func (p *Program) Reflect(op ReflOperand) ExprID {
	return p.Exprs.New(Expr{Kind: ExprReflect, Type: p.Types.Builtins().Info, Operand: op})
}

func (p *Program) DeclRef(d DeclID) ExprID {
	t := NoTypeID
	if decl := p.Decl(d); decl != nil {
		t = decl.Type
	}
	return p.Exprs.New(Expr{Kind: ExprDeclRef, Type: t, Decl: d})
}

func (p *Program) ParamRef(index uint32, t TypeID) ExprID {
	return p.Exprs.New(Expr{Kind: ExprParamRef, Type: t, Index: index})
}

func (p *Program) This(t TypeID) ExprID {
	return p.Exprs.New(Expr{Kind: ExprThis, Type: t})
}

func (p *Program) Member(base ExprID, field DeclID) ExprID {
	t := NoTypeID
	if decl := p.Decl(field); decl != nil {
		t = decl.Type
	}
	return p.Exprs.New(Expr{Kind: ExprMember, Type: t, L: base, Decl: field})
}

func (p *Program) Binary(op BinaryOp, t TypeID, l, r ExprID) ExprID {
	return p.Exprs.New(Expr{Kind: ExprBinary, Type: t, Op: op, L: l, R: r})
}

// Call builds a call of fn. receiver is NoExprID for non-member calls.
func (p *Program) Call(fn DeclID, receiver ExprID, args ...ExprID) ExprID {
	t := NoTypeID
	if decl := p.Decl(fn); decl != nil {
		if info, ok := p.Types.FnInfo(decl.Type); ok {
			t = info.Result
		}
	}
	return p.Exprs.New(Expr{Kind: ExprCall, Type: t, Decl: fn, L: receiver, Args: args})
}

// MetaCall builds a call of the metafunction with the given numeric ID.
func (p *Program) MetaCall(id uint32, t TypeID, args ...ExprID) ExprID {
	return p.Exprs.New(Expr{Kind: ExprMetaCall, Type: t, Index: id, Args: args})
}

func (p *Program) InitList(t TypeID, elems ...ExprID) ExprID {
	return p.Exprs.New(Expr{Kind: ExprInitList, Type: t, Args: elems})
}

// TemplateParamRef refers to the index-th template parameter of the
// enclosing template. Outside an instantiation it is value-dependent.
func (p *Program) TemplateParamRef(index uint32, t TypeID) ExprID {
	return p.Exprs.New(Expr{Kind: ExprTemplateParam, Type: t, Index: index})
}

func (p *Program) AddrOf(operand ExprID) ExprID {
	t := NoTypeID
	if e := p.Exprs.Get(operand); e != nil {
		t = p.Types.Pointer(e.Type)
	}
	return p.Exprs.New(Expr{Kind: ExprAddrOf, Type: t, L: operand})
}

// Lift wraps operand so that it evaluates to a reflection of its value
// recorded with result type t.
func (p *Program) Lift(operand ExprID, t TypeID) ExprID {
	return p.Exprs.New(Expr{Kind: ExprLift, Type: p.Types.Builtins().Info, L: operand, Result: t})
}

// Constant refers to slot in the evaluator's constant pool. It stands
// for a value that has no literal spelling, such as a reflection.
func (p *Program) Constant(slot uint32, t TypeID) ExprID {
	return p.Exprs.New(Expr{Kind: ExprConstant, Type: t, Index: slot})
}

// Span attaches a source span to an expression and returns it.
func (p *Program) WithSpan(id ExprID, sp source.Span) ExprID {
	if e := p.Exprs.Get(id); e != nil {
		e.Span = sp
	}
	return id
}

// SubstituteExpr copies e replacing template parameter references by the
// expressions in args. Nodes without parameter references are shared.
func (p *Program) SubstituteExpr(id ExprID, args []ExprID) ExprID {
	e := p.Exprs.Get(id)
	if e == nil {
		return id
	}
	switch e.Kind {
	case ExprTemplateParam:
		if int(e.Index) < len(args) && args[e.Index].IsValid() {
			return args[e.Index]
		}
		return id
	case ExprBinary, ExprMember, ExprAddrOf, ExprLift, ExprSplice, ExprCall, ExprMetaCall, ExprInitList:
	default:
		return id
	}
	cp := *e
	changed := false
	if cp.L.IsValid() {
		if n := p.SubstituteExpr(cp.L, args); n != cp.L {
			cp.L, changed = n, true
		}
	}
	if cp.R.IsValid() {
		if n := p.SubstituteExpr(cp.R, args); n != cp.R {
			cp.R, changed = n, true
		}
	}
	if len(cp.Args) > 0 {
		out := make([]ExprID, len(cp.Args))
		for i, a := range cp.Args {
			out[i] = p.SubstituteExpr(a, args)
			if out[i] != a {
				changed = true
			}
		}
		cp.Args = out
	}
	if !changed {
		return id
	}
	return p.Exprs.New(cp)
}

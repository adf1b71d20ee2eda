package entity

import (
	"strconv"
	"strings"
)

// TypeString renders t in source-like notation for diagnostics.
func (p *Program) TypeString(t TypeID) string {
	var sb strings.Builder
	p.writeType(&sb, t, 0)
	return sb.String()
}

func (p *Program) writeType(sb *strings.Builder, t TypeID, depth int) {
	tt, ok := p.Types.Lookup(t)
	if !ok || depth > 32 {
		sb.WriteString("<invalid>")
		return
	}
	if tt.Quals&QualConst != 0 && tt.Kind != KindFunction {
		sb.WriteString("const ")
	}
	if tt.Quals&QualVolatile != 0 && tt.Kind != KindFunction {
		sb.WriteString("volatile ")
	}
	switch tt.Kind {
	case KindVoid:
		sb.WriteString("void")
	case KindBool:
		sb.WriteString("bool")
	case KindChar:
		sb.WriteString("char")
	case KindInt:
		sb.WriteString(intName(tt.Width, false))
	case KindUint:
		sb.WriteString(intName(tt.Width, true))
	case KindFloat:
		if tt.Width == Width32 {
			sb.WriteString("float")
		} else {
			sb.WriteString("double")
		}
	case KindNullptr:
		sb.WriteString("nullptr_t")
	case KindInfo:
		sb.WriteString("info")
	case KindPointer:
		p.writeType(sb, tt.Elem, depth+1)
		sb.WriteString("*")
	case KindLValueRef:
		p.writeType(sb, tt.Elem, depth+1)
		sb.WriteString("&")
	case KindRValueRef:
		p.writeType(sb, tt.Elem, depth+1)
		sb.WriteString("&&")
	case KindArray:
		p.writeType(sb, tt.Elem, depth+1)
		sb.WriteString("[")
		if tt.Count > 0 {
			sb.WriteString(strconv.FormatUint(uint64(tt.Count), 10))
		}
		sb.WriteString("]")
	case KindFunction:
		info, _ := p.Types.FnInfo(t)
		p.writeType(sb, info.Result, depth+1)
		sb.WriteString("(")
		for i, param := range info.Params {
			if i > 0 {
				sb.WriteString(", ")
			}
			p.writeType(sb, param, depth+1)
		}
		if info.Variadic {
			if len(info.Params) > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString("...")
		}
		sb.WriteString(")")
		if info.Quals&QualConst != 0 {
			sb.WriteString(" const")
		}
		if info.Noexcept {
			sb.WriteString(" noexcept")
		}
	case KindRecord, KindEnum, KindAlias:
		sb.WriteString(p.QualifiedName(tt.Decl))
		if d := p.Decl(tt.Decl); d != nil && d.Has(FlagSpecialization) {
			sb.WriteString("<")
			for i, a := range d.Args {
				if i > 0 {
					sb.WriteString(", ")
				}
				p.writeArg(sb, a, depth+1)
			}
			sb.WriteString(">")
		}
	case KindTemplateParam:
		sb.WriteString("T")
		sb.WriteString(strconv.FormatUint(uint64(tt.Count), 10))
	default:
		sb.WriteString(tt.Kind.String())
	}
}

func (p *Program) writeArg(sb *strings.Builder, a TemplateArg, depth int) {
	switch a.Kind {
	case ArgType:
		p.writeType(sb, a.Type, depth)
	case ArgDecl:
		sb.WriteString(p.QualifiedName(a.Decl))
	case ArgTemplate:
		sb.WriteString(p.QualifiedName(p.TemplateDecl(a.Template)))
	case ArgValue:
		if e := p.Exprs.Get(a.Value); e != nil && e.Kind == ExprIntLit {
			sb.WriteString(strconv.FormatInt(e.Int, 10))
			return
		}
		sb.WriteString("(")
		p.writeType(sb, a.Type, depth)
		sb.WriteString(")...")
	}
}

func intName(w Width, unsigned bool) string {
	var name string
	switch w {
	case Width8:
		name = "char"
	case Width16:
		name = "short"
	case Width64:
		name = "long"
	case WidthAny:
		if unsigned {
			return "size_t"
		}
		return "ptrdiff_t"
	default:
		name = "int"
	}
	if unsigned {
		if w == Width32 {
			return "unsigned"
		}
		return "unsigned " + name
	}
	if w == Width8 {
		return "signed char"
	}
	return name
}

// QualifiedName joins the names of d and its enclosing scopes with "::".
// The global namespace and anonymous scopes contribute nothing.
func (p *Program) QualifiedName(d DeclID) string {
	var parts []string
	for cur := p.Decl(d); cur != nil && cur.Parent.IsValid(); cur = p.Decl(cur.Parent) {
		if cur.Kind == DeclTemplate {
			continue
		}
		if name, _ := p.Strings.Lookup(cur.Name); name != "" {
			parts = append(parts, name)
		}
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, "::")
}

package entity

// TypeID identifies an interned type. NoTypeID marks its absence.
type TypeID uint32

// DeclID identifies a declaration in the program arena.
type DeclID uint32

// TemplateID identifies a template.
type TemplateID uint32

// BaseID identifies a base-class specifier.
type BaseID uint32

// AnnotID identifies an annotation attached to a declaration.
type AnnotID uint32

// SpecID identifies a data member description awaiting define_class.
type SpecID uint32

// ExprID identifies an expression node.
type ExprID uint32

const (
	NoTypeID     TypeID     = 0
	NoDeclID     DeclID     = 0
	NoTemplateID TemplateID = 0
	NoBaseID     BaseID     = 0
	NoAnnotID    AnnotID    = 0
	NoSpecID     SpecID     = 0
	NoExprID     ExprID     = 0
)

func (id TypeID) IsValid() bool     { return id != NoTypeID }
func (id DeclID) IsValid() bool     { return id != NoDeclID }
func (id TemplateID) IsValid() bool { return id != NoTemplateID }
func (id BaseID) IsValid() bool     { return id != NoBaseID }
func (id AnnotID) IsValid() bool    { return id != NoAnnotID }
func (id SpecID) IsValid() bool     { return id != NoSpecID }
func (id ExprID) IsValid() bool     { return id != NoExprID }

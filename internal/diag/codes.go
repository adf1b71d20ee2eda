package diag

import "fmt"

// Code is a stable numeric diagnostic identifier.
type Code uint16

const (
	UnknownCode Code = 0

	// Reflection core (4000-4099).
	ReflInfo                  Code = 4000
	ReflKindMismatch          Code = 4001 // operand kind not accepted by the operation
	ReflNotConstant           Code = 4002 // argument is not a constant expression
	ReflIncomplete            Code = 4003 // entity is incomplete
	ReflInaccessible          Code = 4004 // entity is not accessible from the context
	ReflNoIdentifier          Code = 4005 // entity has no identifier
	ReflInvalidIdentifier     Code = 4006 // supplied name is not an identifier
	ReflTemplateArgIneligible Code = 4007 // reflection may not act as a template argument
	ReflSplicePosition        Code = 4008 // kind not permitted in this splice position
	ReflSpliceNonStaticMember Code = 4009 // non-static member needs an explicit receiver
	ReflAlreadyComplete       Code = 4010 // define_class on a complete class
	ReflDepthExceeded         Code = 4011 // evaluation nested too deeply
	ReflArgCount              Code = 4012 // wrong number of metafunction arguments
	ReflUnknownMetafunction   Code = 4013 // ID outside the table
	ReflSubstitutionFailed    Code = 4014 // template arguments rejected
	ReflBitFieldAlignment     Code = 4015 // alignment of a bit-field is undefined
	ReflInvokeFailed          Code = 4016 // reflect_invoke could not form the call
	ReflBadMemberSpec         Code = 4017 // inconsistent data_member_spec options
	ReflNotAType              Code = 4018 // splice-from-argument operand is not a type
	ReflNotSpecialization     Code = 4019 // entity has no template arguments
	ReflNotAnOperator         Code = 4020 // operator_of on a non-operator
	ReflBadArgument           Code = 4021 // non-reflection argument has the wrong shape
	ReflLayout                Code = 4022 // layout could not be computed
	ReflDependentSplice       Code = 4023 // splice operand is value-dependent
)

var codeDescription = map[Code]string{
	UnknownCode:               "Unknown error",
	ReflInfo:                  "Reflection information",
	ReflKindMismatch:          "Reflection kind not supported by operation",
	ReflNotConstant:           "Argument is not a constant expression",
	ReflIncomplete:            "Entity is incomplete",
	ReflInaccessible:          "Entity is not accessible",
	ReflNoIdentifier:          "Entity has no identifier",
	ReflInvalidIdentifier:     "Name is not a valid identifier",
	ReflTemplateArgIneligible: "Reflection cannot be used as a template argument",
	ReflSplicePosition:        "Reflection cannot be spliced here",
	ReflSpliceNonStaticMember: "Splice of non-static member requires an object",
	ReflAlreadyComplete:       "Class is already complete",
	ReflDepthExceeded:         "Constant evaluation nested too deeply",
	ReflArgCount:              "Wrong number of metafunction arguments",
	ReflUnknownMetafunction:   "Unknown metafunction",
	ReflSubstitutionFailed:    "Template substitution failed",
	ReflBitFieldAlignment:     "Alignment of a bit-field is undefined",
	ReflInvokeFailed:          "Reflected invocation failed",
	ReflBadMemberSpec:         "Invalid data member description",
	ReflNotAType:              "Reflection does not represent a type",
	ReflNotSpecialization:     "Entity has no template arguments",
	ReflNotAnOperator:         "Entity is not an operator function",
	ReflBadArgument:           "Malformed metafunction argument",
	ReflLayout:                "Layout cannot be computed",
	ReflDependentSplice:       "Splice operand is value-dependent",
}

// ID renders the code in its stable textual form, e.g. "REF4001".
func (c Code) ID() string {
	switch {
	case c >= 4000 && c < 4100:
		return fmt.Sprintf("REF%04d", uint16(c))
	default:
		return fmt.Sprintf("E%04d", uint16(c))
	}
}

// Title returns the short human description of the code.
func (c Code) Title() string {
	if s, ok := codeDescription[c]; ok {
		return s
	}
	return codeDescription[UnknownCode]
}

func (c Code) String() string {
	return c.ID()
}

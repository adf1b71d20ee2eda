package meta

import (
	"reflex/internal/refl"
	"reflex/internal/source"
)

// ResultKind is the shape of a metafunction result.
type ResultKind uint8

const (
	ResultBool ResultKind = iota + 1
	ResultReflection
	ResultSize
	ResultSourceLocation
	// ResultSpliceFromArgument takes its type from the reflection passed
	// as the first argument.
	ResultSpliceFromArgument
)

func (k ResultKind) String() string {
	switch k {
	case ResultBool:
		return "bool"
	case ResultReflection:
		return "reflection"
	case ResultSize:
		return "size"
	case ResultSourceLocation:
		return "source-location"
	case ResultSpliceFromArgument:
		return "splice-from-argument"
	default:
		return "unknown"
	}
}

// Result is the value produced by a metafunction call. Value always holds
// the constant handed back to the evaluator. Source locations are encoded
// as an aggregate {line, column, file_name} whose last element points at a
// static string; Loc carries the decoded position.
type Result struct {
	Kind  ResultKind
	Value refl.Value
	Loc   source.Location
}

func boolResult(b bool) Result { return Result{Kind: ResultBool, Value: refl.Bool(b)} }

func sizeResult(n int64) Result { return Result{Kind: ResultSize, Value: refl.Int(n)} }

func reflResult(v refl.Value) Result { return Result{Kind: ResultReflection, Value: v} }

func locResult(loc source.Location, file refl.Value) Result {
	return Result{
		Kind:  ResultSourceLocation,
		Value: refl.Aggregate(refl.Int(int64(loc.Line)), refl.Int(int64(loc.Column)), file),
		Loc:   loc,
	}
}

func valueResult(v refl.Value) Result { return Result{Kind: ResultSpliceFromArgument, Value: v} }

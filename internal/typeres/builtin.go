// Package typeres resolves schema type references: it follows simpleType
// restriction chains down to a built-in primitive and detects enumeration
// types. Lookups are global: a definition may live in any document of the
// loaded family.
package typeres

// Category is the coarse kind of a built-in primitive.
type Category int

const (
	CategoryNone Category = iota
	CategoryString
	CategoryNumeric
	CategoryBoolean
)

func (c Category) String() string {
	switch c {
	case CategoryString:
		return "string"
	case CategoryNumeric:
		return "numeric"
	case CategoryBoolean:
		return "boolean"
	default:
		return "none"
	}
}

// builtins is the fixed primitive set resolution bottoms out at. Anything
// outside this set is either a user-defined simpleType or an opaque custom
// type name.
var builtins = map[string]Category{
	"string":   CategoryString,
	"anyURI":   CategoryString,
	"dateTime": CategoryString,
	"date":     CategoryString,
	"token":    CategoryString,
	"ID":       CategoryString,
	"IDREF":    CategoryString,
	"NCName":   CategoryString,

	"decimal": CategoryNumeric,
	"integer": CategoryNumeric,
	"int":     CategoryNumeric,
	"long":    CategoryNumeric,
	"short":   CategoryNumeric,
	"byte":    CategoryNumeric,
	"float":   CategoryNumeric,
	"double":  CategoryNumeric,

	"boolean": CategoryBoolean,
}

// Builtin reports whether a bare (prefix-free) type name is a built-in
// primitive, and its category if so.
func Builtin(name string) (Category, bool) {
	c, ok := builtins[name]
	return c, ok
}

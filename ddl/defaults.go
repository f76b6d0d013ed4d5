package ddl

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/schemavault/schemavault"
)

// Default-value rendering is a single rule table keyed by the column's type
// class and the default's shape, shared by every dialect so the quoting
// behavior cannot drift between them:
//
//	keyword default            -> emitted bare, any type class
//	numeric default on numeric -> emitted bare
//	boolean default on boolean -> emitted bare, uppercased
//	anything else              -> single-quoted, internal quotes doubled

type typeClass int

const (
	classOther typeClass = iota
	classNumeric
	classBoolean
)

type defaultShape int

const (
	shapeString defaultShape = iota
	shapeKeyword
	shapeNumeric
	shapeBoolean
)

var defaultKeywords = map[string]struct{}{
	"CURRENT_TIMESTAMP": {},
	"CURRENT_DATE":      {},
	"CURRENT_TIME":      {},
	"LOCALTIME":         {},
	"LOCALTIMESTAMP":    {},
	"NOW()":             {},
	"NULL":              {},
}

var numericTypes = map[string]struct{}{
	"tinyint":   {},
	"smallint":  {},
	"mediumint": {},
	"int":       {},
	"integer":   {},
	"bigint":    {},
	"decimal":   {},
	"numeric":   {},
	"float":     {},
	"double":    {},
	"real":      {},
	"int2":      {},
	"int4":      {},
	"int8":      {},
}

func classifyType(dataType string) typeClass {
	base, _, _ := splitTypeArgs(strings.ToLower(dataType))
	base = strings.TrimSpace(base)
	if _, ok := numericTypes[base]; ok {
		return classNumeric
	}
	if base == "boolean" || base == "bool" {
		return classBoolean
	}
	return classOther
}

func classifyShape(value string) defaultShape {
	upper := strings.ToUpper(strings.TrimSpace(value))
	if _, ok := defaultKeywords[upper]; ok {
		return shapeKeyword
	}
	// CURRENT_TIMESTAMP(6) and friends carry a precision argument.
	if strings.HasPrefix(upper, "CURRENT_TIMESTAMP(") || strings.HasPrefix(upper, "NEXTVAL(") {
		return shapeKeyword
	}
	if upper == "TRUE" || upper == "FALSE" {
		return shapeBoolean
	}
	if _, err := decimal.NewFromString(value); err == nil {
		return shapeNumeric
	}
	return shapeString
}

// defaultClause renders the column's DEFAULT clause, or "" when the column
// has no default.
func defaultClause(col schemavault.Column) string {
	if col.DefaultValue == nil {
		return ""
	}
	value := *col.DefaultValue
	switch classifyShape(value) {
	case shapeKeyword:
		return "DEFAULT " + strings.TrimSpace(value)
	case shapeNumeric:
		if classifyType(col.DataType) == classNumeric {
			return "DEFAULT " + strings.TrimSpace(value)
		}
	case shapeBoolean:
		if classifyType(col.DataType) == classBoolean {
			return "DEFAULT " + strings.ToUpper(strings.TrimSpace(value))
		}
	}
	return "DEFAULT " + quoteLiteral(value)
}

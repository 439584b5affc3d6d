package analyzer

import (
	"go/ast"
	"unicode"
)

// keepMethod applies the receiver and visibility filters.
func keepMethod(method, receiver string, opts Options) bool {
	if opts.Receiver != "" && receiver != opts.Receiver {
		return false
	}
	if !opts.IncludeUnexported && isUnexported(method) {
		return false
	}
	return true
}

func isUnexported(name string) bool {
	if name == "" {
		return true
	}
	return unicode.IsLower([]rune(name)[0]) || name[0] == '_'
}

// receiverTypeName extracts T from receivers of the form T, *T, T[P] and *T[P, Q].
func receiverTypeName(expr ast.Expr) string {
	for {
		switch e := expr.(type) {
		case *ast.StarExpr:
			expr = e.X
		case *ast.ParenExpr:
			expr = e.X
		case *ast.IndexExpr:
			expr = e.X
		case *ast.IndexListExpr:
			expr = e.X
		case *ast.Ident:
			return e.Name
		default:
			return ""
		}
	}
}

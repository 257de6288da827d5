package repository

import (
	"fmt"
	"strings"

	"github.com/kzmshx/taskhub/internal/scope"
	"gorm.io/gorm"
)

// Compile translates a scope expression tree into a SQL condition with
// placeholder arguments. A nil expression compiles to the empty string,
// meaning no restriction. An empty In set compiles to a contradiction so a
// caller with nothing in scope sees nothing rather than everything.
func Compile(e scope.Expr) (string, []any) {
	switch v := e.(type) {
	case nil:
		return "", nil
	case scope.Cond:
		if v.Op == scope.OpSubstr {
			return fmt.Sprintf("%s LIKE ?", v.Column), []any{"%" + fmt.Sprint(v.Value) + "%"}
		}
		return fmt.Sprintf("%s %s ?", v.Column, v.Op), []any{v.Value}
	case scope.In:
		if len(v.IDs) == 0 {
			return "1 = 0", nil
		}
		return fmt.Sprintf("%s IN ?", v.Column), []any{v.IDs}
	case scope.And:
		return compileGroup(v.Exprs, " AND ")
	case scope.Or:
		sql, args := compileGroup(v.Exprs, " OR ")
		if sql == "" {
			return "", nil
		}
		// Parenthesized so the disjunction stays self-contained when the
		// storage layer ANDs it with anything else.
		return "(" + sql + ")", args
	}
	return "", nil
}

func compileGroup(exprs []scope.Expr, sep string) (string, []any) {
	parts := make([]string, 0, len(exprs))
	var args []any

	for _, e := range exprs {
		sql, a := Compile(e)
		if sql == "" {
			continue
		}
		parts = append(parts, "("+sql+")")
		args = append(args, a...)
	}

	if len(parts) == 0 {
		return "", nil
	}
	return strings.Join(parts, sep), args
}

// applyScope attaches a compiled scope expression to a query.
func applyScope(db *gorm.DB, e scope.Expr) *gorm.DB {
	sql, args := Compile(e)
	if sql == "" {
		return db
	}
	return db.Where(sql, args...)
}

// orderClause renders a validated sort specification.
func orderClause(s scope.Sort) string {
	dir := "ASC"
	if s.Desc {
		dir = "DESC"
	}
	return fmt.Sprintf("%s %s", s.Column, dir)
}

package app

import (
	"fmt"
	"strings"
)

const appColumns = "id, name, url, icon, type, roles, client_id, encrypt, ps, removed, sort_order, created_at, created_by, last_updated, updated_by"

// buildWhere renders spec as a WHERE clause. placeholder formats the n-th
// (1-based) bind parameter for the target dialect.
func buildWhere(spec Spec, placeholder func(n int) string, idsParam func(ids []int, next func(v any) string) string) (string, []any) {
	var conds []string
	var args []any
	next := func(v any) string {
		args = append(args, v)
		return placeholder(len(args))
	}

	if !spec.IncludeRemoved {
		conds = append(conds, "removed = "+next(false))
	}
	if spec.IDs != nil {
		conds = append(conds, idsParam(spec.IDs, next))
	}
	if spec.ClientID != "" {
		conds = append(conds, "client_id = "+next(spec.ClientID))
	}
	if spec.Type != "" {
		conds = append(conds, "type = "+next(string(spec.Type)))
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func dollarPlaceholder(n int) string {
	return fmt.Sprintf("$%d", n)
}

func questionPlaceholder(int) string {
	return "?"
}

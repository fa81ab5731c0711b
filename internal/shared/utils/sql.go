package utils

import "strings"

// JoinWithAnd une cláusulas WHERE con AND
func JoinWithAnd(clauses []string) string {
	return strings.Join(clauses, " AND ")
}

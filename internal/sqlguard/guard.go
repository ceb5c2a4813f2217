// Package sqlguard provides read-only access to SQL Server databases for
// the agent engine. Every query is classified by the statement guard before
// it reaches a live session; live sessions are tracked in an instance-based
// connection registry keyed by opaque ids.
package sqlguard

import (
	"fmt"
	"regexp"
	"strings"
)

// forbiddenPattern matches mutating verbs as whole words anywhere in the
// statement, after comments have been stripped. SP_/XP_ cover system and
// extended stored procedure invocations.
//
// This is a lexical classifier, not a parser: keywords hidden inside string
// literals are still rejected (a false positive, fail closed), and it
// depends on comment stripping to not be fooled by commented-out text.
// A production-grade guard would tokenize the statement instead; until
// then the blacklist errs on the side of rejecting.
var forbiddenPattern = regexp.MustCompile(
	`\b(INSERT|UPDATE|DELETE|DROP|CREATE|ALTER|TRUNCATE|EXEC|EXECUTE|MERGE|BULK|WRITETEXT|UPDATETEXT|[SX]P_[A-Z0-9_]*)\b`)

// readOnlyPrefixes are the statement introducers accepted by the guard.
// WITH covers common-table expressions whose body is checked by the
// keyword scan; DECLARE covers variable declarations ahead of a SELECT.
var readOnlyPrefixes = []string{"SELECT", "WITH", "DECLARE"}

// ValidateReadOnly classifies query as read-only. It strips comments,
// requires a read-only introducer, and rejects any whole-word match of a
// mutating verb anywhere in the text. A nil return means the statement may
// be handed to a live session; any error means the call must fail before
// any round trip to the data store.
func ValidateReadOnly(query string) error {
	cleaned := strings.ToUpper(stripComments(query))

	if m := forbiddenPattern.FindString(cleaned); m != "" {
		return fmt.Errorf("%w: statement contains write operation %q, only SELECT is allowed", ErrWriteRejected, m)
	}

	trimmed := strings.TrimSpace(cleaned)
	for _, p := range readOnlyPrefixes {
		if strings.HasPrefix(trimmed, p) {
			return nil
		}
	}
	return fmt.Errorf("%w: statement must begin with SELECT, WITH or DECLARE", ErrWriteRejected)
}

// stripComments removes -- line comments and /* */ block comments so the
// keyword scan sees only live statement text. Block comments do not nest
// in T-SQL's lexical grammar as far as this guard is concerned; the outer
// terminator closes the comment.
func stripComments(sql string) string {
	var b strings.Builder
	b.Grow(len(sql))

	inLine := false
	inBlock := false
	for i := 0; i < len(sql); i++ {
		switch {
		case inLine:
			if sql[i] == '\n' {
				inLine = false
				b.WriteByte('\n')
			}
		case inBlock:
			if sql[i] == '*' && i+1 < len(sql) && sql[i+1] == '/' {
				inBlock = false
				i++
			}
		case sql[i] == '-' && i+1 < len(sql) && sql[i+1] == '-':
			inLine = true
			i++
		case sql[i] == '/' && i+1 < len(sql) && sql[i+1] == '*':
			inBlock = true
			// Leave a space so adjacent tokens do not merge.
			b.WriteByte(' ')
			i++
		default:
			b.WriteByte(sql[i])
		}
	}
	return b.String()
}

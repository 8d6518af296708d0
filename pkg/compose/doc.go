package compose

// Clause scanning
//
// The rewriter is not a SQL parser. It walks a statement byte by byte,
// skipping string literals ('...' with '' doubling), quoted identifiers
// ("..."), line comments (-- ...) and block comments (/* ... */), and
// tracking parenthesis depth. Keyword matches count only at depth 0:
//
//	WHERE                              first occurrence = existing filter clause
//	GROUP BY | ORDER BY | LIMIT | OFFSET
//	                                   earliest occurrence = tail boundary
//
// Predicates are combined as (p1) AND (p2) AND ... and spliced in before the
// tail boundary: with AND after an existing WHERE, or as a new WHERE clause.
// Keywords inside subqueries sit at depth > 0 and never match, so
//
//	SELECT * FROM (SELECT x FROM t WHERE y > 1 GROUP BY x) s
//
// gets a new top-level WHERE at the end, not an AND inside the derived table.
//
// Operators
//
//	operator   arity    rendering
//	equals     scalar   col = v
//	in         list     col IN (v1, v2, ...)
//	between    range    col BETWEEN from AND to
//	like       scalar   col LIKE '%v%' ESCAPE '\'
//	gt / gte   scalar   col > v, col >= v
//	lt / lte   scalar   col < v, col <= v
//
// Strings are single-quoted with embedded quotes doubled, numbers unquoted,
// dates rendered as 'YYYY-MM-DD'. like escapes literal %, _ and \ in the
// value before wrapping it in wildcards.

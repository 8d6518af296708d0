package compose

import (
	"strings"

	"github.com/dashlite/dashlite/pkg/errors"
)

type stmtToken int

const (
	tokEOF stmtToken = iota
	tokWord
	tokLParen
	tokRParen
	tokSemicolon
)

// stmtScanner walks a SQL statement byte by byte. It understands just enough
// lexical structure to match clause keywords safely: string literals, quoted
// identifiers and comments never yield tokens.
type stmtScanner struct {
	src    []byte
	offset int
	// eofInLineComment is set when the statement ends inside a -- comment,
	// where appending on the same line would swallow the new clause.
	eofInLineComment bool
}

func newStmtScanner(src []byte) *stmtScanner {
	return &stmtScanner{src: src}
}

// Scan returns the next significant token, its start offset and, for words,
// the lowercased text.
func (s *stmtScanner) Scan() (stmtToken, int, string, error) {
	for s.offset < len(s.src) {
		ch := s.src[s.offset]
		switch {
		case ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r':
			s.offset++
		case ch == '\'' || ch == '"':
			if err := s.skipQuoted(ch); err != nil {
				return tokEOF, s.offset, "", err
			}
		case ch == '-' && s.peek(1) == '-':
			s.skipLineComment()
		case ch == '/' && s.peek(1) == '*':
			if err := s.skipBlockComment(); err != nil {
				return tokEOF, s.offset, "", err
			}
		case ch == '(':
			s.offset++
			return tokLParen, s.offset - 1, "", nil
		case ch == ')':
			s.offset++
			return tokRParen, s.offset - 1, "", nil
		case ch == ';':
			s.offset++
			return tokSemicolon, s.offset - 1, "", nil
		case isWordByte(ch):
			start := s.offset
			for s.offset < len(s.src) && isWordByte(s.src[s.offset]) {
				s.offset++
			}
			return tokWord, start, strings.ToLower(string(s.src[start:s.offset])), nil
		default:
			// operators, commas and other punctuation carry no clause meaning
			s.offset++
		}
	}
	return tokEOF, s.offset, "", nil
}

func (s *stmtScanner) peek(n int) byte {
	if s.offset+n >= len(s.src) {
		return 0
	}
	return s.src[s.offset+n]
}

// skipQuoted consumes a quoted region, honoring doubled-quote escapes.
func (s *stmtScanner) skipQuoted(quote byte) error {
	s.offset++
	for s.offset < len(s.src) {
		if s.src[s.offset] != quote {
			s.offset++
			continue
		}
		if s.peek(1) == quote {
			s.offset += 2
			continue
		}
		s.offset++
		return nil
	}
	if quote == '"' {
		return errors.NewMalformedQueryError("unterminated quoted identifier")
	}
	return errors.NewMalformedQueryError("unterminated string literal")
}

func (s *stmtScanner) skipLineComment() {
	for s.offset < len(s.src) && s.src[s.offset] != '\n' {
		s.offset++
	}
	s.eofInLineComment = s.offset >= len(s.src)
}

func (s *stmtScanner) skipBlockComment() error {
	s.offset += 2
	for s.offset < len(s.src) {
		if s.src[s.offset] == '*' && s.peek(1) == '/' {
			s.offset += 2
			return nil
		}
		s.offset++
	}
	return errors.NewMalformedQueryError("unterminated comment")
}

func isWordByte(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9') || ch == '_' || ch == '$'
}

// clauseBounds records the insertion anchors found by a scan.
type clauseBounds struct {
	// where is the byte offset of the first top-level WHERE keyword, -1 when
	// the statement has none.
	where int
	// tail is the byte offset of the earliest top-level GROUP BY, ORDER BY,
	// LIMIT or OFFSET keyword, len(src) when the statement has no tail.
	tail int
	// firstWord is the lowercased first keyword of the statement.
	firstWord string
	// trailingLineComment is set when the statement ends inside a -- comment.
	trailingLineComment bool
}

func scanClauses(src []byte) (clauseBounds, error) {
	b := clauseBounds{where: -1, tail: len(src)}
	s := newStmtScanner(src)
	depth := 0
	pending := -1 // start offset of a GROUP or ORDER still waiting for its BY
	for {
		tok, start, word, err := s.Scan()
		if err != nil {
			return b, err
		}
		if tok == tokEOF {
			break
		}
		switch tok {
		case tokLParen:
			pending = -1
			depth++
		case tokRParen:
			pending = -1
			depth--
			if depth < 0 {
				return b, errors.NewMalformedQueryError("unbalanced parentheses")
			}
		case tokSemicolon:
			pending = -1
			if depth == 0 {
				return b, errors.NewMalformedQueryError("multiple statements")
			}
		case tokWord:
			if b.firstWord == "" {
				b.firstWord = word
			}
			if depth != 0 {
				pending = -1
				continue
			}
			// a word led in by a dot is a qualified name, not a keyword
			if start > 0 && src[start-1] == '.' {
				pending = -1
				continue
			}
			if pending >= 0 && word == "by" {
				if b.tail == len(src) {
					b.tail = pending
				}
				pending = -1
				continue
			}
			pending = -1
			switch word {
			case "where":
				if b.where < 0 && b.tail == len(src) {
					b.where = start
				}
			case "limit", "offset":
				if b.tail == len(src) {
					b.tail = start
				}
			case "group", "order":
				pending = start
			}
		}
	}
	if depth != 0 {
		return b, errors.NewMalformedQueryError("unbalanced parentheses")
	}
	b.trailingLineComment = s.eofInLineComment
	return b, nil
}

// Rewrite injects predicates into query's top-level WHERE clause. With an
// existing WHERE the combined group is ANDed onto it; without one a new
// WHERE is spliced in before the tail boundary. It returns the rewritten
// statement and the exact clause text that was inserted. An empty predicate
// list returns query untouched.
func Rewrite(query string, predicates []string) (string, string, error) {
	if len(predicates) == 0 {
		return query, "", nil
	}

	body, semi := trimStatement(query)
	if body == "" {
		return "", "", errors.NewMalformedQueryError("empty query")
	}

	bounds, err := scanClauses([]byte(body))
	if err != nil {
		return "", "", err
	}
	if bounds.firstWord != "select" && bounds.firstWord != "with" {
		return "", "", errors.NewMalformedQueryError("only SELECT statements can be filtered")
	}

	combined := combinePredicates(predicates)
	keyword := "WHERE"
	if bounds.where >= 0 {
		keyword = "AND"
	}

	// trim spaces only: a newline here may be what terminates a -- comment
	head := strings.TrimRight(body[:bounds.tail], " \t")
	tail := body[bounds.tail:]

	sep := " "
	if tail == "" && bounds.trailingLineComment {
		sep = "\n"
	}

	var sb strings.Builder
	sb.Grow(len(body) + len(combined) + len(keyword) + 3)
	sb.WriteString(head)
	sb.WriteString(sep)
	sb.WriteString(keyword)
	sb.WriteString(" ")
	sb.WriteString(combined)
	if tail != "" {
		sb.WriteString(" ")
		sb.WriteString(tail)
	}
	sb.WriteString(semi)

	return sb.String(), combined, nil
}

// Validate checks that query is one complete SELECT or WITH statement with
// balanced parentheses and terminated literals and comments.
func Validate(query string) error {
	body, _ := trimStatement(query)
	if body == "" {
		return errors.NewMalformedQueryError("empty query")
	}
	bounds, err := scanClauses([]byte(body))
	if err != nil {
		return err
	}
	if bounds.firstWord != "select" && bounds.firstWord != "with" {
		return errors.NewMalformedQueryError("only SELECT statements can be filtered")
	}
	return nil
}

// Identifiers returns the unquoted identifier words of query, lowercased and
// deduplicated in order of first appearance. Literals, quoted identifiers
// and comments yield nothing.
func Identifiers(query string) ([]string, error) {
	body, _ := trimStatement(query)
	s := newStmtScanner([]byte(body))
	seen := make(map[string]bool)
	var words []string
	for {
		tok, _, word, err := s.Scan()
		if err != nil {
			return nil, err
		}
		if tok == tokEOF {
			break
		}
		if tok != tokWord || seen[word] {
			continue
		}
		seen[word] = true
		words = append(words, word)
	}
	return words, nil
}

// trimStatement strips surrounding whitespace and any trailing semicolons,
// reporting the semicolon so it can be restored after insertion.
func trimStatement(query string) (string, string) {
	body := strings.TrimSpace(query)
	semi := ""
	for strings.HasSuffix(body, ";") {
		semi = ";"
		body = strings.TrimRight(strings.TrimSuffix(body, ";"), " \t\n\r")
	}
	return body, semi
}

func combinePredicates(predicates []string) string {
	var sb strings.Builder
	for i, p := range predicates {
		if i > 0 {
			sb.WriteString(" AND ")
		}
		sb.WriteString("(")
		sb.WriteString(p)
		sb.WriteString(")")
	}
	return sb.String()
}

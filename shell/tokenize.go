package shell

import (
	"strconv"
	"strings"
)

// Token is one word of an input line. Op marks an unquoted pipe or
// redirection operator.
type Token struct {
	Text string
	Op   bool
}

// operators, longest first
var operators = []string{"1>&2", "2>&1", "1>", "2>", ">", "<", "|"}

type lexState int

const (
	lexOutside lexState = iota
	lexSingleQuote
	lexDoubleQuote
)

type lexer struct {
	line     string
	lastExit int
	keepLast bool // leave the trailing word unflushed, for completion

	tokens  []Token
	buf     strings.Builder
	inToken bool // a word has started, possibly empty ("")
	start   int  // offset of the current word in line
	state   lexState
}

// Tokenize splits line into words and operators. lastExit replaces "$?".
func Tokenize(line string, lastExit int) ([]Token, error) {
	l := &lexer{line: line, lastExit: lastExit}
	l.run()
	if l.state != lexOutside {
		return nil, ErrUnterminatedQuote
	}
	return l.tokens, nil
}

func (l *lexer) flush() {
	if l.inToken {
		l.tokens = append(l.tokens, Token{Text: l.buf.String()})
		l.buf.Reset()
		l.inToken = false
	}
}

func (l *lexer) run() {
	for i := 0; i < len(l.line); i++ {
		c := l.line[i]
		switch l.state {
		case lexSingleQuote:
			if c == '\'' {
				l.state = lexOutside
			} else {
				l.buf.WriteByte(c)
			}
			continue

		case lexDoubleQuote:
			switch c {
			case '"':
				l.state = lexOutside
			case '\\':
				i = l.escape(i)
			case '$':
				i = l.dollar(i)
			default:
				l.buf.WriteByte(c)
			}
			continue
		}

		if isSpace(c) {
			l.flush()
			continue
		}
		if op := l.operatorAt(i); op != "" {
			l.flush()
			l.tokens = append(l.tokens, Token{Text: op, Op: true})
			i += len(op) - 1
			continue
		}
		l.begin(i)
		switch c {
		case '\'':
			l.state = lexSingleQuote
		case '"':
			l.state = lexDoubleQuote
		case '\\':
			i = l.escape(i)
		case '$':
			i = l.dollar(i)
		default:
			l.buf.WriteByte(c)
		}
	}
	if l.state == lexOutside && !l.keepLast {
		l.flush()
	}
}

func (l *lexer) begin(i int) {
	if !l.inToken {
		l.inToken = true
		l.start = i
	}
}

// operatorAt returns the operator starting at i. The fd forms (1>, 2>&1...)
// only count at the start of a word; "|", ">" and "<" also end a word.
func (l *lexer) operatorAt(i int) string {
	rest := l.line[i:]
	for _, op := range operators {
		if !strings.HasPrefix(rest, op) {
			continue
		}
		if (op[0] == '1' || op[0] == '2') && l.inToken {
			continue
		}
		return op
	}
	return ""
}

// escape handles the backslash at i and returns the index of the last
// consumed byte
func (l *lexer) escape(i int) int {
	if i+1 >= len(l.line) {
		l.buf.WriteByte('\\')
		return i
	}
	c := l.line[i+1]
	switch c {
	case 'n':
		l.buf.WriteByte('\n')
	case 'r':
		l.buf.WriteByte('\r')
	case 't':
		l.buf.WriteByte('\t')
	case '0':
		l.buf.WriteByte(0)
	default:
		l.buf.WriteByte(c)
	}
	return i + 1
}

func (l *lexer) dollar(i int) int {
	if i+1 < len(l.line) && l.line[i+1] == '?' {
		l.buf.WriteString(strconv.Itoa(l.lastExit))
		return i + 1
	}
	l.buf.WriteByte('$')
	return i
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}

// splitPipes splits tokens on "|" into one token list per stage
func splitPipes(tokens []Token) ([][]Token, error) {
	var stages [][]Token
	start := 0
	for i, t := range tokens {
		if t.Op && t.Text == "|" {
			if i == start {
				return nil, ErrSyntax
			}
			stages = append(stages, tokens[start:i])
			start = i + 1
		}
	}
	if start == len(tokens) {
		if len(stages) > 0 {
			return nil, ErrSyntax
		}
		return nil, nil
	}
	return append(stages, tokens[start:]), nil
}

func words(tokens []Token) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = t.Text
	}
	return out
}

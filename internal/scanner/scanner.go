// Package scanner implements the AST stream scanner: a push-parser that
// reads a clang `-ast-dump=json` translation unit from an io.Reader in
// bounded memory and emits one AstNode per completed JSON node object, in
// pre-order (parent before its children), per spec.md §4.C.
package scanner

import "io"

// NodeHandler is invoked once per flushed AST node, in scanner-emission
// order. The *AstNode is only valid for the duration of the call.
type NodeHandler func(*AstNode) error

// Option configures a Scanner's buffer sizing.
type Option func(*Scanner)

// WithBufferSize overrides the scan window capacity and refill threshold.
// Mirrors spec.md §4.C's suggested defaults (>=64 KiB window, refill once
// fewer than ~4 KiB remain) when not supplied.
func WithBufferSize(capacity, minUnit int) Option {
	return func(s *Scanner) {
		s.capacity = capacity
		s.minUnit = minUnit
	}
}

// Scanner drives the node state machine over a lexer.
type Scanner struct {
	r        io.Reader
	capacity int
	minUnit  int
	lx       *lexer
}

// New creates a Scanner reading from r.
func New(r io.Reader, opts ...Option) *Scanner {
	s := &Scanner{r: r}
	for _, o := range opts {
		o(s)
	}
	s.lx = newLexer(r, s.capacity, s.minUnit)
	return s
}

// Run scans the entire input, calling handler once per node in pre-order.
// It returns the first error encountered (malformed JSON, a structural
// mismatch, an over-long scalar, or a handler error) and stops.
func (s *Scanner) Run(handler NodeHandler) error {
	tok, err := s.lx.next()
	if err != nil {
		return err
	}
	if tok.kind == tokEOF {
		return newError(KindUnexpectedEndOfInput, s.lx.line, s.lx.col, "empty input")
	}
	if tok.kind != tokObjectBegin {
		return newError(KindExpectedNode, tok.line, tok.col, "expected top-level object")
	}
	if err := s.parseNode(handler); err != nil {
		// Key and escape errors are built without a position; report where
		// the lexer stood when they were detected.
		if se, ok := err.(*Error); ok && se.Line == 0 {
			se.Line, se.Col = s.lx.line, s.lx.col
		}
		return err
	}
	// Trailing garbage after the top-level value is ignored deliberately:
	// clang's AST dump is a single top-level object and nothing follows.
	return nil
}

// parseNode parses one node object whose opening brace has already been
// consumed, flushing it via handler either at "inner" (before descending
// into children) or at the node's closing brace (no children).
func (s *Scanner) parseNode(handler NodeHandler) error {
	var node AstNode
	flushed := false

	flush := func() error {
		if flushed {
			return nil
		}
		flushed = true
		return handler(&node)
	}

	for {
		tok, err := s.lx.next()
		if err != nil {
			return err
		}
		switch tok.kind {
		case tokComma:
			continue
		case tokObjectEnd:
			return flush()
		case tokEOF:
			return newError(KindUnexpectedEndOfInput, tok.line, tok.col, "unterminated node object")
		case tokString:
			key, err := validateKey(tok.raw)
			if err != nil {
				return err
			}
			if err := s.expectColon(); err != nil {
				return err
			}
			if err := s.dispatchNodeField(key, &node, flush, handler); err != nil {
				if err == errStopParseNode {
					return nil
				}
				return err
			}
		default:
			return newError(KindExpectedNode, tok.line, tok.col, "expected a field name or end of object")
		}
	}
}

func (s *Scanner) expectColon() error {
	tok, err := s.lx.next()
	if err != nil {
		return err
	}
	if tok.kind != tokColon {
		return newError(KindMalformedJSON, tok.line, tok.col, "expected ':'")
	}
	return nil
}

func (s *Scanner) dispatchNodeField(key string, node *AstNode, flush func() error, handler NodeHandler) error {
	switch key {
	case "id":
		v, err := s.expectStringOrNumber()
		if err != nil {
			return err
		}
		node.ID = v
	case "kind":
		v, err := s.expectStringOrNumber()
		if err != nil {
			return err
		}
		node.Kind = v
	case "previousDecl":
		v, err := s.expectStringOrNumber()
		if err != nil {
			return err
		}
		node.PreviousDecl = v
	case "mangledName":
		v, err := s.expectStringOrNumber()
		if err != nil {
			return err
		}
		node.MangledName = v
	case "isUsed":
		v, err := s.expectBool()
		if err != nil {
			return err
		}
		node.IsUsed = v
	case "isImplicit":
		v, err := s.expectBool()
		if err != nil {
			return err
		}
		node.IsImplicit = v
	case "explicitlyDeleted":
		v, err := s.expectBool()
		if err != nil {
			return err
		}
		node.IsExplicitlyDeleted = v
	case "loc":
		if err := s.parseLocObject(&node.Location, &node.SecondaryLocation, true); err != nil {
			return err
		}
	case "inner":
		if err := flush(); err != nil {
			return err
		}
		if err := s.parseInnerArray(handler); err != nil {
			return err
		}
		// Invariant (spec.md §4.C): inner is always the last key of its
		// node, so the enclosing object must close immediately.
		tok, err := s.lx.next()
		if err != nil {
			return err
		}
		if tok.kind != tokObjectEnd {
			return newError(KindExpectedNode, tok.line, tok.col, "\"inner\" must be the last key of its node")
		}
		return errStopParseNode
	default:
		if err := s.skipValue(); err != nil {
			return err
		}
	}
	return nil
}

// errStopParseNode is a sentinel the "inner" case uses to signal that it
// already consumed the closing brace for the enclosing node and
// parseNode's loop should stop without reading another token.
var errStopParseNode = stopParseNode{}

type stopParseNode struct{}

func (stopParseNode) Error() string { return "finddead: internal: stop parsing node (not a real error)" }

func (s *Scanner) parseInnerArray(handler NodeHandler) error {
	tok, err := s.lx.next()
	if err != nil {
		return err
	}
	if tok.kind != tokArrayBegin {
		return newError(KindExpectedArray, tok.line, tok.col, "\"inner\" must be an array")
	}
	for {
		tok, err := s.lx.next()
		if err != nil {
			return err
		}
		switch tok.kind {
		case tokArrayEnd:
			return nil
		case tokComma:
			continue
		case tokObjectBegin:
			if err := s.parseNode(handler); err != nil {
				return err
			}
		default:
			return newError(KindExpectedNode, tok.line, tok.col, "expected a child node object")
		}
	}
}

func (s *Scanner) expectStringOrNumber() (string, error) {
	tok, err := s.lx.next()
	if err != nil {
		return "", err
	}
	switch tok.kind {
	case tokString:
		return unescape(tok.raw)
	case tokNumber:
		return string(tok.raw), nil
	default:
		return "", newError(KindExpectedStringOrNumber, tok.line, tok.col, "expected a string or number")
	}
}

func (s *Scanner) expectBool() (bool, error) {
	tok, err := s.lx.next()
	if err != nil {
		return false, err
	}
	switch tok.kind {
	case tokTrue:
		return true, nil
	case tokFalse:
		return false, nil
	default:
		return false, newError(KindExpectedBool, tok.line, tok.col, "expected true or false")
	}
}

// parseLocObject parses a `loc`-shaped object (the opening brace has NOT
// yet been consumed). allowNested controls whether expansionLoc/
// spellingLoc are accepted; they are never accepted from within a nested
// loc object (spec.md §4.C: "these nested forms may not recurse
// further").
func (s *Scanner) parseLocObject(primary, secondary *Location, allowNested bool) error {
	tok, err := s.lx.next()
	if err != nil {
		return err
	}
	if tok.kind != tokObjectBegin {
		return newError(KindExpectedObject, tok.line, tok.col, "\"loc\" must be an object")
	}

	for {
		tok, err := s.lx.next()
		if err != nil {
			return err
		}
		switch tok.kind {
		case tokComma:
			continue
		case tokObjectEnd:
			return nil
		case tokString:
			key, err := validateKey(tok.raw)
			if err != nil {
				return err
			}
			if err := s.expectColon(); err != nil {
				return err
			}
			if err := s.dispatchLocField(key, primary, secondary, allowNested); err != nil {
				return err
			}
		default:
			return newError(KindExpectedObject, tok.line, tok.col, "expected a field name or end of object")
		}
	}
}

func (s *Scanner) dispatchLocField(key string, primary, secondary *Location, allowNested bool) error {
	switch key {
	case "file":
		v, err := s.expectStringOrNumber()
		if err != nil {
			return err
		}
		primary.File = v
	case "line":
		v, err := s.expectStringOrNumber()
		if err != nil {
			return err
		}
		primary.Line = v
	case "presumedFile":
		v, err := s.expectStringOrNumber()
		if err != nil {
			return err
		}
		primary.PresumedFile = v
	case "presumedLine":
		v, err := s.expectStringOrNumber()
		if err != nil {
			return err
		}
		primary.PresumedLine = v
	case "col":
		v, err := s.expectStringOrNumber()
		if err != nil {
			return err
		}
		primary.Col = v
	case "expansionLoc":
		if !allowNested {
			return s.skipValue()
		}
		return s.parseLocObject(primary, secondary, false)
	case "spellingLoc":
		if !allowNested {
			return s.skipValue()
		}
		return s.parseLocObject(secondary, secondary, false)
	default:
		return s.skipValue()
	}
	return nil
}

// skipValue consumes exactly one JSON value of any shape and depth
// (spec.md §4.C's "ignore" state), tracked by a depth counter rather than
// recursion so arbitrarily deep unknown structures don't grow the Go call
// stack.
func (s *Scanner) skipValue() error {
	tok, err := s.lx.next()
	if err != nil {
		return err
	}
	switch tok.kind {
	case tokObjectBegin, tokArrayBegin:
		depth := 1
		for depth > 0 {
			t, err := s.lx.next()
			if err != nil {
				return err
			}
			switch t.kind {
			case tokObjectBegin, tokArrayBegin:
				depth++
			case tokObjectEnd, tokArrayEnd:
				depth--
			case tokEOF:
				return newError(KindUnexpectedEndOfInput, t.line, t.col, "unterminated value while skipping")
			}
		}
		return nil
	case tokString, tokNumber, tokTrue, tokFalse, tokNull:
		return nil
	default:
		return newError(KindMalformedJSON, tok.line, tok.col, "expected a value to skip")
	}
}

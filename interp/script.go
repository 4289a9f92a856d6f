package interp

// Script owns one source text's lifecycle: its token stream and its
// AST arena, both of which live until the Script itself is discarded
// (spec §3 lifecycles). A Script can be tokenized and parsed once;
// re-running either step returns the cached result.
type Script struct {
	source                 string
	finalSemicolonOptional bool
	errs                    *errorStream

	tokens []Token
	ast    *Node
	pool   *astArena
}

// NewScript constructs a Script over source text. When
// finalSemicolonOptional is true, the very last statement of any block
// (including the top-level interpreter block) may omit its trailing
// `;` before the closing `}` or end of input (spec §6).
func NewScript(source string, finalSemicolonOptional bool) (*Script, error) {
	errs := newErrorStream(ModeThrow)
	errs.SetSource(source)
	return &Script{
		source:                 source,
		finalSemicolonOptional: finalSemicolonOptional,
		errs:                   errs,
		pool:                   newASTArena(),
	}, nil
}

// Tokenize runs the lexer over the script's source, caching the
// resulting token stream.
func (s *Script) Tokenize() error {
	if s.tokens != nil {
		return nil
	}
	lx := NewLexer(s.source, s.errs)
	toks, err := lx.Tokenize()
	if err != nil {
		return err
	}
	s.tokens = toks
	return nil
}

// ParseInterpreterBlock tokenizes (if not already done) and parses the
// script's source as a top-level interpreter block, caching the
// resulting AST.
func (s *Script) ParseInterpreterBlock() error {
	if s.ast != nil {
		return nil
	}
	if err := s.Tokenize(); err != nil {
		return err
	}
	p := NewParser(s.tokens, s.errs, s.pool, s.finalSemicolonOptional)
	root, err := p.ParseInterpreterBlock()
	if err != nil {
		return err
	}
	s.ast = root
	return nil
}

// AST returns the script's parsed interpreter block. It is nil until
// ParseInterpreterBlock has succeeded.
func (s *Script) AST() *Node { return s.ast }

// Source returns the script's original source text, used for caret
// diagrams in exit mode.
func (s *Script) Source() string { return s.source }

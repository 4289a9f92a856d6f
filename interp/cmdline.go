package interp

import "strings"

// DefineCommandLineConstants implements spec §6's `name=expr`
// command-line constant handling, the way a host's CLI driver
// populates a script's initial environment from `-d name=expr` flags.
// Each definition's identifier is checked for legality before its
// expression is evaluated against scope (so a malformed name fails
// without ever touching the symbol table), then installed as a
// defined constant via scope.DefineConstantForSymbol.
func DefineCommandLineConstants(scope *Scope, defs []string) error {
	errs := newErrorStream(ModeThrow)
	funcs := NewFunctionMap()

	for _, def := range defs {
		eq := strings.IndexByte(def, '=')
		if eq <= 0 {
			return errs.Raise(ParseError, "cmdline", "malformed command-line constant definition %q", def)
		}
		name := strings.TrimSpace(def[:eq])
		exprSrc := def[eq+1:]
		if !isLegalIdentifierName(name) {
			return errs.Raise(ParseError, "cmdline", "illegal command-line constant name %q", name)
		}

		script, _ := NewScript(exprSrc, true)
		if err := script.ParseInterpreterBlock(); err != nil {
			return errs.Wrap(ParseError, "cmdline", err, "malformed command-line constant definition "+def)
		}
		ast := script.AST()
		if len(ast.Children) != 1 || ast.Children[0].Kind != NodeExprStatement {
			return errs.Raise(ParseError, "cmdline", "command-line constant definition must be a single expression: %q", def)
		}

		ip := NewInterpreter(script, scope, funcs, NopContext{}, ModeThrow)
		value, err := ip.evalExpr(ast.Children[0].Children[0])
		if err != nil {
			return err
		}
		if err := scope.DefineConstantForSymbol(Intern(name), value); err != nil {
			return errs.Wrap(RedefinitionOfConstant, "cmdline", err, "command-line constant "+name)
		}
	}
	return nil
}

// isLegalIdentifierName reports whether name is a legal Eidos
// identifier: non-empty, starts with a letter or underscore, all
// remaining runes identifier characters, and not a reserved keyword.
func isLegalIdentifierName(name string) bool {
	if name == "" {
		return false
	}
	if _, reserved := keywords[name]; reserved {
		return false
	}
	for i, r := range name {
		if i == 0 {
			if !isIdentStart(r) {
				return false
			}
			continue
		}
		if !isIdentPart(r) {
			return false
		}
	}
	return true
}

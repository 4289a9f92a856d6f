package interp

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ErrorKind enumerates the diagnostic categories the core can raise.
// All of them surface through the single termination channel (errorStream).
type ErrorKind int

const (
	LexError ErrorKind = iota
	ParseError
	IdentifierUndefined
	RedefinitionOfConstant
	TypeError
	LengthMismatch
	IndexOutOfRange
	InvalidAssignmentTarget
	ControlFlowError
	InternalInvariant
)

func (k ErrorKind) String() string {
	switch k {
	case LexError:
		return "LexError"
	case ParseError:
		return "ParseError"
	case IdentifierUndefined:
		return "IdentifierUndefined"
	case RedefinitionOfConstant:
		return "RedefinitionOfConstant"
	case TypeError:
		return "TypeError"
	case LengthMismatch:
		return "LengthMismatch"
	case IndexOutOfRange:
		return "IndexOutOfRange"
	case InvalidAssignmentTarget:
		return "InvalidAssignmentTarget"
	case ControlFlowError:
		return "ControlFlowError"
	case InternalInvariant:
		return "InternalInvariant"
	default:
		return "UnknownError"
	}
}

// Span is a byte-offset pair into a script's source text, used to
// highlight the offending token in exit mode.
type Span struct {
	Start int
	End   int
}

// TerminationError is the error value raised for every diagnostic the
// core produces. It carries enough information for a host to either
// print a caret diagram (exit mode) or format a message for a catch
// block (throw mode).
type TerminationError struct {
	Kind ErrorKind
	Site string
	Msg  string
	Span Span
	// cause is the originating Go error, if the termination wraps one
	// (e.g. a parse failure bubbling up from the lexer).
	cause error
}

func (e *TerminationError) Error() string {
	return fmt.Sprintf("ERROR (%s): %s", e.Site, e.Msg)
}

func (e *TerminationError) Unwrap() error { return e.cause }

// CaretDiagram renders the offending span of src as a two-line excerpt
// with a caret indicator, the way exit mode reports diagnostics.
func (e *TerminationError) CaretDiagram(src string) string {
	if e.Span.Start < 0 || e.Span.Start > len(src) {
		return ""
	}
	end := e.Span.End
	if end > len(src) || end < e.Span.Start {
		end = e.Span.Start
	}
	lineStart := strings.LastIndexByte(src[:e.Span.Start], '\n') + 1
	lineEnd := strings.IndexByte(src[e.Span.Start:], '\n')
	if lineEnd < 0 {
		lineEnd = len(src)
	} else {
		lineEnd += e.Span.Start
	}
	line := src[lineStart:lineEnd]
	caretCol := e.Span.Start - lineStart
	caretLen := end - e.Span.Start
	if caretLen < 1 {
		caretLen = 1
	}
	var b strings.Builder
	b.WriteString(line)
	b.WriteByte('\n')
	b.WriteString(strings.Repeat(" ", caretCol))
	b.WriteString(strings.Repeat("^", caretLen))
	return b.String()
}

// TerminationMode selects what happens when a diagnostic is emitted.
type TerminationMode int

const (
	// ModeThrow raises the accumulated message as a catchable error,
	// for embedded use (a host runs many scripts in one process).
	ModeThrow TerminationMode = iota
	// ModeExit prints the accumulated message with a caret diagram and
	// terminates the process with a nonzero status.
	ModeExit
)

// errorStream is the diagnostic accumulator described in spec
// §4.7/§9. It is not a package global: each Interpreter, each Script
// and each DefineCommandLineConstants call builds its own. Positions
// are pushed before evaluating a node and popped when a diagnostic is
// emitted, so call sites never thread a position argument through
// every helper.
type errorStream struct {
	mode  TerminationMode
	src   string // source text, for exit mode's caret diagram
	spans []Span
	exit  func(code int) // overridable for tests; defaults to os.Exit
	print func(s string) // overridable for tests; defaults to stderr
}

func newErrorStream(mode TerminationMode) *errorStream {
	return &errorStream{
		mode:  mode,
		exit:  osExit,
		print: stderrPrint,
	}
}

// SetSource attaches the script source errors raised on this stream
// should be highlighted against, used by exit mode's caret diagram.
// Lexing/parsing/evaluation all share a script's source, so this is
// set once when the stream is bound to a Script.
func (s *errorStream) SetSource(src string) { s.src = src }

// PushPosition records the span that should annotate the next
// diagnostic raised while it is on top of the stack.
func (s *errorStream) PushPosition(span Span) {
	s.spans = append(s.spans, span)
}

// PopPosition discards the most recently pushed span.
func (s *errorStream) PopPosition() {
	if len(s.spans) == 0 {
		return
	}
	s.spans = s.spans[:len(s.spans)-1]
}

func (s *errorStream) currentSpan() Span {
	if len(s.spans) == 0 {
		return Span{-1, -1}
	}
	return s.spans[len(s.spans)-1]
}

// Raise constructs a TerminationError for the given kind and message,
// annotates it with the top-of-stack position, and either returns it
// (throw mode, so the caller can propagate it as a Go error) or prints
// it and exits the process (exit mode, never returns).
func (s *errorStream) Raise(kind ErrorKind, site string, format string, args ...interface{}) error {
	te := &TerminationError{
		Kind: kind,
		Site: site,
		Msg:  fmt.Sprintf(format, args...),
		Span: s.currentSpan(),
	}
	if s.mode == ModeExit {
		s.print(s.render(te))
		s.exit(1)
		return te // unreachable in real exit() but keeps the function total
	}
	return te
}

// render formats a termination error for exit mode: the one-line
// message, followed by the caret diagram when source text is
// available (it isn't for streams that never had SetSource called).
func (s *errorStream) render(te *TerminationError) string {
	msg := te.Error()
	if diagram := te.CaretDiagram(s.src); diagram != "" {
		msg += "\n" + diagram
	}
	return msg
}

// Wrap annotates an existing error with site/kind context using
// github.com/pkg/errors, used where the core needs to preserve an
// inner cause (e.g. a host delegate function's own error).
func (s *errorStream) Wrap(kind ErrorKind, site string, err error, msg string) error {
	if err == nil {
		return nil
	}
	te := &TerminationError{
		Kind:  kind,
		Site:  site,
		Msg:   errors.Wrapf(err, "%s", msg).Error(),
		Span:  s.currentSpan(),
		cause: err,
	}
	if s.mode == ModeExit {
		s.print(s.render(te))
		s.exit(1)
		return te
	}
	return te
}

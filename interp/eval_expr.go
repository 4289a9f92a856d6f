package interp

import (
	"math"
)

// evalExpr dispatches on an expression node's kind, pushing the node's
// source span onto the error stream for the duration of its own
// evaluation (spec §4.7, §9) so any diagnostic raised beneath it is
// annotated with the innermost offending position.
func (ip *Interpreter) evalExpr(n *Node) (*Value, error) {
	ip.errs.PushPosition(n.Tok.Span())
	defer ip.errs.PopPosition()

	switch n.Kind {
	case NodeIntLiteral, NodeFloatLiteral, NodeStringLiteral:
		return n.Const, nil
	case NodeIdentifier:
		return ip.evalIdentifier(n)
	case NodeUnary:
		return ip.evalUnary(n)
	case NodeBinary:
		return ip.evalBinary(n)
	case NodeCompare:
		return ip.evalCompare(n)
	case NodeLogicalAnd:
		return ip.evalLogical(n, true)
	case NodeLogicalOr:
		return ip.evalLogical(n, false)
	case NodeSequence:
		return ip.evalSequence(n)
	case NodeTernary:
		return ip.evalTernary(n)
	case NodeAssign:
		return ip.evalAssign(n)
	case NodeSubscript:
		return ip.evalSubscriptRead(n)
	case NodeMember:
		return ip.evalMemberRead(n)
	case NodeCall:
		return ip.evalCall(n)
	default:
		return nil, ip.errs.Raise(InternalInvariant, "interp", "expression node of kind %d cannot be evaluated", n.Kind)
	}
}

func (ip *Interpreter) evalIdentifier(n *Node) (*Value, error) {
	id, ok := globalInterner.Lookup(n.Name)
	if !ok {
		return nil, ip.errs.Raise(IdentifierUndefined, "identifier", "undefined identifier %q", n.Name)
	}
	v, err := ip.vars.GetValue(id)
	if err != nil {
		return nil, ip.errs.Raise(IdentifierUndefined, "identifier", "undefined identifier %q", n.Name)
	}
	return v, nil
}

func (ip *Interpreter) evalUnary(n *Node) (*Value, error) {
	operand, err := ip.evalExpr(n.Children[0])
	if err != nil {
		return nil, err
	}
	switch n.Op {
	case "+":
		if operand.Type().Mask()&MaskNumeric == 0 {
			return nil, ip.errs.Raise(TypeError, "unary+", "operand must be numeric, got %s", operand.Type())
		}
		return operand, nil
	case "-":
		return negateValue(ip, operand)
	case "!":
		if operand.typ != LogicalType {
			return nil, ip.errs.Raise(TypeError, "unary!", "operand must be logical, got %s", operand.Type())
		}
		out := make([]bool, operand.Count())
		for i, b := range operand.logical {
			out[i] = !b
		}
		return NewLogical(out...), nil
	default:
		return nil, ip.errs.Raise(InternalInvariant, "unary", "unknown unary operator %q", n.Op)
	}
}

func negateValue(ip *Interpreter, v *Value) (*Value, error) {
	switch v.typ {
	case IntType:
		out := make([]int64, v.Count())
		for i, x := range v.integer {
			out[i] = -x
		}
		return NewInt(out...), nil
	case FloatType:
		out := make([]float64, v.Count())
		for i, x := range v.float {
			out[i] = -x
		}
		return NewFloat(out...), nil
	case LogicalType:
		out := make([]int64, v.Count())
		for i, b := range v.logical {
			out[i] = -boolToInt(b)
		}
		return NewInt(out...), nil
	default:
		return nil, ip.errs.Raise(TypeError, "unary-", "operand must be numeric, got %s", v.Type())
	}
}

// broadcastLen computes the recycled length of two operands: equal
// lengths are used as-is, a length-1 operand is recycled against the
// other, and anything else is a LengthMismatch (spec §4.2 vectorized
// operators).
func broadcastLen(ip *Interpreter, site string, a, b int) (int, error) {
	switch {
	case a == b:
		return a, nil
	case a == 1:
		return b, nil
	case b == 1:
		return a, nil
	default:
		return 0, ip.errs.Raise(LengthMismatch, site, "mismatched operand lengths %d and %d", a, b)
	}
}

func numericAsFloat(v *Value, i int) float64 {
	switch v.typ {
	case IntType:
		return float64(v.integer[i%len(v.integer)])
	case LogicalType:
		return boolToFloat(v.logical[i%len(v.logical)])
	default:
		return v.float[i%len(v.float)]
	}
}

func numericAsInt(v *Value, i int) int64 {
	switch v.typ {
	case FloatType:
		return int64(v.float[i%len(v.float)])
	case LogicalType:
		return boolToInt(v.logical[i%len(v.logical)])
	default:
		return v.integer[i%len(v.integer)]
	}
}

func (ip *Interpreter) evalBinary(n *Node) (*Value, error) {
	left, err := ip.evalExpr(n.Children[0])
	if err != nil {
		return nil, err
	}
	right, err := ip.evalExpr(n.Children[1])
	if err != nil {
		return nil, err
	}

	if n.Op == "+" && left.typ == StringType && right.typ == StringType {
		return stringConcat(ip, n.Op, left, right)
	}

	if left.Type().Mask()&MaskNumeric == 0 || right.Type().Mask()&MaskNumeric == 0 {
		return nil, ip.errs.Raise(TypeError, "binary", "operator %q requires numeric operands, got %s and %s", n.Op, left.Type(), right.Type())
	}

	length, err := broadcastLen(ip, "binary", left.Count(), right.Count())
	if err != nil {
		return nil, err
	}
	if length == 0 {
		return NewInt(), nil
	}

	target, _ := promote(left.typ, right.typ)
	if n.Op == "/" || n.Op == "^" {
		target = FloatType
	}

	if target == FloatType {
		out := make([]float64, length)
		for i := 0; i < length; i++ {
			a, b := numericAsFloat(left, i), numericAsFloat(right, i)
			v, err := applyFloatOp(ip, n.Op, a, b)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return NewFloat(out...), nil
	}

	out := make([]int64, length)
	for i := 0; i < length; i++ {
		a, b := numericAsInt(left, i), numericAsInt(right, i)
		v, err := applyIntOp(ip, n.Op, a, b)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return NewInt(out...), nil
}

func applyFloatOp(ip *Interpreter, op string, a, b float64) (float64, error) {
	switch op {
	case "+":
		return a + b, nil
	case "-":
		return a - b, nil
	case "*":
		return a * b, nil
	case "/":
		return a / b, nil
	case "%":
		return math.Mod(a, b), nil
	case "^":
		return math.Pow(a, b), nil
	default:
		return 0, ip.errs.Raise(InternalInvariant, "binary", "unknown operator %q", op)
	}
}

func applyIntOp(ip *Interpreter, op string, a, b int64) (int64, error) {
	switch op {
	case "+":
		return a + b, nil
	case "-":
		return a - b, nil
	case "*":
		return a * b, nil
	case "%":
		if b == 0 {
			return 0, ip.errs.Raise(TypeError, "binary", "modulo by zero")
		}
		return a % b, nil
	default:
		return 0, ip.errs.Raise(InternalInvariant, "binary", "unknown integer operator %q", op)
	}
}

func stringConcat(ip *Interpreter, op string, left, right *Value) (*Value, error) {
	length, err := broadcastLen(ip, "binary", left.Count(), right.Count())
	if err != nil {
		return nil, err
	}
	out := make([]string, length)
	for i := 0; i < length; i++ {
		out[i] = left.str[i%len(left.str)] + right.str[i%len(right.str)]
	}
	return NewString(out...), nil
}

func (ip *Interpreter) evalCompare(n *Node) (*Value, error) {
	left, err := ip.evalExpr(n.Children[0])
	if err != nil {
		return nil, err
	}
	right, err := ip.evalExpr(n.Children[1])
	if err != nil {
		return nil, err
	}
	length, err := broadcastLen(ip, "compare", left.Count(), right.Count())
	if err != nil {
		return nil, err
	}
	out := make([]bool, length)

	switch {
	case left.typ == StringType && right.typ == StringType:
		for i := 0; i < length; i++ {
			a, b := left.str[i%len(left.str)], right.str[i%len(right.str)]
			out[i] = compareStrings(n.Op, a, b)
		}
	case left.Type().Mask()&MaskNumeric != 0 && right.Type().Mask()&MaskNumeric != 0:
		target, _ := promote(left.typ, right.typ)
		for i := 0; i < length; i++ {
			if target == FloatType {
				out[i] = compareOrdered(n.Op, numericAsFloat(left, i), numericAsFloat(right, i))
			} else {
				out[i] = compareOrdered(n.Op, numericAsInt(left, i), numericAsInt(right, i))
			}
		}
	default:
		return nil, ip.errs.Raise(TypeError, "compare", "cannot compare %s to %s", left.Type(), right.Type())
	}
	return NewLogical(out...), nil
}

func compareStrings(op string, a, b string) bool {
	switch op {
	case "==":
		return a == b
	case "!=":
		return a != b
	case "<":
		return a < b
	case "<=":
		return a <= b
	case ">":
		return a > b
	case ">=":
		return a >= b
	default:
		return false
	}
}

type ordered interface{ ~int64 | ~float64 }

func compareOrdered[T ordered](op string, a, b T) bool {
	switch op {
	case "==":
		return a == b
	case "!=":
		return a != b
	case "<":
		return a < b
	case "<=":
		return a <= b
	case ">":
		return a > b
	case ">=":
		return a >= b
	default:
		return false
	}
}

// evalLogical implements the vectorized `&`/`|` operators: unlike C's
// short-circuit &&/||, these combine every element of both operands
// (spec §4.6 grammar has no short-circuit boolean form).
func (ip *Interpreter) evalLogical(n *Node, isAnd bool) (*Value, error) {
	left, err := ip.evalExpr(n.Children[0])
	if err != nil {
		return nil, err
	}
	right, err := ip.evalExpr(n.Children[1])
	if err != nil {
		return nil, err
	}
	if left.typ != LogicalType || right.typ != LogicalType {
		return nil, ip.errs.Raise(TypeError, "logical", "operands must be logical, got %s and %s", left.Type(), right.Type())
	}
	length, err := broadcastLen(ip, "logical", left.Count(), right.Count())
	if err != nil {
		return nil, err
	}
	out := make([]bool, length)
	for i := 0; i < length; i++ {
		a, b := left.logical[i%len(left.logical)], right.logical[i%len(right.logical)]
		if isAnd {
			out[i] = a && b
		} else {
			out[i] = a || b
		}
	}
	return NewLogical(out...), nil
}

func (ip *Interpreter) evalSequence(n *Node) (*Value, error) {
	left, err := ip.evalExpr(n.Children[0])
	if err != nil {
		return nil, err
	}
	right, err := ip.evalExpr(n.Children[1])
	if err != nil {
		return nil, err
	}
	from, err := left.asIntScalar()
	if err != nil {
		return nil, ip.errs.Wrap(TypeError, "range", err, "non-finite or non-scalar range endpoint")
	}
	to, err := right.asIntScalar()
	if err != nil {
		return nil, ip.errs.Wrap(TypeError, "range", err, "non-finite or non-scalar range endpoint")
	}
	by := int64(1)
	if from > to {
		by = -1
	}
	v, err := buildIntSequence(from, to, by)
	if err != nil {
		return nil, ip.errs.Wrap(TypeError, "range", err, "malformed range")
	}
	return v, nil
}

func (ip *Interpreter) evalTernary(n *Node) (*Value, error) {
	cond, err := ip.evalExpr(n.Children[0])
	if err != nil {
		return nil, err
	}
	ok, err := cond.AsBool()
	if err != nil {
		return nil, ip.errs.Wrap(TypeError, "ternary", err, "ternary condition")
	}
	if ok {
		return ip.evalExpr(n.Children[1])
	}
	return ip.evalExpr(n.Children[2])
}

// resolveIndices turns a subscript's index value (integer positions or
// a same-length logical mask) into a concrete list of element
// positions against a base of length baseLen (spec §4.6 "Subscript").
// A nil idx (bare `x[]`) denotes every element.
func (ip *Interpreter) resolveIndices(idx *Value, baseLen int) ([]int, error) {
	if idx == nil {
		out := make([]int, baseLen)
		for i := range out {
			out[i] = i
		}
		return out, nil
	}
	switch idx.typ {
	case IntType:
		out := make([]int, idx.Count())
		for i, n := range idx.integer {
			if n < 0 || int(n) >= baseLen {
				return nil, ip.errs.Raise(IndexOutOfRange, "subscript", "index %d out of range (count %d)", n, baseLen)
			}
			out[i] = int(n)
		}
		return out, nil
	case LogicalType:
		if idx.Count() != baseLen {
			return nil, ip.errs.Raise(LengthMismatch, "subscript", "logical subscript length %d does not match operand length %d", idx.Count(), baseLen)
		}
		var out []int
		for i, b := range idx.logical {
			if b {
				out = append(out, i)
			}
		}
		return out, nil
	default:
		return nil, ip.errs.Raise(TypeError, "subscript", "subscript must be integer or logical, got %s", idx.Type())
	}
}

func (ip *Interpreter) evalSubscriptRead(n *Node) (*Value, error) {
	base, err := ip.evalExpr(n.Children[0])
	if err != nil {
		return nil, err
	}
	var idx *Value
	if len(n.Children) > 1 {
		idx, err = ip.evalExpr(n.Children[1])
		if err != nil {
			return nil, err
		}
	}
	positions, err := ip.resolveIndices(idx, base.Count())
	if err != nil {
		return nil, err
	}
	if len(positions) == 0 {
		return emptyOfType(base.typ), nil
	}
	var result *Value
	for _, pos := range positions {
		elem, err := base.GetValueAtIndex(pos)
		if err != nil {
			return nil, err
		}
		if result == nil {
			result = elem.CopyValues()
			continue
		}
		if err := result.AppendFrom(elem); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (ip *Interpreter) evalMemberRead(n *Node) (*Value, error) {
	base, err := ip.evalExpr(n.Children[0])
	if err != nil {
		return nil, err
	}
	if base.typ != ObjectType || base.Count() != 1 {
		return nil, ip.errs.Raise(TypeError, "member", "property access requires a singleton object, got %s[%d]", base.Type(), base.Count())
	}
	class := base.ElementClass()
	if class == nil {
		return nil, ip.errs.Raise(InternalInvariant, "member", "object value has no class descriptor")
	}
	prop, ok := class.Property(n.Name)
	if !ok {
		return nil, ip.errs.Raise(IdentifierUndefined, "member", "class %q has no property %q", class.Name, n.Name)
	}
	return prop.Getter(base.object[0])
}

// evalAssign implements `=`. The left-hand side must be an identifier,
// a subscript of one, or a member access (spec §4.6 "Assign":
// "assignment targets are restricted to identifiers, subscripted
// identifiers, and object properties").
func (ip *Interpreter) evalAssign(n *Node) (*Value, error) {
	lhs, rhs := n.Children[0], n.Children[1]
	value, err := ip.evalExpr(rhs)
	if err != nil {
		return nil, err
	}

	switch lhs.Kind {
	case NodeIdentifier:
		id := Intern(lhs.Name)
		if err := ip.vars.SetValueForSymbol(id, value); err != nil {
			return nil, ip.errs.Wrap(RedefinitionOfConstant, "assign", err, "assignment to "+lhs.Name)
		}
		return value.Invert(), nil

	case NodeSubscript:
		return ip.evalSubscriptAssign(lhs, value)

	case NodeMember:
		return ip.evalMemberAssign(lhs, value)

	default:
		return nil, ip.errs.Raise(InvalidAssignmentTarget, "assign", "invalid assignment target")
	}
}

func (ip *Interpreter) evalSubscriptAssign(lhs *Node, value *Value) (*Value, error) {
	baseNode := lhs.Children[0]
	if baseNode.Kind != NodeIdentifier {
		return nil, ip.errs.Raise(InvalidAssignmentTarget, "assign", "subscript assignment target must be an identifier")
	}
	id := Intern(baseNode.Name)
	base, err := ip.vars.GetValue(id)
	if err != nil {
		return nil, ip.errs.Raise(IdentifierUndefined, "assign", "undefined identifier %q", baseNode.Name)
	}
	var idx *Value
	if len(lhs.Children) > 1 {
		idx, err = ip.evalExpr(lhs.Children[1])
		if err != nil {
			return nil, err
		}
	}
	positions, err := ip.resolveIndices(idx, base.Count())
	if err != nil {
		return nil, err
	}
	if len(positions) > 0 && value.Count() == 0 {
		return nil, ip.errs.Raise(LengthMismatch, "assign", "cannot assign an empty value into %d target elements", len(positions))
	}
	unique := EnsureUnique(base)
	for i, pos := range positions {
		elem, err := value.GetValueAtIndex(i % value.Count())
		if err != nil {
			return nil, err
		}
		if err := unique.SetValueAtIndex(pos, elem); err != nil {
			return nil, ip.errs.Wrap(TypeError, "assign", err, "subscript assignment")
		}
	}
	if err := ip.vars.SetValueForSymbolNoCopy(id, unique); err != nil {
		return nil, ip.errs.Wrap(RedefinitionOfConstant, "assign", err, "subscript assignment to "+baseNode.Name)
	}
	return value.Invert(), nil
}

func (ip *Interpreter) evalMemberAssign(lhs *Node, value *Value) (*Value, error) {
	base, err := ip.evalExpr(lhs.Children[0])
	if err != nil {
		return nil, err
	}
	if base.typ != ObjectType || base.Count() != 1 {
		return nil, ip.errs.Raise(TypeError, "member", "property assignment requires a singleton object, got %s[%d]", base.Type(), base.Count())
	}
	class := base.ElementClass()
	prop, ok := class.Property(lhs.Name)
	if !ok {
		return nil, ip.errs.Raise(IdentifierUndefined, "member", "class %q has no property %q", class.Name, lhs.Name)
	}
	if prop.Setter == nil {
		return nil, ip.errs.Raise(InvalidAssignmentTarget, "member", "property %q is read-only", lhs.Name)
	}
	if err := prop.Setter(base.object[0], value); err != nil {
		return nil, ip.errs.Wrap(TypeError, "member", err, "property assignment to "+lhs.Name)
	}
	return value.Invert(), nil
}

// evalCall resolves and invokes a function or method call. `exists`
// called with a single bare identifier argument is special-cased here
// to check the symbol table without first evaluating the argument,
// since the whole point of exists() is to ask about a name that may
// not be bound (spec §8 scenario 5).
func (ip *Interpreter) evalCall(n *Node) (*Value, error) {
	callee := n.Children[0]
	argNodes := n.Children[1:]

	if callee.Kind == NodeIdentifier && callee.Name == "exists" && len(argNodes) == 1 && argNodes[0].Kind == NodeIdentifier {
		name := argNodes[0].Name
		id, ok := globalInterner.Lookup(name)
		if !ok {
			return FalseValue, nil
		}
		return LogicalSingleton(ip.vars.ContainsSymbol(id)), nil
	}

	if callee.Kind == NodeMember {
		return ip.evalMethodCall(callee, argNodes)
	}
	if callee.Kind != NodeIdentifier {
		return nil, ip.errs.Raise(InvalidAssignmentTarget, "call", "expression is not callable")
	}

	sig, ok := ip.funcs.Lookup(callee.Name)
	if !ok {
		sig, ok = ip.ctx.ResolveFunction(callee.Name)
	}
	if !ok {
		return nil, ip.errs.Raise(IdentifierUndefined, "call", "undefined function %q", callee.Name)
	}
	positional, named, err := ip.evalCallArgs(argNodes)
	if err != nil {
		return nil, err
	}
	args, err := resolveArgs(sig, positional, named)
	if err != nil {
		return nil, ip.errs.Wrap(TypeError, "call", err, "call to "+callee.Name+"()")
	}
	v, err := sig.Call(ip.ctx, ip, args)
	if err != nil {
		return nil, ip.errs.Wrap(TypeError, "call", err, "call to "+callee.Name+"()")
	}
	return v, nil
}

func (ip *Interpreter) evalMethodCall(member *Node, argNodes []*Node) (*Value, error) {
	base, err := ip.evalExpr(member.Children[0])
	if err != nil {
		return nil, err
	}
	if base.typ != ObjectType || base.Count() != 1 {
		return nil, ip.errs.Raise(TypeError, "method", "method call requires a singleton object, got %s[%d]", base.Type(), base.Count())
	}
	class := base.ElementClass()
	if class == nil {
		return nil, ip.errs.Raise(InternalInvariant, "method", "object value has no class descriptor")
	}

	if class == dictionaryClass && member.Name == "getValue" {
		if len(argNodes) != 1 {
			return nil, ip.errs.Raise(TypeError, "method", "getValue() takes exactly one argument")
		}
		keyVal, err := ip.evalExpr(argNodes[0])
		if err != nil {
			return nil, err
		}
		key, err := keyVal.asStringScalar()
		if err != nil {
			return nil, ip.errs.Wrap(TypeError, "method", err, "getValue() key")
		}
		v, ok := DictionaryGet(base.object[0], key)
		if !ok {
			return NullValue, nil
		}
		return v, nil
	}

	if class == dictionaryClass && member.Name == "setValue" {
		if len(argNodes) != 2 {
			return nil, ip.errs.Raise(TypeError, "method", "setValue() takes exactly two arguments")
		}
		keyVal, err := ip.evalExpr(argNodes[0])
		if err != nil {
			return nil, err
		}
		key, err := keyVal.asStringScalar()
		if err != nil {
			return nil, ip.errs.Wrap(TypeError, "method", err, "setValue() key")
		}
		value, err := ip.evalExpr(argNodes[1])
		if err != nil {
			return nil, err
		}
		DictionarySet(base.object[0], key, value.CopyValues())
		return InvisibleNullValue, nil
	}

	sig, ok := class.Method(member.Name)
	if !ok {
		return nil, ip.errs.Raise(IdentifierUndefined, "method", "class %q has no method %q", class.Name, member.Name)
	}
	positional, named, err := ip.evalCallArgs(argNodes)
	if err != nil {
		return nil, err
	}
	args, err := resolveArgs(sig, positional, named)
	if err != nil {
		return nil, ip.errs.Wrap(TypeError, "method", err, "call to "+member.Name+"()")
	}
	v, err := sig.Call(ip.ctx, ip, args)
	if err != nil {
		return nil, ip.errs.Wrap(TypeError, "method", err, "call to "+member.Name+"()")
	}
	return v, nil
}

func (ip *Interpreter) evalCallArgs(argNodes []*Node) ([]*Value, map[string]*Value, error) {
	var positional []*Value
	var named map[string]*Value
	for _, a := range argNodes {
		if a.Kind == NodeNamedArg {
			v, err := ip.evalExpr(a.Children[0])
			if err != nil {
				return nil, nil, err
			}
			if named == nil {
				named = make(map[string]*Value)
			}
			named[a.Name] = v
			continue
		}
		v, err := ip.evalExpr(a)
		if err != nil {
			return nil, nil, err
		}
		positional = append(positional, v)
	}
	return positional, named, nil
}

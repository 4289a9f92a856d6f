package interp

// evalStatement dispatches on a statement node's kind. It returns the
// value produced by the statement (meaningful for ExprStatement, used
// for top-level auto-print) and an error, which may be one of the
// internal control-flow signals (breakSignal, nextSignal,
// returnSignal) rather than a user-facing diagnostic.
func (ip *Interpreter) evalStatement(n *Node) (*Value, error) {
	ip.errs.PushPosition(n.Tok.Span())
	defer ip.errs.PopPosition()

	switch n.Kind {
	case NodeExprStatement:
		return ip.evalExpr(n.Children[0])
	case NodeCompoundStatement:
		return ip.evalCompound(n)
	case NodeIf:
		return ip.evalIf(n)
	case NodeWhile:
		return ip.evalWhile(n)
	case NodeDoWhile:
		return ip.evalDoWhile(n)
	case NodeForIn:
		return ip.evalForIn(n)
	case NodeNext:
		return nil, nextSignal{}
	case NodeBreak:
		return nil, breakSignal{}
	case NodeReturn:
		if len(n.Children) == 0 {
			return nil, returnSignal{value: InvisibleNullValue}
		}
		v, err := ip.evalExpr(n.Children[0])
		if err != nil {
			return nil, err
		}
		return nil, returnSignal{value: v}
	default:
		return nil, ip.errs.Raise(InternalInvariant, "interp", "statement node of kind %d cannot be evaluated", n.Kind)
	}
}

func (ip *Interpreter) evalCompound(n *Node) (*Value, error) {
	last := InvisibleNullValue
	for _, stmt := range n.Children {
		v, err := ip.evalStatement(stmt)
		if err != nil {
			return nil, err
		}
		last = v
	}
	return last, nil
}

func (ip *Interpreter) evalIf(n *Node) (*Value, error) {
	cond, err := ip.evalExpr(n.Children[0])
	if err != nil {
		return nil, err
	}
	ok, err := cond.AsBool()
	if err != nil {
		return nil, ip.errs.Wrap(TypeError, "if", err, "if condition")
	}
	if ok {
		return ip.evalStatement(n.Children[1])
	}
	if len(n.Children) > 2 {
		return ip.evalStatement(n.Children[2])
	}
	return InvisibleNullValue, nil
}

func (ip *Interpreter) evalWhile(n *Node) (*Value, error) {
	condNode, body := n.Children[0], n.Children[1]
	for {
		cond, err := ip.evalExpr(condNode)
		if err != nil {
			return nil, err
		}
		ok, err := cond.AsBool()
		if err != nil {
			return nil, ip.errs.Wrap(TypeError, "while", err, "while condition")
		}
		if !ok {
			break
		}
		if _, err := ip.evalStatement(body); err != nil {
			if _, ok := err.(breakSignal); ok {
				break
			}
			if _, ok := err.(nextSignal); ok {
				continue
			}
			return nil, err
		}
	}
	return InvisibleNullValue, nil
}

func (ip *Interpreter) evalDoWhile(n *Node) (*Value, error) {
	body, condNode := n.Children[0], n.Children[1]
	for {
		if _, err := ip.evalStatement(body); err != nil {
			if _, ok := err.(breakSignal); ok {
				break
			}
			if _, ok := err.(nextSignal); !ok {
				return nil, err
			}
		}
		cond, err := ip.evalExpr(condNode)
		if err != nil {
			return nil, err
		}
		ok, err := cond.AsBool()
		if err != nil {
			return nil, ip.errs.Wrap(TypeError, "do-while", err, "do-while condition")
		}
		if !ok {
			break
		}
	}
	return InvisibleNullValue, nil
}

// evalForIn iterates the induction variable over each element of the
// evaluated iterable, storing it into the variables scope through the
// no-copy fast path reserved for this purpose (spec §4.4, §9): the
// per-element value is either freshly materialized (uniquely owned)
// or a shared static singleton (which is never mutated in place), so
// the ordinary copy-on-write write would only waste a copy.
func (ip *Interpreter) evalForIn(n *Node) (*Value, error) {
	identNode, iterNode, body := n.Children[0], n.Children[1], n.Children[2]
	iterable, err := ip.evalExpr(iterNode)
	if err != nil {
		return nil, err
	}
	id := Intern(identNode.Name)
	for i := 0; i < iterable.Count(); i++ {
		elem, err := iterable.GetValueAtIndex(i)
		if err != nil {
			return nil, err
		}
		if err := ip.vars.SetValueForSymbolNoCopy(id, elem); err != nil {
			return nil, ip.errs.Wrap(RedefinitionOfConstant, "for", err, "for-loop induction variable")
		}
		if _, err := ip.evalStatement(body); err != nil {
			if _, ok := err.(breakSignal); ok {
				break
			}
			if _, ok := err.(nextSignal); ok {
				continue
			}
			return nil, err
		}
	}
	return InvisibleNullValue, nil
}

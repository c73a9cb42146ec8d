package scpi

// Engine dispatches complete program messages against a static command
// tree. Root holds the header-addressable commands (mnemonics without
// a leading '*'); Common holds the IEEE 488.2 common commands, which
// never participate in header-path addressing: a leading '*' always
// resolves against Common regardless of the current header path, and
// never changes it.
type Engine struct {
	Root   *Node
	Common *Node
}

// NewEngine builds an Engine from a device command tree. The mandatory
// IEEE 488.2 common commands are merged in automatically; manufacturer,
// model, serial and firmware populate *IDN?'s four response fields.
func NewEngine(root *Node, manufacturer, model, serial, firmware string) *Engine {
	common := mandatoryCommands()
	common.Children = append(common.Children, IdnLeaf(manufacturer, model, serial, firmware))
	return &Engine{Root: root, Common: common}
}

// Dispatch runs one complete program message (one or more ';'-joined
// units terminated by '\n' or end of input) against dev, writing any
// query responses to sink. Each unit is isolated: an error in one does
// not prevent the engine from resynchronizing to the next.
func (e *Engine) Dispatch(dev StatusDevice, sink Sink, input []byte) {
	lex := NewLexer(input)
	ctx := newContext(e.Root)
	w := NewResponseWriter(sink)
	ctx.writer = w
	for {
		if e.dispatchUnit(dev, ctx, &lex, w) {
			break
		}
	}
	w.CloseMessage()
}

func boundaryKind(k Kind) (isBoundary, isEnd bool) {
	switch k {
	case KindUnitSeparator:
		return true, false
	case KindMessageTerminator:
		return true, true
	default:
		return false, false
	}
}

// resync drains tokens (through args if given, so a token Engine
// already pulled ahead is not skipped) until a unit or message
// boundary is found, reporting whether the message has ended.
func (e *Engine) resync(lex *Lexer, args *Arguments) bool {
	if args != nil {
		if t, ok := args.Terminator(); ok {
			return t.Kind == KindMessageTerminator
		}
	}
	for {
		var tok Token
		var ok bool
		var code ErrorCode
		if args != nil {
			tok, ok, code = args.drain()
		} else {
			tok, ok, code = lex.Next()
		}
		if code != NoError {
			// Every lexical error advances the Lexer, so skipping it
			// still makes progress towards the unit boundary.
			continue
		}
		if !ok {
			return true
		}
		if b, end := boundaryKind(tok.Kind); b {
			return end
		}
	}
}

func (e *Engine) reportError(dev StatusDevice, code ErrorCode) {
	if code == NoError {
		return
	}
	dev.ErrorEnqueue(FromCode(code))
	dev.SetESR(dev.ESR() | code.ESRBit())
}

func matchChild(n *Node, data []byte) *Node {
	for _, c := range n.Children {
		if MatchMnemonic(c.Name, data) {
			return c
		}
	}
	return nil
}

// matchWithDefaults resolves one mnemonic against start's children,
// descending through Default children (SCPI's "[:optional]" header
// components) when the mnemonic doesn't match directly. The default
// nodes traversed are returned separately so the caller only commits
// them to the header path once the overall match succeeds.
func matchWithDefaults(start *Node, data []byte) (matched *Node, defaults []*Node, ok bool) {
	node := start
	for {
		if child := matchChild(node, data); child != nil {
			return child, defaults, true
		}
		dc := node.defaultChild()
		if dc == nil {
			return nil, nil, false
		}
		defaults = append(defaults, dc)
		node = dc
	}
}

// dispatchUnit resolves and runs one ';'-delimited unit, returning
// true if the program message has ended (message terminator or clean
// end of input reached).
func (e *Engine) dispatchUnit(dev StatusDevice, ctx *Context, lex *Lexer, w *ResponseWriter) bool {
	first, ok, code := lex.Next()
	if code != NoError {
		e.reportError(dev, code)
		return e.resync(lex, nil)
	}
	if !ok {
		return true
	}
	if first.Kind == KindMessageTerminator {
		return true
	}
	if first.Kind == KindUnitSeparator {
		return false
	}

	common := false
	switch first.Kind {
	case KindMnemonicSeparator:
		ctx.resetPath(e.Root)
		m, ok2, code2 := lex.Next()
		if !ok2 || code2 != NoError || m.Kind != KindMnemonic {
			e.reportError(dev, orElse(code2, CommandHeaderError))
			return e.resync(lex, nil)
		}
		first = m
	case KindCommonPrefix:
		common = true
		m, ok2, code2 := lex.Next()
		if !ok2 || code2 != NoError || m.Kind != KindMnemonic {
			e.reportError(dev, orElse(code2, CommandHeaderError))
			return e.resync(lex, nil)
		}
		first = m
	case KindMnemonic:
		if len(ctx.path) > 1 {
			ctx.path = ctx.path[:len(ctx.path)-1]
		}
	default:
		e.reportError(dev, CommandHeaderError)
		return e.resync(lex, nil)
	}

	var startNode *Node
	if common {
		startNode = e.Common
	} else {
		startNode = ctx.current()
	}

	node, defaults, found := matchWithDefaults(startNode, first.Data)
	if !found {
		e.reportError(dev, UndefinedHeader)
		return e.resync(lex, nil)
	}
	if !common {
		for _, d := range defaults {
			ctx.descend(d)
		}
		ctx.descend(node)
	}

	// Mnemonic chain: consume ':' <mnemonic> pairs until something else
	// (query suffix, header separator, or a boundary) appears.
	var tail Token
chain:
	for {
		t, ok2, code2 := lex.Next()
		if code2 != NoError {
			e.reportError(dev, code2)
			return e.resync(lex, nil)
		}
		if !ok2 {
			tail = Token{Kind: KindMessageTerminator}
			break chain
		}
		switch t.Kind {
		case KindMnemonicSeparator:
			m, ok3, code3 := lex.Next()
			if !ok3 || code3 != NoError || m.Kind != KindMnemonic {
				e.reportError(dev, orElse(code3, CommandHeaderError))
				return e.resync(lex, nil)
			}
			child, childDefaults, found2 := matchWithDefaults(node, m.Data)
			if !found2 {
				e.reportError(dev, UndefinedHeader)
				return e.resync(lex, nil)
			}
			if !common {
				for _, d := range childDefaults {
					ctx.descend(d)
				}
				ctx.descend(child)
			}
			node = child
		default:
			tail = t
			break chain
		}
	}

	isQuery := tail.Kind == KindQuerySuffix
	if isQuery {
		t, ok2, code2 := lex.Next()
		switch {
		case code2 != NoError:
			e.reportError(dev, code2)
			return e.resync(lex, nil)
		case !ok2:
			tail = Token{Kind: KindMessageTerminator}
		default:
			tail = t
		}
	}

	// Post-chain default descent: a node may be a pure routing branch
	// whose handler actually lives on its default child (e.g. the
	// implicit ':EVENt' under 'STATus:OPERation?').
	for {
		has := node.Handler != nil && ((isQuery && node.Handler.Query != nil) || (!isQuery && node.Handler.Event != nil))
		if has {
			break
		}
		dc := node.defaultChild()
		if dc == nil {
			break
		}
		node = dc
		if !common {
			ctx.descend(node)
		}
	}

	if node.Handler == nil || (isQuery && node.Handler.Query == nil) || (!isQuery && node.Handler.Event == nil) {
		e.reportError(dev, UndefinedHeader)
		if b, end := boundaryKind(tail.Kind); b {
			return end
		}
		return e.resync(lex, nil)
	}

	args := newArguments(lex)
	if b, _ := boundaryKind(tail.Kind); b {
		args.presetTerminator(tail)
	}

	var herr error
	if isQuery {
		unit := w.Begin()
		mark := w.unitStart()
		herr = node.Handler.Query(dev, ctx, args, unit)
		if herr != nil {
			w.rollback(mark)
		} else {
			unit.Finish()
		}
	} else {
		herr = node.Handler.Event(dev, ctx, args)
	}

	if herr == nil {
		if done, derr := args.Done(); derr != nil {
			herr = derr
		} else if !done {
			herr = ParameterNotAllowed
		}
	}

	if herr != nil {
		e.reportError(dev, classifyHandlerError(herr))
	}

	return e.resync(lex, args)
}

// orElse returns fallback when code == NoError, otherwise code; used
// where a failed lookahead read may have its own lexical error that
// should take priority over a generic header error.
func orElse(code ErrorCode, fallback ErrorCode) ErrorCode {
	if code != NoError {
		return code
	}
	return fallback
}

// classifyHandlerError maps a handler's returned error to the
// ErrorCode enqueued to the device's error/event queue: an ErrorCode
// passes through unchanged, anything else becomes a generic Execution
// Error so device-specific failures are still reported per SCPI-99.
func classifyHandlerError(err error) ErrorCode {
	if code, ok := err.(ErrorCode); ok {
		return code
	}
	return ExecutionError
}

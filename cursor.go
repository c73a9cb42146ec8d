package scpi

import (
	"strconv"
	"strings"
)

// Arguments is the lazy cursor a handler uses to read its program data.
// It shares its Lexer with the Engine dispatching the current unit, so
// a handler that never asks for an argument never advances past the
// header, and a handler that asks for three advances through exactly
// three: there is no upfront tokenize-then-bind step.
type Arguments struct {
	lex           *Lexer
	count         int
	pending       Token
	hasPending    bool
	terminator    Token
	hasTerminator bool
}

// newArguments wraps lex for one command unit's program data. lex must
// already be positioned just past the header (and any header
// separator); Arguments never looks backward.
func newArguments(lex *Lexer) *Arguments {
	return &Arguments{lex: lex}
}

// fetchNext returns the next raw token, preferring one already pulled
// ahead by Done.
func (a *Arguments) fetchNext() (Token, bool, ErrorCode) {
	if a.hasPending {
		t := a.pending
		a.hasPending = false
		return t, true, NoError
	}
	return a.lex.Next()
}

// drain is fetchNext exposed for Engine's error-resynchronization loop,
// so it continues from any token Arguments has already pulled off the
// Lexer rather than skipping past it.
func (a *Arguments) drain() (Token, bool, ErrorCode) { return a.fetchNext() }

// Terminator returns the UnitSeparator or MessageTerminator token that
// ended this unit's argument list, once Done or a data read has
// reached it.
func (a *Arguments) Terminator() (Token, bool) { return a.terminator, a.hasTerminator }

// presetTerminator records a boundary token the Engine already pulled
// off the Lexer while resolving the header, before this Arguments
// existed, so Done and the resync scan see it exactly once.
func (a *Arguments) presetTerminator(tok Token) {
	a.terminator = tok
	a.hasTerminator = true
}

func (a *Arguments) nextDataToken() (Token, bool, ErrorCode) {
	if a.hasTerminator {
		return Token{}, false, NoError
	}
	if a.count > 0 {
		sep, ok, err := a.fetchNext()
		if err != NoError {
			return Token{}, false, err
		}
		if !ok {
			a.hasTerminator = true
			a.terminator = Token{Kind: KindMessageTerminator}
			return Token{}, false, NoError
		}
		switch sep.Kind {
		case KindUnitSeparator, KindMessageTerminator:
			a.terminator = sep
			a.hasTerminator = true
			return Token{}, false, NoError
		case KindDataSeparator:
			// consumed; fall through to read the element itself
		default:
			return Token{}, false, SyntaxError
		}
	}
	tok, ok, err := a.fetchNext()
	if err != NoError {
		return Token{}, false, err
	}
	if !ok {
		a.hasTerminator = true
		a.terminator = Token{Kind: KindMessageTerminator}
		return Token{}, false, NoError
	}
	if tok.Kind == KindUnitSeparator || tok.Kind == KindMessageTerminator {
		a.terminator = tok
		a.hasTerminator = true
		return Token{}, false, NoError
	}
	if !tok.IsProgramData() {
		return Token{}, false, SyntaxError
	}
	a.count++
	return tok, true, NoError
}

// next returns the next data token. A clean absence (no more data, no
// error) reports ok=false with a nil error; a missing mandatory
// argument reports MissingParameter.
func (a *Arguments) next(mandatory bool) (Token, bool, error) {
	tok, ok, code := a.nextDataToken()
	if code != NoError {
		return Token{}, false, code
	}
	if !ok {
		if mandatory {
			return Token{}, false, MissingParameter
		}
		return Token{}, false, nil
	}
	return tok, true, nil
}

// Done reports whether the argument list is exhausted, caching
// whatever token follows (a UnitSeparator, MessageTerminator, or
// unconsumed data the handler never asked for) so the Engine can tell
// the two apart: the latter is ParameterNotAllowed.
func (a *Arguments) Done() (bool, error) {
	if a.hasTerminator {
		return true, nil
	}
	tok, ok, code := a.fetchNext()
	if code != NoError {
		return false, code
	}
	if !ok {
		a.hasTerminator = true
		a.terminator = Token{Kind: KindMessageTerminator}
		return true, nil
	}
	if tok.Kind == KindUnitSeparator || tok.Kind == KindMessageTerminator {
		a.terminator = tok
		a.hasTerminator = true
		return true, nil
	}
	a.pending = tok
	a.hasPending = true
	return false, nil
}

func numericValue(tok Token) (float64, error) {
	switch tok.Kind {
	case KindDecimalNumeric:
		f, err := strconv.ParseFloat(string(tok.Data), 64)
		if err != nil {
			return 0, DataTypeError
		}
		return f, nil
	case KindNonDecimalNumeric:
		return float64(tok.NNum), nil
	default:
		return 0, DataTypeError
	}
}

// NumericResult is one resolved <numeric value> argument: either an
// ordinary literal (Special == NumericLiteral, value in Value) or one
// of MAXimum/MINimum/DEFault/UP/DOWN, which the handler must resolve
// against its own parameter range.
type NumericResult struct {
	Special NumericSpecial
	Value   float64
}

// NextNumeric reads a <numeric value>, recognizing the IEEE 488.2
// special forms alongside ordinary numbers.
func (a *Arguments) NextNumeric(mandatory bool) (NumericResult, error) {
	tok, ok, err := a.next(mandatory)
	if err != nil {
		return NumericResult{}, err
	}
	if !ok {
		return NumericResult{}, nil
	}
	if tok.Kind == KindCharacterData {
		switch {
		case tok.EqMnemonic("MAXimum"):
			return NumericResult{Special: NumericMaximum}, nil
		case tok.EqMnemonic("MINimum"):
			return NumericResult{Special: NumericMinimum}, nil
		case tok.EqMnemonic("DEFault"):
			return NumericResult{Special: NumericDefault}, nil
		case tok.EqMnemonic("UP"):
			return NumericResult{Special: NumericUp}, nil
		case tok.EqMnemonic("DOWN"):
			return NumericResult{Special: NumericDown}, nil
		default:
			return NumericResult{}, DataTypeError
		}
	}
	v, cerr := numericValue(tok)
	if cerr != nil {
		return NumericResult{}, cerr
	}
	return NumericResult{Value: v}, nil
}

// Float64 reads a plain <decimal numeric>, rejecting the MAX/MIN/...
// special forms; use NextNumeric where those are legal.
func (a *Arguments) Float64(mandatory bool) (float64, error) {
	tok, ok, err := a.next(mandatory)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	return numericValue(tok)
}

// Float32 is Float64 narrowed to single precision.
func (a *Arguments) Float32(mandatory bool) (float32, error) {
	v, err := a.Float64(mandatory)
	return float32(v), err
}

// Int64 reads an integer, accepting #H/#Q/#B nondecimal literals and
// plain decimal numerics (truncating any fractional part).
func (a *Arguments) Int64(mandatory bool) (int64, error) {
	tok, ok, err := a.next(mandatory)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	switch tok.Kind {
	case KindNonDecimalNumeric:
		return int64(tok.NNum), nil
	case KindDecimalNumeric:
		s := string(tok.Data)
		if !strings.ContainsAny(s, ".eE") {
			if n, perr := strconv.ParseInt(s, 10, 64); perr == nil {
				return n, nil
			}
		}
		f, perr := strconv.ParseFloat(s, 64)
		if perr != nil {
			return 0, DataTypeError
		}
		return int64(f), nil
	default:
		return 0, DataTypeError
	}
}

// Int32 is Int64 narrowed to 32 bits.
func (a *Arguments) Int32(mandatory bool) (int32, error) {
	v, err := a.Int64(mandatory)
	return int32(v), err
}

func unescapeQuoted(data []byte) string {
	var b strings.Builder
	b.Grow(len(data))
	for i := 0; i < len(data); i++ {
		c := data[i]
		if (c == '"' || c == '\'') && i+1 < len(data) && data[i+1] == c {
			b.WriteByte(c)
			i++
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

// String reads string data (quotes stripped, doubled quotes
// collapsed), a self-describing UTF-8 block, or bare character data.
func (a *Arguments) String(mandatory bool) (string, error) {
	tok, ok, err := a.next(mandatory)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", nil
	}
	switch tok.Kind {
	case KindStringData:
		return unescapeQuoted(tok.Data), nil
	case KindUTF8Block:
		return tok.Str, nil
	case KindCharacterData, KindMnemonic:
		return string(tok.Data), nil
	default:
		return "", DataTypeError
	}
}

// Bool reads a boolean argument: 0/1, or the ON/OFF mnemonics.
func (a *Arguments) Bool(mandatory bool) (bool, error) {
	tok, ok, err := a.next(mandatory)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	switch tok.Kind {
	case KindDecimalNumeric, KindNonDecimalNumeric:
		v, cerr := numericValue(tok)
		if cerr != nil {
			return false, cerr
		}
		return v != 0, nil
	case KindCharacterData:
		switch {
		case tok.EqMnemonic("ON"):
			return true, nil
		case tok.EqMnemonic("OFF"):
			return false, nil
		default:
			return false, DataTypeError
		}
	default:
		return false, DataTypeError
	}
}

// Block reads a definite- or indefinite-length arbitrary block,
// returning its raw payload bytes.
func (a *Arguments) Block(mandatory bool) ([]byte, error) {
	tok, ok, err := a.next(mandatory)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	if tok.Kind != KindArbitraryBlock {
		return nil, DataTypeError
	}
	return tok.Data, nil
}

// Choice reads a mnemonic argument and matches it against choices in
// order (each compared with MatchMnemonic's short/long-form rules),
// returning the index of the first match.
func (a *Arguments) Choice(mandatory bool, choices ...string) (int, error) {
	tok, ok, err := a.next(mandatory)
	if err != nil {
		return -1, err
	}
	if !ok {
		return -1, nil
	}
	if tok.Kind != KindCharacterData && tok.Kind != KindMnemonic {
		return -1, DataTypeError
	}
	for i, c := range choices {
		if tok.EqMnemonic(c) {
			return i, nil
		}
	}
	return -1, IllegalParameterValue
}

// ChannelList reads a "(@<entries>)" channel list expression per
// SCPI-99 Vol 1 Ch. 8.3.2.
func (a *Arguments) ChannelList(mandatory bool) ([]ChannelListEntry, error) {
	tok, ok, err := a.next(mandatory)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	if tok.Kind != KindExpressionData || len(tok.Data) == 0 || tok.Data[0] != '@' {
		return nil, InvalidExpression
	}
	inner := strings.TrimSpace(string(tok.Data[1:]))
	if inner == "" {
		return []ChannelListEntry{}, nil
	}
	parts := strings.Split(inner, ",")
	entries := make([]ChannelListEntry, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		entry, perr := parseChannelListEntry(part)
		if perr != nil {
			return nil, InvalidExpression
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func parseChannelListEntry(s string) (ChannelListEntry, error) {
	if idx := strings.IndexByte(s, ':'); idx >= 0 {
		from, err := parseDimensionValues(s[:idx])
		if err != nil {
			return ChannelListEntry{}, err
		}
		to, err := parseDimensionValues(s[idx+1:])
		if err != nil {
			return ChannelListEntry{}, err
		}
		dims := len(from)
		if len(to) > dims {
			dims = len(to)
		}
		return ChannelListEntry{IsRange: true, From: from, To: to, Dimensions: dims}, nil
	}
	from, err := parseDimensionValues(s)
	if err != nil {
		return ChannelListEntry{}, err
	}
	return ChannelListEntry{From: from, Dimensions: len(from)}, nil
}

func parseDimensionValues(s string) ([]int32, error) {
	parts := strings.Split(s, "!")
	values := make([]int32, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseInt(strings.TrimSpace(p), 10, 32)
		if err != nil {
			return nil, err
		}
		values = append(values, int32(v))
	}
	return values, nil
}

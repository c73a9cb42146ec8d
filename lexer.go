package scpi

import (
	"strconv"
	"unicode/utf8"
)

// Lexer walks a SCPI program message one token at a time. It holds no
// heap-allocated state beyond itself: every Token's byte slices alias
// the input buffer, and callers are expected to keep that buffer alive
// for the lifetime of the Lexer.
//
// The header/common/numeric flags mirror IEEE 488.2's own stateful
// grammar: whether we are still inside the header path, whether a
// common ('*') command is in progress, and whether the last program
// data emitted was numeric (so that a following alphabetic run is read
// as a unit suffix rather than character data).
type Lexer struct {
	buffer    []byte
	pos       int
	inHeader  bool
	inCommon  bool
	inNumeric bool
}

// NewLexer creates a Lexer positioned at the start of buffer.
func NewLexer(buffer []byte) Lexer {
	return Lexer{buffer: buffer, pos: 0, inHeader: true}
}

// Pos returns the current byte offset into the original buffer.
func (l *Lexer) Pos() int { return l.pos }

func (l *Lexer) isEOS() bool { return l.pos >= len(l.buffer) }

func (l *Lexer) peek() byte {
	if l.isEOS() {
		return 0
	}
	return l.buffer[l.pos]
}

func (l *Lexer) peekAt(n int) (byte, bool) {
	if l.pos+n >= len(l.buffer) {
		return 0, false
	}
	return l.buffer[l.pos+n], true
}

func (l *Lexer) advance(n int) { l.pos += n }

func isWhitespace(c byte) bool { return c == ' ' || c == '\t' || c == '\r' || c == '\v' || c == '\f' }
func isAlpha(c byte) bool      { return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }
func isDigit(c byte) bool      { return c >= '0' && c <= '9' }
func isMnemonicChar(c byte) bool {
	return isAlpha(c) || isDigit(c) || c == '_'
}

func asciiDigitValue(c byte, radix int) (uint32, bool) {
	var v int
	switch {
	case c >= '0' && c <= '9':
		v = int(c - '0')
	case c >= 'a' && c <= 'z':
		v = int(c-'a') + 10
	case c >= 'A' && c <= 'Z':
		v = int(c-'A') + 10
	default:
		return 0, false
	}
	if v >= radix {
		return 0, false
	}
	return uint32(v), true
}

func (l *Lexer) skipWS() {
	for !l.isEOS() && isWhitespace(l.peek()) {
		l.advance(1)
	}
}

// skipWSToSeparator skips whitespace and verifies the next byte (if
// any) begins a data separator, unit separator or message terminator.
func (l *Lexer) skipWSToSeparator(onBad ErrorCode) ErrorCode {
	l.skipWS()
	if !l.isEOS() {
		c := l.peek()
		if c != ',' && c != ';' && c != '\n' {
			return onBad
		}
	}
	return NoError
}

// Next returns the next token. ok is false with err == NoError at a
// clean end of input; ok is false with err != NoError on a lexical
// error. Callers may keep calling Next to resynchronize past an error.
func (l *Lexer) Next() (tok Token, ok bool, err ErrorCode) {
	if l.isEOS() {
		return Token{}, false, NoError
	}
	x := l.peek()
	switch {
	case x == '*':
		l.inCommon = true
		l.advance(1)
		if c, has := l.peekAt(0); has && !isAlpha(c) {
			return Token{}, false, CommandHeaderError
		}
		return Token{Kind: KindCommonPrefix}, true, NoError

	case x == ':':
		l.advance(1)
		if c, has := l.peekAt(0); has && !isAlpha(c) {
			return Token{}, false, InvalidSeparator
		}
		if !l.inHeader || l.inCommon {
			return Token{}, false, InvalidSeparator
		}
		return Token{Kind: KindMnemonicSeparator}, true, NoError

	case x == '?':
		l.advance(1)
		if c, has := l.peekAt(0); has && !isWhitespace(c) && c != ';' && c != '\n' {
			return Token{}, false, InvalidSeparator
		}
		if !l.inHeader {
			return Token{}, false, InvalidSeparator
		}
		l.inHeader = false
		return Token{Kind: KindQuerySuffix}, true, NoError

	case x == ';':
		l.advance(1)
		l.skipWS()
		l.inHeader = true
		l.inCommon = false
		l.inNumeric = false
		return Token{Kind: KindUnitSeparator}, true, NoError

	case x == '\n':
		l.advance(1)
		return Token{Kind: KindMessageTerminator}, true, NoError

	case x == ',':
		l.advance(1)
		if l.inHeader {
			return Token{}, false, HeaderSeparatorError
		}
		l.inNumeric = false
		l.skipWS()
		if !l.isEOS() {
			c := l.peek()
			if c == ',' || c == ';' || c == '\n' {
				return Token{}, false, SyntaxError
			}
		}
		return Token{Kind: KindDataSeparator}, true, NoError

	case isWhitespace(x):
		l.skipWS()
		l.inHeader = false
		return Token{Kind: KindHeaderSeparator}, true, NoError

	case isAlpha(x):
		if l.inHeader {
			return l.readMnemonic()
		}
		if l.inNumeric {
			return l.readSuffixData()
		}
		return l.readCharacterData()

	case x == '/':
		if l.inHeader {
			l.advance(1)
			return Token{}, false, InvalidSeparator
		}
		return l.readSuffixData()

	case isDigit(x) || x == '-' || x == '+' || x == '.':
		if l.inHeader {
			l.advance(1)
			return Token{}, false, CommandHeaderError
		}
		l.inNumeric = true
		return l.readNumericData()

	case x == '#':
		l.advance(1)
		if l.inHeader {
			return Token{}, false, CommandHeaderError
		}
		if l.isEOS() {
			return Token{}, false, BlockDataError
		}
		c := l.peek()
		l.advance(1)
		if c == 's' || c == 'S' {
			return l.readUTF8Data()
		}
		if isDigit(c) {
			return l.readArbitraryData(c)
		}
		return l.readNonDecimalData(c)

	case x == '\'' || x == '"':
		if l.inHeader {
			l.advance(1)
			return Token{}, false, CommandHeaderError
		}
		return l.readStringData(x, true)

	case x == '(':
		return l.readExpressionData()

	default:
		l.advance(1)
		if x < 0x80 {
			return Token{}, false, SyntaxError
		}
		return Token{}, false, InvalidCharacter
	}
}

// readMnemonic reads a <program mnemonic>: IEEE 488.2 7.6.1, alphabetic
// first character followed by alphanumeric/underscore, max 12 chars.
func (l *Lexer) readMnemonic() (Token, bool, ErrorCode) {
	start := l.pos
	n := 0
	for !l.isEOS() && isMnemonicChar(l.peek()) {
		l.advance(1)
		n++
		if n > 12 {
			return Token{}, false, ProgramMnemonicTooLong
		}
	}
	return Token{Kind: KindMnemonic, Data: l.buffer[start:l.pos]}, true, NoError
}

// readCharacterData reads <character program data>: IEEE 488.2 7.7.1.
func (l *Lexer) readCharacterData() (Token, bool, ErrorCode) {
	start := l.pos
	n := 0
	for !l.isEOS() && isMnemonicChar(l.peek()) {
		l.advance(1)
		n++
		if n > 12 {
			return Token{}, false, CharacterDataTooLong
		}
	}
	data := l.buffer[start:l.pos]
	if code := l.skipWSToSeparator(InvalidCharacterData); code != NoError {
		return Token{}, false, code
	}
	return Token{Kind: KindCharacterData, Data: data}, true, NoError
}

// readNumericData reads <decimal numeric program data>: IEEE 488.2
// 7.7.2, a partial float parse that stops at the first character that
// cannot extend the mantissa or exponent.
func (l *Lexer) readNumericData() (Token, bool, ErrorCode) {
	s := l.buffer[l.pos:]
	i := 0
	n := len(s)
	if i < n && (s[i] == '+' || s[i] == '-') {
		i++
	}
	digitsBefore := 0
	for i < n && isDigit(s[i]) {
		i++
		digitsBefore++
	}
	digitsAfter := 0
	if i < n && s[i] == '.' {
		i++
		for i < n && isDigit(s[i]) {
			i++
			digitsAfter++
		}
	}
	if digitsBefore == 0 && digitsAfter == 0 {
		l.advance(i)
		return Token{}, false, NumericDataError
	}
	if i < n && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < n && (s[j] == '+' || s[j] == '-') {
			j++
		}
		expStart := j
		for j < n && isDigit(s[j]) {
			j++
		}
		if j > expStart {
			i = j
		}
	}
	text := string(s[:i])
	f, perr := strconv.ParseFloat(text, 32)
	if perr != nil {
		if ne, ok := perr.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
			l.advance(i)
			return Token{}, false, ExponentTooLarge
		}
		l.advance(i)
		return Token{}, false, NumericDataError
	}
	l.advance(i)
	l.skipWS()
	return Token{Kind: KindDecimalNumeric, Data: s[:i], Num: float32(f)}, true, NoError
}

// readSuffixData reads <suffix program data>: IEEE 488.2 7.7.3.
func (l *Lexer) readSuffixData() (Token, bool, ErrorCode) {
	start := l.pos
	n := 0
	for !l.isEOS() {
		c := l.peek()
		if !(isAlpha(c) || isDigit(c) || c == '-' || c == '/' || c == '.') {
			break
		}
		l.advance(1)
		n++
		if n > 12 {
			return Token{}, false, SuffixTooLong
		}
	}
	data := l.buffer[start:l.pos]
	if code := l.skipWSToSeparator(InvalidSuffix); code != NoError {
		return Token{}, false, code
	}
	return Token{Kind: KindSuffixData, Data: data}, true, NoError
}

// readNonDecimalData reads <nondecimal numeric program data>: IEEE
// 488.2 7.7.4 (#H/#Q/#B hex/octal/binary literals).
func (l *Lexer) readNonDecimalData(radixChar byte) (Token, bool, ErrorCode) {
	var radix int
	switch radixChar {
	case 'H', 'h':
		radix = 16
	case 'Q', 'q':
		radix = 8
	case 'B', 'b':
		radix = 2
	default:
		return Token{}, false, NumericDataError
	}
	var acc uint32
	any := false
	for !l.isEOS() && (isAlpha(l.peek()) || isDigit(l.peek())) {
		c := l.peek()
		d, okd := asciiDigitValue(c, radix)
		if !okd {
			return Token{}, false, InvalidCharacterInNumber
		}
		acc = acc*uint32(radix) + d
		l.advance(1)
		any = true
	}
	if !any {
		return Token{}, false, NumericDataError
	}
	if code := l.skipWSToSeparator(InvalidSeparator); code != NoError {
		return Token{}, false, code
	}
	return Token{Kind: KindNonDecimalNumeric, NNum: acc}, true, NoError
}

// readStringData reads <string program data>: IEEE 488.2 7.7.5. quote
// is the delimiter byte (' or "); a doubled delimiter is an escaped
// literal quote and is preserved un-collapsed in Data.
func (l *Lexer) readStringData(quote byte, asciiOnly bool) (Token, bool, ErrorCode) {
	l.advance(1)
	start := l.pos
	for {
		if l.isEOS() {
			return Token{}, false, InvalidStringData
		}
		c := l.peek()
		if c == quote {
			l.advance(1)
			if !l.isEOS() && l.peek() == quote {
				l.advance(1)
				continue
			}
			break
		}
		if asciiOnly && c >= 0x80 {
			return Token{}, false, InvalidCharacter
		}
		l.advance(1)
	}
	data := l.buffer[start : l.pos-1]
	if code := l.skipWSToSeparator(InvalidSeparator); code != NoError {
		return Token{}, false, code
	}
	return Token{Kind: KindStringData, Data: data}, true, NoError
}

// readUTF8Data reads the non-standard '#s"..."' / "#s'...'" arbitrary
// UTF-8 block extension: a quoted run validated as UTF-8.
func (l *Lexer) readUTF8Data() (Token, bool, ErrorCode) {
	if l.isEOS() {
		return Token{}, false, InvalidBlockData
	}
	c := l.peek()
	if c != '"' && c != '\'' {
		return Token{}, false, InvalidBlockData
	}
	tok, ok, code := l.readStringData(c, false)
	if !ok {
		return Token{}, false, code
	}
	if !utf8.Valid(tok.Data) {
		return Token{}, false, InvalidBlockData
	}
	return Token{Kind: KindUTF8Block, Str: string(tok.Data)}, true, NoError
}

// readArbitraryData reads <arbitrary block program data>: IEEE 488.2
// 7.7.6. formatDigit is the byte following '#' that was already
// consumed by the dispatcher: '0' means indefinite length (payload
// runs to the final '\n' before <END>), any other digit N means the
// next N characters encode the decimal payload length.
func (l *Lexer) readArbitraryData(formatDigit byte) (Token, bool, ErrorCode) {
	lenDigits, okd := asciiDigitValue(formatDigit, 10)
	if !okd {
		return Token{}, false, InvalidBlockData
	}
	if lenDigits == 0 {
		rest := l.buffer[l.pos:]
		if len(rest) == 0 {
			return Token{}, false, InvalidBlockData
		}
		payload := rest[:len(rest)-1]
		l.advance(len(rest) - 1)
		if l.isEOS() || l.peek() != '\n' {
			return Token{}, false, InvalidBlockData
		}
		l.advance(1)
		return Token{Kind: KindArbitraryBlock, Data: payload}, true, NoError
	}
	if l.pos+int(lenDigits) > len(l.buffer) {
		return Token{}, false, InvalidBlockData
	}
	lenText := l.buffer[l.pos : l.pos+int(lenDigits)]
	payloadLen, perr := strconv.Atoi(string(lenText))
	if perr != nil || payloadLen < 0 {
		return Token{}, false, InvalidBlockData
	}
	l.advance(int(lenDigits))
	if l.pos+payloadLen > len(l.buffer) {
		return Token{}, false, InvalidBlockData
	}
	payload := l.buffer[l.pos : l.pos+payloadLen]
	l.advance(payloadLen)
	if code := l.skipWSToSeparator(InvalidSeparator); code != NoError {
		return Token{}, false, code
	}
	return Token{Kind: KindArbitraryBlock, Data: payload}, true, NoError
}

// readExpressionData reads <expression program data>: IEEE 488.2 7.7.7,
// the content between a matched pair of parentheses.
func (l *Lexer) readExpressionData() (Token, bool, ErrorCode) {
	l.advance(1)
	start := l.pos
	for !l.isEOS() && l.peek() != ')' {
		c := l.peek()
		switch c {
		case '"', '\'', ';', '(':
			return Token{}, false, InvalidExpression
		}
		if c >= 0x80 {
			return Token{}, false, InvalidExpression
		}
		l.advance(1)
	}
	data := l.buffer[start:l.pos]
	if l.isEOS() {
		return Token{}, false, InvalidExpression
	}
	l.advance(1) // consume ')'
	if code := l.skipWSToSeparator(InvalidSuffix); code != NoError {
		return Token{}, false, code
	}
	return Token{Kind: KindExpressionData, Data: data}, true, NoError
}

package scpi

// Kind identifies the lexical category of a Token, mirroring the IEEE
// 488.2 program-message grammar.
type Kind uint8

const (
	// KindMnemonicSeparator is the ':' joining header mnemonics.
	KindMnemonicSeparator Kind = iota
	// KindCommonPrefix is the '*' introducing a common command.
	KindCommonPrefix
	// KindQuerySuffix is the '?' marking a query.
	KindQuerySuffix
	// KindUnitSeparator is the ';' joining program message units.
	KindUnitSeparator
	// KindMessageTerminator is '\n' or end of input.
	KindMessageTerminator
	// KindHeaderSeparator is the whitespace run between a header and its
	// program data.
	KindHeaderSeparator
	// KindDataSeparator is the ',' joining program data elements.
	KindDataSeparator
	// KindMnemonic is a header path component (before the data part).
	KindMnemonic
	// KindCharacterData is a bare mnemonic-shaped program data value.
	KindCharacterData
	// KindDecimalNumeric is a <NRf> numeric, decoded to float32.
	KindDecimalNumeric
	// KindNonDecimalNumeric is a #H/#Q/#B numeric, decoded to uint32.
	KindNonDecimalNumeric
	// KindSuffixData is the unit suffix following a numeric.
	KindSuffixData
	// KindStringData is single- or double-quoted string content
	// (quotes stripped, internal doubled quotes left un-collapsed).
	KindStringData
	// KindArbitraryBlock is the payload of a definite-length
	// '#<n><len><bytes>' or indefinite-length '#0<bytes>\n' block.
	KindArbitraryBlock
	// KindExpressionData is the content between '(' and ')'.
	KindExpressionData
	// KindUTF8Block is a '#s"' ... '"' self-describing UTF-8 block.
	KindUTF8Block
)

func (k Kind) String() string {
	switch k {
	case KindMnemonicSeparator:
		return "MnemonicSeparator"
	case KindCommonPrefix:
		return "CommonPrefix"
	case KindQuerySuffix:
		return "QuerySuffix"
	case KindUnitSeparator:
		return "UnitSeparator"
	case KindMessageTerminator:
		return "MessageTerminator"
	case KindHeaderSeparator:
		return "HeaderSeparator"
	case KindDataSeparator:
		return "DataSeparator"
	case KindMnemonic:
		return "Mnemonic"
	case KindCharacterData:
		return "CharacterData"
	case KindDecimalNumeric:
		return "DecimalNumeric"
	case KindNonDecimalNumeric:
		return "NonDecimalNumeric"
	case KindSuffixData:
		return "SuffixData"
	case KindStringData:
		return "StringData"
	case KindArbitraryBlock:
		return "ArbitraryBlock"
	case KindExpressionData:
		return "ExpressionData"
	case KindUTF8Block:
		return "UTF8Block"
	default:
		return "Unknown"
	}
}

// Token is a single lexical unit produced by the Lexer. Data slices
// alias the original input buffer; no copy is made except where the
// value must be decoded (Num, NNum, Str).
type Token struct {
	Kind Kind
	Data []byte  // raw content; semantics depend on Kind (see Kind doc)
	Num  float32 // valid when Kind == KindDecimalNumeric
	NNum uint32  // valid when Kind == KindNonDecimalNumeric
	Str  string  // valid when Kind == KindUTF8Block (decoded, validated UTF-8)
}

// IsProgramData reports whether the token is one of the data-bearing
// kinds that can appear as an element in an argument list.
func (t Token) IsProgramData() bool {
	switch t.Kind {
	case KindCharacterData, KindDecimalNumeric, KindNonDecimalNumeric,
		KindStringData, KindArbitraryBlock, KindExpressionData, KindUTF8Block:
		return true
	default:
		return false
	}
}

// EqMnemonic reports whether this token (which must be KindMnemonic or
// KindCharacterData) is equivalent to the canonical mnemonic pattern,
// per the short/long-form and indexed-mnemonic rules.
func (t Token) EqMnemonic(canonical string) bool {
	if t.Kind != KindMnemonic && t.Kind != KindCharacterData {
		return false
	}
	return MatchMnemonic(canonical, t.Data)
}

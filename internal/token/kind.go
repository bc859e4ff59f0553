package token

// Kind represents the category of a source token.
type Kind uint8

const (
	// Invalid indicates an erroneous token.
	Invalid Kind = iota
	// EOF marks the end of the source input.
	EOF

	// Ident represents an identifier token.
	Ident
	// IntLit is an integer constant, suffix included.
	IntLit
	// FloatLit is a floating constant.
	FloatLit
	// CharLit is a character constant such as 'a' or L'\n'.
	CharLit
	// StringLit is a string literal, prefix included.
	StringLit

	KwAuto     // auto
	KwBreak    // break
	KwCase     // case
	KwChar     // char
	KwConst    // const
	KwContinue // continue
	KwDefault  // default
	KwDo       // do
	KwDouble   // double
	KwElse     // else
	KwEnum     // enum
	KwExtern   // extern
	KwFloat    // float
	KwFor      // for
	KwGoto     // goto
	KwIf       // if
	KwInline   // inline
	KwInt      // int
	KwLong     // long
	KwRegister // register
	KwRestrict // restrict
	KwReturn   // return
	KwShort    // short
	KwSigned   // signed
	KwSizeof   // sizeof
	KwStatic   // static
	KwStruct   // struct
	KwSwitch   // switch
	KwTypedef  // typedef
	KwUnion    // union
	KwUnsigned // unsigned
	KwVoid     // void
	KwVolatile // volatile
	KwWhile    // while
	KwBool     // _Bool

	Plus          // +
	Minus         // -
	Star          // *
	Slash         // /
	Percent       // %
	PlusPlus      // ++
	MinusMinus    // --
	Assign        // =
	PlusAssign    // +=
	MinusAssign   // -=
	StarAssign    // *=
	SlashAssign   // /=
	PercentAssign // %=
	AmpAssign     // &=
	PipeAssign    // |=
	CaretAssign   // ^=
	ShlAssign     // <<=
	ShrAssign     // >>=
	EqEq          // ==
	Bang          // !
	BangEq        // !=
	Lt            // <
	LtEq          // <=
	Gt            // >
	GtEq          // >=
	Shl           // <<
	Shr           // >>
	Amp           // &
	Pipe          // |
	Caret         // ^
	Tilde         // ~
	AndAnd        // &&
	OrOr          // ||
	Question      // ?
	Colon         // :
	Semicolon     // ;
	Comma         // ,
	Dot           // .
	Arrow         // ->
	LParen        // (
	RParen        // )
	LBrace        // {
	RBrace        // }
	LBracket      // [
	RBracket      // ]
	Hash          // #
	Ellipsis      // ...
)

var kindNames = [...]string{
	Invalid:       "Invalid",
	EOF:           "EOF",
	Ident:         "Ident",
	IntLit:        "IntLit",
	FloatLit:      "FloatLit",
	CharLit:       "CharLit",
	StringLit:     "StringLit",
	KwAuto:        "auto",
	KwBreak:       "break",
	KwCase:        "case",
	KwChar:        "char",
	KwConst:       "const",
	KwContinue:    "continue",
	KwDefault:     "default",
	KwDo:          "do",
	KwDouble:      "double",
	KwElse:        "else",
	KwEnum:        "enum",
	KwExtern:      "extern",
	KwFloat:       "float",
	KwFor:         "for",
	KwGoto:        "goto",
	KwIf:          "if",
	KwInline:      "inline",
	KwInt:         "int",
	KwLong:        "long",
	KwRegister:    "register",
	KwRestrict:    "restrict",
	KwReturn:      "return",
	KwShort:       "short",
	KwSigned:      "signed",
	KwSizeof:      "sizeof",
	KwStatic:      "static",
	KwStruct:      "struct",
	KwSwitch:      "switch",
	KwTypedef:     "typedef",
	KwUnion:       "union",
	KwUnsigned:    "unsigned",
	KwVoid:        "void",
	KwVolatile:    "volatile",
	KwWhile:       "while",
	KwBool:        "_Bool",
	Plus:          "+",
	Minus:         "-",
	Star:          "*",
	Slash:         "/",
	Percent:       "%",
	PlusPlus:      "++",
	MinusMinus:    "--",
	Assign:        "=",
	PlusAssign:    "+=",
	MinusAssign:   "-=",
	StarAssign:    "*=",
	SlashAssign:   "/=",
	PercentAssign: "%=",
	AmpAssign:     "&=",
	PipeAssign:    "|=",
	CaretAssign:   "^=",
	ShlAssign:     "<<=",
	ShrAssign:     ">>=",
	EqEq:          "==",
	Bang:          "!",
	BangEq:        "!=",
	Lt:            "<",
	LtEq:          "<=",
	Gt:            ">",
	GtEq:          ">=",
	Shl:           "<<",
	Shr:           ">>",
	Amp:           "&",
	Pipe:          "|",
	Caret:         "^",
	Tilde:         "~",
	AndAnd:        "&&",
	OrOr:          "||",
	Question:      "?",
	Colon:         ":",
	Semicolon:     ";",
	Comma:         ",",
	Dot:           ".",
	Arrow:         "->",
	LParen:        "(",
	RParen:        ")",
	LBrace:        "{",
	RBrace:        "}",
	LBracket:      "[",
	RBracket:      "]",
	Hash:          "#",
	Ellipsis:      "...",
}

// String returns the lexeme for keywords and punctuators and the kind name otherwise.
func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "Kind(?)"
}

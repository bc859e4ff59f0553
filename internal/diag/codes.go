package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Лексические
	LexInfo                     Code = 1000
	LexUnknownChar              Code = 1001
	LexUnterminatedString       Code = 1002
	LexUnterminatedBlockComment Code = 1003
	LexBadNumber                Code = 1004
	LexUnterminatedChar         Code = 1005
	LexBadEscape                Code = 1006
	LexTokenTooLong             Code = 1007
	LexBadDirective             Code = 1008

	// Синтаксические
	SynInfo              Code = 2000
	SynUnexpectedToken   Code = 2001
	SynExpectSemicolon   Code = 2002
	SynExpectIdentifier  Code = 2003
	SynExpectExpression  Code = 2004
	SynExpectType        Code = 2005
	SynUnclosedParen     Code = 2006
	SynUnclosedBrace     Code = 2007
	SynUnclosedBracket   Code = 2008
	SynBadDeclSpecifiers Code = 2009

	// Семантика C
	SemaInfo            Code = 3000
	SemaUndeclaredIdent Code = 3001
	SemaUnknownTypeName Code = 3002
	SemaRedefinition    Code = 3003
	SemaNotAFunction    Code = 3004
	SemaBadDereference  Code = 3005
	SemaNoMember        Code = 3006
	SemaArgCount        Code = 3007
	SemaBadOperands     Code = 3008
	SemaNotRecord       Code = 3009
	SemaNotSubscript    Code = 3010

	IOLoadFileError Code = 4001

	CfgInfo           Code = 5000
	CfgUnknownKey     Code = 5001
	CfgBadFunction    Code = 5002
	CfgBadTypedef     Code = 5003
	CfgUnknownTarget  Code = 5004
	CfgUnknownCharset Code = 5005

	// GVariant format-string findings
	GVarInfo               Code = 6000
	GVarInvalidFormatChar  Code = 6001
	GVarUnterminatedTuple  Code = 6002
	GVarMalformedDictEntry Code = 6003
	GVarMissingArgument    Code = 6004
	GVarNullNotAllowed     Code = 6005
	GVarTypeMismatch       Code = 6006
	GVarArchDependent      Code = 6007
	GVarUnconsumedFormat   Code = 6008
	GVarUnconsumedArgument Code = 6009
	GVarNonLiteralFormat   Code = 6010
	GVarNestingTooDeep     Code = 6011
)

var (
	codeDescription = map[Code]string{
		UnknownCode:                 "Unknown error",
		LexInfo:                     "Lexical information",
		LexUnknownChar:              "Unknown character",
		LexUnterminatedString:       "Unterminated string literal",
		LexUnterminatedBlockComment: "Unterminated block comment",
		LexBadNumber:                "Invalid numeric literal",
		LexUnterminatedChar:         "Unterminated character literal",
		LexBadEscape:                "Invalid escape sequence",
		LexTokenTooLong:             "Token too long",
		LexBadDirective:             "Invalid preprocessor directive",
		SynInfo:                     "Syntax information",
		SynUnexpectedToken:          "Unexpected token",
		SynExpectSemicolon:          "Expected ';'",
		SynExpectIdentifier:         "Expected identifier",
		SynExpectExpression:         "Expected expression",
		SynExpectType:               "Expected type",
		SynUnclosedParen:            "Unclosed parenthesis",
		SynUnclosedBrace:            "Unclosed brace",
		SynUnclosedBracket:          "Unclosed bracket",
		SynBadDeclSpecifiers:        "Invalid combination of declaration specifiers",
		SemaInfo:                    "Semantic information",
		SemaUndeclaredIdent:         "Use of undeclared identifier",
		SemaUnknownTypeName:         "Unknown type name",
		SemaRedefinition:            "Redefinition",
		SemaNotAFunction:            "Called object is not a function",
		SemaBadDereference:          "Indirection requires pointer operand",
		SemaNoMember:                "No member with this name",
		SemaArgCount:                "Wrong number of arguments",
		SemaBadOperands:             "Invalid operands to operator",
		SemaNotRecord:               "Member access on non-record type",
		SemaNotSubscript:            "Subscripted value is not an array or pointer",
		IOLoadFileError:             "I/O load file error",
		CfgInfo:                     "Configuration information",
		CfgUnknownKey:               "Unknown configuration key",
		CfgBadFunction:              "Invalid function entry",
		CfgBadTypedef:               "Invalid typedef entry",
		CfgUnknownTarget:            "Unknown target data model",
		CfgUnknownCharset:           "Unknown input charset",
		GVarInfo:                    "GVariant information",
		GVarInvalidFormatChar:       "Invalid GVariant format character",
		GVarUnterminatedTuple:       "Unterminated GVariant tuple",
		GVarMalformedDictEntry:      "Malformed GVariant dict entry",
		GVarMissingArgument:         "Missing GVariant variadic argument",
		GVarNullNotAllowed:          "NULL passed for non-maybe GVariant argument",
		GVarTypeMismatch:            "GVariant argument type mismatch",
		GVarArchDependent:           "Architecture-dependent GVariant argument type",
		GVarUnconsumedFormat:        "Unconsumed GVariant format string",
		GVarUnconsumedArgument:      "Unexpected GVariant variadic argument",
		GVarNonLiteralFormat:        "Non-literal GVariant format string",
		GVarNestingTooDeep:          "GVariant format string nested too deeply",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("LEX%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("SEM%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("CFG%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("GVR%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}

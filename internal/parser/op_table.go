package parser

import (
	"tartan/internal/token"
)

// Таблица приоритетов для бинарных операторов
// Чем больше число, тем выше приоритет
const (
	precLogicalOr      = 1  // ||
	precLogicalAnd     = 2  // &&
	precBitwiseOr      = 3  // |
	precBitwiseXor     = 4  // ^
	precBitwiseAnd     = 5  // &
	precEquality       = 6  // == !=
	precComparison     = 7  // < <= > >=
	precShift          = 8  // << >>
	precAdditive       = 9  // + -
	precMultiplicative = 10 // * / %
)

// getBinaryOperatorPrec возвращает приоритет бинарного оператора или -1.
// Присваивание, запятая и ?: разбираются отдельно.
func (p *Parser) getBinaryOperatorPrec(kind token.Kind) int {
	switch kind {
	// Логические операторы
	case token.OrOr:
		return precLogicalOr
	case token.AndAnd:
		return precLogicalAnd

	// Битовые операторы (в C ниже сравнений)
	case token.Pipe:
		return precBitwiseOr
	case token.Caret:
		return precBitwiseXor
	case token.Amp:
		return precBitwiseAnd

	// Операторы равенства
	case token.EqEq, token.BangEq:
		return precEquality

	// Операторы сравнения
	case token.Lt, token.LtEq, token.Gt, token.GtEq:
		return precComparison

	// Сдвиги
	case token.Shl, token.Shr:
		return precShift

	// Арифметические операторы
	case token.Plus, token.Minus:
		return precAdditive
	case token.Star, token.Slash, token.Percent:
		return precMultiplicative

	default:
		return -1 // не бинарный оператор
	}
}

// compoundAssignOp возвращает бинарный оператор составного присваивания.
func compoundAssignOp(kind token.Kind) (token.Kind, bool) {
	switch kind {
	case token.PlusAssign:
		return token.Plus, true
	case token.MinusAssign:
		return token.Minus, true
	case token.StarAssign:
		return token.Star, true
	case token.SlashAssign:
		return token.Slash, true
	case token.PercentAssign:
		return token.Percent, true
	case token.AmpAssign:
		return token.Amp, true
	case token.PipeAssign:
		return token.Pipe, true
	case token.CaretAssign:
		return token.Caret, true
	case token.ShlAssign:
		return token.Shl, true
	case token.ShrAssign:
		return token.Shr, true
	default:
		return token.Invalid, false
	}
}

func isAssignOp(kind token.Kind) bool {
	if kind == token.Assign {
		return true
	}
	_, ok := compoundAssignOp(kind)
	return ok
}

func isUnaryOp(kind token.Kind) bool {
	switch kind {
	case token.Amp, token.Star, token.Plus, token.Minus, token.Tilde, token.Bang,
		token.PlusPlus, token.MinusMinus:
		return true
	default:
		return false
	}
}

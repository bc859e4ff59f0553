package lexer

import (
	"tartan/internal/diag"
	"tartan/internal/source"
)

// maxTokenLength caps a single token; longer input is treated as garbage.
const maxTokenLength = 1 << 16

type Options struct {
	Reporter diag.Reporter // может быть nil - тогда ошибки игнорируем (но продолжаем лексить)
	// NoDirectives отключает распознавание директив: '#' всегда токен.
	// Нужно для повторного лексирования тел макросов.
	NoDirectives bool
}

func (lx *Lexer) errLex(code diag.Code, sp source.Span, msg string) {
	if lx.opts.Reporter != nil {
		lx.opts.Reporter.Report(code, diag.SevError, sp, msg, nil, nil)
	}
}

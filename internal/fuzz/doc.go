// Package fuzztests houses Go fuzz harnesses that exercise the checking
// pipeline (source -> lexer -> preprocessor -> parser -> GVariant checker).
// Its goal is to smoke test robustness and guard against panics, hangs and
// malformed spans on arbitrary C inputs and format strings.
//
// Назначение: запускать fuzz-обработчики, которые загружают байты в FileSet и
// прогоняют их через лексер, парсер и проверку вызовов.
//
// Не делает: генерацию корпусов, запись файлов, выполнение CLI.
//
// Зависимости: internal/source, internal/lexer, internal/driver,
// internal/casefile, internal/testkit.

package fuzztests

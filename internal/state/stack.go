// Package state кодирует стек состояний диалога в плоскую строку и обратно.
//
// Стек хранится как токены, склеенные через ":"; токен может нести полезную
// нагрузку после "-", например "selected_carriers-482". Нижний токен стека
// всегда "initial".
package state

import "strings"

const (
	// Initial — нижний токен любого активного диалога.
	Initial = "initial"

	// Start — сигнальное значение для пустого стека (пользователь ещё не
	// начинал диалог).
	Start = "start"
)

const (
	tokenSep   = ":"
	payloadSep = "-"
)

// Encode склеивает токены в строку для хранения.
func Encode(tokens []string) string {
	return strings.Join(tokens, tokenSep)
}

// Decode разбирает строку стека на токены. Пустая строка — пустой стек.
// Содержимое токенов не проверяется: кривой токен проходит как есть.
func Decode(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, tokenSep)
}

// Current возвращает верхний токен стека или Start для пустого стека.
func Current(tokens []string) string {
	if len(tokens) == 0 {
		return Start
	}
	return tokens[len(tokens)-1]
}

// Base возвращает имя состояния — часть токена до первого "-".
func Base(token string) string {
	base, _, _ := strings.Cut(token, payloadSep)
	return base
}

// Payload возвращает полезную нагрузку токена — часть после первого "-".
func Payload(token string) (string, bool) {
	_, payload, ok := strings.Cut(token, payloadSep)
	return payload, ok
}

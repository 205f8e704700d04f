package bitrix

import (
	"strconv"
	"strings"
)

// parseIDList разбирает PHP-сериализованный массив идентификаторов сделок,
// как он лежит в пользовательских полях b_uts_crm_deal:
//
//	a:2:{i:0;s:7:"1253122";i:1;i:482917;}
//
// Возвращаются значения массива (чётные скаляры — ключи, нечётные —
// значения). Неразборные элементы молча пропускаются: битый элемент списка
// не должен ронять весь сценарий.
func parseIDList(raw string) []int64 {
	raw = strings.TrimSpace(raw)
	open := strings.Index(raw, "{")
	closing := strings.LastIndex(raw, "}")
	if open < 0 || closing < open {
		return nil
	}
	body := raw[open+1 : closing]

	var ids []int64
	pos := 0
	idx := 0
	for pos < len(body) {
		val, next, ok := readScalar(body, pos)
		if !ok {
			break
		}
		// значения идут после ключей
		if idx%2 == 1 {
			if n, err := strconv.ParseInt(val, 10, 64); err == nil {
				ids = append(ids, n)
			}
		}
		pos = next
		idx++
	}
	return ids
}

// readScalar читает один сериализованный скаляр начиная с pos и возвращает
// его строковое значение и позицию за ним.
func readScalar(s string, pos int) (string, int, bool) {
	if pos+2 > len(s) {
		return "", 0, false
	}

	switch s[pos] {
	case 'i':
		// i:<число>;
		end := strings.IndexByte(s[pos:], ';')
		if end < 0 {
			return "", 0, false
		}
		return s[pos+2 : pos+end], pos + end + 1, true
	case 's':
		// s:<длина>:"<строка>";
		rest := s[pos+2:]
		colon := strings.IndexByte(rest, ':')
		if colon < 0 {
			return "", 0, false
		}
		n, err := strconv.Atoi(rest[:colon])
		if err != nil {
			return "", 0, false
		}
		start := pos + 2 + colon + 2 // за `:"`
		end := start + n
		if end+2 > len(s) {
			return "", 0, false
		}
		return s[start:end], end + 2, true // за `";`
	default:
		// прочие типы пропускаем до ближайшего ';'
		end := strings.IndexByte(s[pos:], ';')
		if end < 0 {
			return "", 0, false
		}
		return "", pos + end + 1, true
	}
}

package bot

// Клавиатуры собираются в собственные структуры, а не в tgbotapi.NewReplyKeyboard:
// Bot API поддерживает is_persistent, которого нет в типах библиотеки, а
// tgbotapi сериализует reply_markup любым json.Marshal-совместимым значением.

type keyboardButton struct {
	Text           string `json:"text"`
	RequestContact bool   `json:"request_contact,omitempty"`
}

type replyKeyboard struct {
	Keyboard       [][]keyboardButton `json:"keyboard"`
	ResizeKeyboard bool               `json:"resize_keyboard,omitempty"`
	IsPersistent   bool               `json:"is_persistent,omitempty"`
}

// menuKeyboard строит меню: одна кнопка — один ряд.
func menuKeyboard(labels ...string) replyKeyboard {
	rows := make([][]keyboardButton, 0, len(labels))
	for _, label := range labels {
		rows = append(rows, []keyboardButton{{Text: label}})
	}
	return replyKeyboard{
		Keyboard:       rows,
		ResizeKeyboard: true,
		IsPersistent:   true,
	}
}

// mainMenuKeyboard — два верхнеуровневых пункта сценария.
func mainMenuKeyboard() replyKeyboard {
	return menuKeyboard(btnAvailableCarriers, btnArchive)
}

// contactKeyboard — одна кнопка запроса номера телефона.
func contactKeyboard() replyKeyboard {
	return replyKeyboard{
		Keyboard: [][]keyboardButton{
			{{Text: btnShareContact, RequestContact: true}},
		},
		IsPersistent: true,
	}
}

package models

// LocalizedText хранит переводы поля по кодам языков.
// Явная таблица вместо динамического выбора поля nameRu/nameUz.
type LocalizedText struct {
	Ru string `json:"ru" yaml:"ru"`
	Uz string `json:"uz,omitempty" yaml:"uz,omitempty"`
}

// Resolve возвращает перевод для языка, с откатом на русский.
func (t LocalizedText) Resolve(language string) string {
	if language == LanguageUz && t.Uz != "" {
		return t.Uz
	}
	return t.Ru
}

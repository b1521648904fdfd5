package domain

import (
	"encoding/json"
	"strings"
)

// Recommendation — одна рекомендация по улучшению кода,
// полученная от модели при инспекции файла.
type Recommendation struct {
	// File — путь к файлу, к которому относится рекомендация.
	File string `json:"file"`

	// Summary — краткое описание в стиле conventional commit.
	// Используется как сообщение коммита при применении.
	Summary string `json:"summary"`

	// Recommendation — текст рекомендации (что именно поменять).
	Recommendation Instructions `json:"recommendation"`
}

// CommitMessage возвращает сообщение коммита для рекомендации.
// Если summary пустой, возвращает generic-сообщение.
func (r *Recommendation) CommitMessage() string {
	if r == nil || r.Summary == "" {
		return "Apply review recommendations"
	}
	return r.Summary
}

// Instructions — текст рекомендации.
//
// Модель возвращает поле recommendation то как строку, то как список
// строк — принимаем оба варианта.
type Instructions string

// UnmarshalJSON принимает строку или массив строк.
func (i *Instructions) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*i = Instructions(s)
		return nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*i = Instructions("- " + strings.Join(list, "\n- "))
	return nil
}

// String возвращает текст рекомендации.
func (i Instructions) String() string {
	return string(i)
}

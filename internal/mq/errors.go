package mq

import (
	"errors"
	"fmt"
)

// ErrPermanent — маркер постоянной ошибки обработки сообщения.
// Повторная доставка такого сообщения не может завершиться успехом:
// оно отклоняется без requeue и уходит в DLQ.
var ErrPermanent = errors.New("permanent failure")

// Permanent помечает ошибку как постоянную.
func Permanent(err error) error {
	return fmt.Errorf("%w: %w", ErrPermanent, err)
}

// IsPermanent возвращает true, если ошибка помечена как постоянная.
func IsPermanent(err error) bool {
	return errors.Is(err, ErrPermanent)
}

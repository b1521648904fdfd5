package tools

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/shaiso/Critiquely/internal/domain"
)

// Ошибки инструментов.
var (
	// ErrToolNotFound — инструмент не найден в реестре.
	ErrToolNotFound = errors.New("tool not found")

	// ErrInvalidArgs — невалидные аргументы вызова.
	ErrInvalidArgs = errors.New("invalid tool arguments")

	// ErrPathOutsideRoot — путь выходит за пределы рабочей директории.
	ErrPathOutsideRoot = errors.New("path escapes working directory")
)

// Tool — внешняя возможность, которую модель может запросить по имени.
//
// Каждый инструмент описывает себя схемой (Def) для передачи модели
// и выполняет вызов с JSON-аргументами.
type Tool interface {
	// Name возвращает имя инструмента.
	Name() string

	// Def возвращает описание инструмента для модели.
	Def() domain.ToolDef

	// Execute выполняет вызов и возвращает текстовый результат.
	Execute(ctx context.Context, args json.RawMessage) (string, error)
}

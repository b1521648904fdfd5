// Package tools содержит инструменты, доступные модели при
// применении рекомендаций.
//
// # Интерфейс Tool
//
// Все инструменты реализуют интерфейс Tool:
//
//	type Tool interface {
//	    Name() string
//	    Def() domain.ToolDef
//	    Execute(ctx context.Context, args json.RawMessage) (string, error)
//	}
//
// # Registry
//
// Registry — потокобезопасный реестр инструментов. Defs() отдаёт
// схемы для передачи модели, Execute() выполняет запрошенный вызов.
//
// # Файловые инструменты (fs.go)
//
// read_file, write_file, list_directory работают с рабочей копией
// репозитория. Пути относительны корню клона; выход за его пределы
// (абсолютные пути, "../") отклоняется с ErrPathOutsideRoot.
package tools

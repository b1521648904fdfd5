// Package llm содержит адаптер модели (Anthropic Messages API).
//
// Адаптер переводит доменную историю диалога ([]domain.Turn) в формат
// API и обратно. Инструментальный цикл (tool use) живёт не здесь:
// клиент возвращает запрос модели на вызов инструмента как есть,
// а решение о выполнении принимает workflow-граф.
package llm

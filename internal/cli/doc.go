// Package cli реализует инструмент командной строки Critiquely.
//
// # Обзор
//
// CLI публикует review-задачи в RabbitMQ и читает записи о runs
// напрямую из Postgres. Отдельного API-сервиса между CLI и системой
// нет: очередь и БД — и есть интерфейс системы.
//
// # Ключевые компоненты
//
// ## Output
//
// Форматирование вывода. Поддерживает два режима:
//   - Таблицы (text/tabwriter) — по умолчанию
//   - JSON (json.Encoder с отступами) — с флагом --json
//
// Данные выводятся в stdout, сообщения (Success/Error) — в stderr.
// Это позволяет использовать pipe: critiquely run list --json | jq .
//
// ## Commands
//
// Cobra-команды организованы по ресурсам:
//   - review: submit
//   - run: list, show
//
// Каждая группа создаётся через фабричную функцию (NewReviewCmd,
// NewRunCmd), принимающую указатели на PersistentFlags корневой
// команды и outputFn — замыкание для ленивого создания Output.
package cli

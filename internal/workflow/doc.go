// Package workflow реализует review-граф: клонирование репозитория,
// инспекция изменённых файлов моделью, применение рекомендаций через
// инструменты и публикация результата отдельным pull request'ом.
//
// Состояние run (State) протекает через узлы графа; каждый узел
// возвращает Delta — частичное обновление, которое сливается в
// состояние по политике полей (Merge). Внешние зависимости узлов
// (git, хостинг, модель, инструменты) абстрагированы интерфейсами
// и подменяются в тестах.
package workflow

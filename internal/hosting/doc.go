// Package hosting содержит адаптер хостинга исходного кода (GitHub).
//
// Покрывает две операции workflow-графа: создание pull request'а
// с улучшениями и комментарий на оригинальном PR со ссылкой на него.
package hosting

// Package engine содержит движок выполнения workflow-графа.
//
// Включает:
//   - graph.go      — сборка графа, валидация и цикл выполнения
//   - route.go      — закрытый тип решения маршрутизатора
//   - checkpoint.go — сохранение и возобновление run по checkpoint'ам
//
// Движок не знает о предметной области: узлы, дельты и merge-политика
// задаются параметрами типов и функциями при сборке графа.
package engine

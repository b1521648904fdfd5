package engine

// EndNode — имя виртуального терминального узла графа.
// Ребро или маршрут, указывающий на EndNode, завершает выполнение.
const EndNode = "__end__"

// Route — решение условного маршрутизатора: переход к именованному
// узлу либо завершение графа. Закрытый тип: создаётся только через
// To и End, что исключает сравнение "сырых" строк в вызывающем коде.
type Route struct {
	next string
}

// To возвращает маршрут к узлу с именем name.
func To(name string) Route {
	return Route{next: name}
}

// End возвращает терминальный маршрут.
func End() Route {
	return Route{next: EndNode}
}

// IsEnd возвращает true, если маршрут терминальный.
func (r Route) IsEnd() bool {
	return r.next == EndNode
}

// Next возвращает имя следующего узла.
func (r Route) Next() string {
	return r.next
}

// Package dispatcher соединяет очередь задач с review-графом.
//
// Dispatcher потребляет задачи из RabbitMQ с семантикой at-least-once:
// задача подтверждается (ack) только после полного выполнения графа.
// Невалидные сообщения и зацикленные runs уходят в DLQ без повтора,
// временные сбои (сеть, API) возвращают сообщение в очередь.
package dispatcher

// Package mq предоставляет инфраструктуру для работы с RabbitMQ.
//
// Структура:
//   - connection.go — управление соединением с RabbitMQ (reconnect, graceful shutdown)
//   - topology.go   — объявление exchanges, queues, bindings
//   - publisher.go  — публикация review-задач
//   - consumer.go   — потребление с ручным ack/nack
//   - errors.go     — классификация постоянных ошибок обработки
//
// Семантика доставки — at-least-once: сообщение подтверждается только
// после полной обработки. Постоянно невалидные сообщения уходят в DLQ
// без requeue, транзиентные ошибки приводят к повторной доставке.
//
// Exchanges:
//   - critiquely.reviews — входящие review-задачи
//   - critiquely.dlq     — dead letter queue
package mq

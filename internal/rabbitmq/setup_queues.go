package rabbitmq

// QueueConfig описывает очередь и ключ маршрутизации в exchange "notifications".
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// GetNotificationQueues возвращает очереди уведомлений об истекающих арендах.
func GetNotificationQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: "notifications.rent-expiring", RoutingKey: "rent.expiring"},
	}
}

package events

import (
	"context"
	"fmt"
	"time"
)

// Topic constants. Area別の配信は TopicAreaRegistered(areaID) を使う。
const (
	TopicRegistered     = "presence.registered"
	topicAreaRegistered = "presence.registered.area.%d"

	// ワイルドカード購読用（NATS記法）
	TopicRegisteredAll = "presence.registered.>"
)

// TopicAreaRegistered returns the per-area subject for registered events.
func TopicAreaRegistered(areaID uint) string {
	return fmt.Sprintf(topicAreaRegistered, areaID)
}

// AttendanceRegistered is broadcast after a badge or manual registration
// succeeds. Consumers (SSE clients, monitoring dashboards) receive the same
// payload shape that the REST API returns.
type AttendanceRegistered struct {
	AttendanceID uint64    `json:"attendance_id"`
	EmployeeID   uint      `json:"employee_id"`
	EmployeeName string    `json:"employee_name"`
	AreaID       uint      `json:"area_id"`
	AreaName     string    `json:"area_name"`
	Kind         string    `json:"kind"`
	Method       string    `json:"method"`
	RegisteredAt time.Time `json:"registered_at"`
	OriginDevice string    `json:"origin_device,omitempty"`
}

// Publisher is the interface for emitting events.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}

// Subscriber receives events from the event bus.
type Subscriber interface {
	// Subscribe delivers raw event payloads on the returned channel.
	// Call the returned cancel function to unsubscribe and close the channel.
	Subscribe(topic string) (<-chan []byte, func(), error)
	Close() error
}

package subscription

import (
	"time"

	"github.com/marmos91/opcuad/pkg/nodestore"
	"github.com/marmos91/opcuad/pkg/ua"
	"github.com/marmos91/opcuad/pkg/ua/uabin"
)

// retainedNotification is one published NotificationMessage kept for
// Republish until acknowledged or overwritten.
type retainedNotification struct {
	sequence uint32
	message  ua.NotificationMessage
}

// Subscription is one periodic publisher owned by a session.
type Subscription struct {
	ID        uint32
	SessionID ua.NodeID

	PublishingInterval         time.Duration
	LifetimeCount              uint32
	MaxKeepAliveCount          uint32
	MaxNotificationsPerPublish uint32
	Priority                   byte
	PublishingEnabled          bool

	items      map[uint32]*MonitoredItem
	nextItemID uint32

	// sequence numbering starts at 1 and is gap-free.
	nextSequence uint32

	// unsent holds assembled messages awaiting a Publish request; retained
	// holds messages eligible for Republish, capped oldest-overwritten.
	unsent   []ua.NotificationMessage
	retained []retainedNotification

	keepAliveCounter uint32
	lifetimeCounter  uint32

	nextCycleAt time.Duration
}

// maxRetained caps the retransmission queue per subscription.
const maxRetained = 32

func newSubscription(id uint32, sessionID ua.NodeID) *Subscription {
	return &Subscription{
		ID:           id,
		SessionID:    sessionID,
		items:        make(map[uint32]*MonitoredItem),
		nextSequence: 1,
	}
}

// AddItem creates a monitored item; the item id is unique within the
// subscription.
func (s *Subscription) AddItem(item ua.ReadValueID, mode ua.MonitoringMode, params ua.MonitoringParameters, filter ua.DataChangeFilter) *MonitoredItem {
	s.nextItemID++
	mi := &MonitoredItem{
		ID:               s.nextItemID,
		ClientHandle:     params.ClientHandle,
		Item:             item,
		SamplingInterval: time.Duration(params.SamplingInterval * float64(time.Millisecond)),
		QueueSize:        params.QueueSize,
		DiscardOldest:    params.DiscardOldest,
		Mode:             mode,
		Filter:           filter,
	}
	if mi.QueueSize == 0 {
		mi.QueueSize = 1
	}
	s.items[mi.ID] = mi
	return mi
}

// GetItem resolves a monitored item id.
func (s *Subscription) GetItem(id uint32) (*MonitoredItem, bool) {
	mi, ok := s.items[id]
	return mi, ok
}

// RemoveItem deletes a monitored item.
func (s *Subscription) RemoveItem(id uint32) bool {
	if _, ok := s.items[id]; !ok {
		return false
	}
	delete(s.items, id)
	return true
}

// ItemCount returns the number of monitored items.
func (s *Subscription) ItemCount() int { return len(s.items) }

// due reports whether a publish cycle should run.
func (s *Subscription) due(now time.Duration) bool {
	return now >= s.nextCycleAt
}

// cycle runs one publish cycle: sample, assemble, and either return a
// NotificationMessage (possibly a keep-alive) or nothing.
func (s *Subscription) cycle(store *nodestore.Store, now time.Duration, wall time.Time) (ua.NotificationMessage, bool) {
	s.nextCycleAt = now + s.PublishingInterval

	for _, mi := range s.items {
		mi.Sample(store, now, wall)
	}

	if !s.PublishingEnabled {
		return ua.NotificationMessage{}, false
	}

	maxPer := int(s.MaxNotificationsPerPublish)
	var notifications []ua.MonitoredItemNotification
	for _, mi := range s.items {
		remaining := 0
		if maxPer > 0 {
			remaining = maxPer - len(notifications)
			if remaining <= 0 {
				break
			}
		}
		notifications = append(notifications, mi.takeNotifications(remaining)...)
	}

	if len(notifications) > 0 {
		msg := ua.NotificationMessage{
			SequenceNumber: s.nextSequence,
			PublishTime:    wall,
			NotificationData: []*ua.ExtensionObject{
				uabin.NewExtensionObject(ua.IDDataChangeNotificationEncoding, &ua.DataChangeNotification{
					MonitoredItems: notifications,
				}),
			},
		}
		s.nextSequence++
		s.keepAliveCounter = 0
		s.retain(msg)
		return msg, true
	}

	s.keepAliveCounter++
	if s.keepAliveCounter >= s.MaxKeepAliveCount {
		s.keepAliveCounter = 0
		msg := ua.NotificationMessage{
			SequenceNumber: s.nextSequence,
			PublishTime:    wall,
		}
		s.nextSequence++
		// Keep-alives are not retained: there is nothing to republish.
		return msg, true
	}
	return ua.NotificationMessage{}, false
}

func (s *Subscription) retain(msg ua.NotificationMessage) {
	if len(s.retained) >= maxRetained {
		s.retained = s.retained[1:]
	}
	s.retained = append(s.retained, retainedNotification{sequence: msg.SequenceNumber, message: msg})
}

// Acknowledge removes a retained notification. Unknown sequence numbers
// report BadSequenceNumberUnknown.
func (s *Subscription) Acknowledge(sequence uint32) ua.StatusCode {
	for i, r := range s.retained {
		if r.sequence == sequence {
			s.retained = append(s.retained[:i], s.retained[i+1:]...)
			return ua.StatusGood
		}
	}
	return ua.StatusBadSequenceNumberUnknown
}

// Republish returns the retained notification for a sequence number.
func (s *Subscription) Republish(sequence uint32) (ua.NotificationMessage, ua.StatusCode) {
	for _, r := range s.retained {
		if r.sequence == sequence {
			return r.message, ua.StatusGood
		}
	}
	return ua.NotificationMessage{}, ua.StatusBadMessageNotAvailable
}

// AvailableSequenceNumbers lists the retained sequence numbers.
func (s *Subscription) AvailableSequenceNumbers() []uint32 {
	out := make([]uint32, len(s.retained))
	for i, r := range s.retained {
		out[i] = r.sequence
	}
	return out
}

// takeUnsent pops the oldest unsent message, if any.
func (s *Subscription) takeUnsent() (ua.NotificationMessage, bool) {
	if len(s.unsent) == 0 {
		return ua.NotificationMessage{}, false
	}
	msg := s.unsent[0]
	s.unsent = s.unsent[1:]
	return msg, true
}

// pushUnsent queues an assembled message for the next Publish request.
func (s *Subscription) pushUnsent(msg ua.NotificationMessage) {
	if len(s.unsent) >= maxRetained {
		s.unsent = s.unsent[1:]
	}
	s.unsent = append(s.unsent, msg)
}

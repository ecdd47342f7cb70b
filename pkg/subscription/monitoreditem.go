// Package subscription implements the publish engine: subscriptions,
// monitored-item sampling, notification assembly, parked Publish requests,
// keep-alives, retransmission and republish.
package subscription

import (
	"reflect"
	"time"

	"github.com/marmos91/opcuad/pkg/nodestore"
	"github.com/marmos91/opcuad/pkg/ua"
)

// MonitoredItem samples one (node, attribute, range) for a subscription.
type MonitoredItem struct {
	ID           uint32
	ClientHandle uint32
	Item         ua.ReadValueID

	SamplingInterval time.Duration
	QueueSize        uint32
	DiscardOldest    bool
	Mode             ua.MonitoringMode
	Filter           ua.DataChangeFilter

	// queue holds sampled-but-unpublished notifications, oldest first.
	queue []ua.MonitoredItemNotification

	lastValue  ua.DataValue
	hasLast    bool
	lastSample time.Duration
}

// Sample reads the monitored attribute if the sampling interval elapsed
// and enqueues a notification when the value changed under the filter's
// trigger rule. Disabled items do not sample.
func (mi *MonitoredItem) Sample(store *nodestore.Store, nowMonotonic time.Duration, wall time.Time) {
	if mi.Mode == ua.MonitoringDisabled {
		return
	}
	if mi.hasLast && nowMonotonic-mi.lastSample < mi.SamplingInterval {
		return
	}
	mi.lastSample = nowMonotonic

	dv := store.ReadAttribute(mi.Item.NodeID, mi.Item.AttributeID, mi.Item.IndexRange)
	dv = dv.WithSourceTimestamp(wall).WithServerTimestamp(wall)

	if mi.hasLast && !triggerChanged(mi.lastValue, dv, mi.Filter.Trigger) {
		return
	}
	mi.lastValue = dv
	mi.hasLast = true
	mi.enqueue(ua.MonitoredItemNotification{ClientHandle: mi.ClientHandle, Value: dv})
}

func (mi *MonitoredItem) enqueue(n ua.MonitoredItemNotification) {
	if mi.QueueSize > 0 && uint32(len(mi.queue)) >= mi.QueueSize {
		if mi.DiscardOldest {
			mi.queue = mi.queue[1:]
		} else {
			// Replace the newest entry.
			mi.queue = mi.queue[:len(mi.queue)-1]
		}
	}
	mi.queue = append(mi.queue, n)
}

// takeNotifications drains up to max queued notifications (0 = all).
// Only items in Reporting mode deliver; Sampling mode keeps its queue.
func (mi *MonitoredItem) takeNotifications(max int) []ua.MonitoredItemNotification {
	if mi.Mode != ua.MonitoringReporting || len(mi.queue) == 0 {
		return nil
	}
	n := len(mi.queue)
	if max > 0 && n > max {
		n = max
	}
	out := mi.queue[:n:n]
	mi.queue = mi.queue[n:]
	return out
}

// triggerChanged applies the DataChange trigger rule.
func triggerChanged(old, new ua.DataValue, trigger ua.DataChangeTrigger) bool {
	if old.StatusCode() != new.StatusCode() {
		return true
	}
	switch trigger {
	case ua.TriggerStatus:
		return false
	case ua.TriggerStatusValue:
		return !reflect.DeepEqual(old.Value, new.Value)
	case ua.TriggerStatusValueTimestamp:
		return !reflect.DeepEqual(old.Value, new.Value) ||
			!old.SourceTimestamp.Equal(new.SourceTimestamp)
	default:
		return !reflect.DeepEqual(old.Value, new.Value)
	}
}

package ua

import "time"

// DataValue wraps a Variant with optional status and timestamps. The Has*
// flags mirror the wire encoding mask: a field is only encoded (and only
// meaningful) when its flag is set.
type DataValue struct {
	Value  Variant
	Status StatusCode

	SourceTimestamp   time.Time
	ServerTimestamp   time.Time
	SourcePicoseconds uint16
	ServerPicoseconds uint16

	HasValue             bool
	HasStatus            bool
	HasSourceTimestamp   bool
	HasServerTimestamp   bool
	HasSourcePicoseconds bool
	HasServerPicoseconds bool
}

// NewDataValue wraps a variant with status Good and no timestamps.
func NewDataValue(v Variant) DataValue {
	return DataValue{Value: v, HasValue: true}
}

// NewDataValueStatus returns a DataValue carrying only a status code.
func NewDataValueStatus(status StatusCode) DataValue {
	return DataValue{Status: status, HasStatus: true}
}

// StatusCode returns the effective status: Good when no status is encoded.
func (d DataValue) StatusCode() StatusCode {
	if !d.HasStatus {
		return StatusGood
	}
	return d.Status
}

// WithSourceTimestamp returns a copy stamped with the given source time.
func (d DataValue) WithSourceTimestamp(t time.Time) DataValue {
	d.SourceTimestamp = t
	d.HasSourceTimestamp = true
	return d
}

// WithServerTimestamp returns a copy stamped with the given server time.
func (d DataValue) WithServerTimestamp(t time.Time) DataValue {
	d.ServerTimestamp = t
	d.HasServerTimestamp = true
	return d
}

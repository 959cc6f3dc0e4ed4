package model

import "time"

// Activity is one logged footprint entry as stored in the `activities`
// table. Carbon is computed once when the activity is created and is never
// recomputed on read.
//
// Fields:
//  ID        – opaque identifier (UUID v4) assigned at creation.
//  UserID    – id of the owning user.
//  Type      – category such as transport, electricity or food.
//  Value     – quantity measured in Unit.
//  Unit      – unit of Value (km, kWh, kg, ...).
//  Carbon    – estimated kg CO₂ for this entry.
//  Timestamp – when the activity happened; defaults to creation time.
type Activity struct {
	ID        string    // activities.id
	UserID    string    // activities.user_id
	Type      string    // activities.category
	Value     float64   // activities.quantity
	Unit      string    // activities.unit
	Carbon    float64   // activities.carbon
	Timestamp time.Time // activities.occurred_at
}

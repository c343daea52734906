package models

import "time"

// Measurement is a single reading taken by the cuff sensor.
type Measurement struct {
	ImpedanceMagnitude float64 `json:"impedance_magnitude" bson:"impedance_magnitude"`
	ImpedancePhase     float64 `json:"impedance_phase" bson:"impedance_phase"`
	Pressure           float64 `json:"pressure" bson:"pressure"`
}

// Sample is a bulk-imported run of measurements for one user.
// The order of Measurements is the sample index used for charting.
type Sample struct {
	ID           string        `json:"_id" bson:"_id"`
	UserID       string        `json:"userId" bson:"userId"`
	Measurements []Measurement `json:"measurements" bson:"measurements"`
}

// BloodPressure is a titled, dated blood-pressure reading of a user.
type BloodPressure struct {
	ID        string     `json:"_id" bson:"_id"`
	Title     string     `json:"title" bson:"title"`
	Date      *time.Time `json:"date,omitempty" bson:"date,omitempty"`
	UserID    string     `json:"userId" bson:"userId"`
	Diastolic string     `json:"diastolic" bson:"diastolic"`
	Systolic  string     `json:"systolic" bson:"systolic"`
	// Measurements optionally embeds the raw sensor run behind the reading.
	Measurements []Measurement `json:"measurements,omitempty" bson:"measurements,omitempty"`
}

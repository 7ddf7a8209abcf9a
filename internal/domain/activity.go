package domain

// TimeBlock is the coarse scheduling unit used instead of exact times.
type TimeBlock string

const (
	TimeBlockMorning   TimeBlock = "morning"
	TimeBlockAfternoon TimeBlock = "afternoon"
	TimeBlockEvening   TimeBlock = "evening"
)

// TimeBlocks lists the blocks in the order they occur during a day.
var TimeBlocks = []TimeBlock{TimeBlockMorning, TimeBlockAfternoon, TimeBlockEvening}

// Valid reports whether b is one of the three known blocks.
func (b TimeBlock) Valid() bool {
	switch b {
	case TimeBlockMorning, TimeBlockAfternoon, TimeBlockEvening:
		return true
	}
	return false
}

// Rank orders blocks within a day. Unknown blocks sort last.
func (b TimeBlock) Rank() int {
	switch b {
	case TimeBlockMorning:
		return 0
	case TimeBlockAfternoon:
		return 1
	case TimeBlockEvening:
		return 2
	}
	return 3
}

// ActivityType classifies an activity.
type ActivityType string

const (
	ActivityTypeAttraction    ActivityType = "attraction"
	ActivityTypeRestaurant    ActivityType = "restaurant"
	ActivityTypeActivity      ActivityType = "activity"
	ActivityTypeTransport     ActivityType = "transport"
	ActivityTypeAccommodation ActivityType = "accommodation"
	ActivityTypeOther         ActivityType = "other"
)

// Valid reports whether t is one of the known activity types.
func (t ActivityType) Valid() bool {
	switch t {
	case ActivityTypeAttraction, ActivityTypeRestaurant, ActivityTypeActivity,
		ActivityTypeTransport, ActivityTypeAccommodation, ActivityTypeOther:
		return true
	}
	return false
}

// SourceType records where an activity came from.
type SourceType string

const (
	SourceAI           SourceType = "ai"
	SourceInspiration  SourceType = "inspiration"
	SourceConfirmation SourceType = "confirmation"
	SourceManual       SourceType = "manual"
)

// Valid reports whether s is one of the known sources.
func (s SourceType) Valid() bool {
	switch s {
	case SourceAI, SourceInspiration, SourceConfirmation, SourceManual:
		return true
	}
	return false
}

// Activity is a single entry in a day's plan.
// ID is assigned once and never reused. IsFixed is always true for
// confirmation-sourced activities; fixed activities are never deleted,
// renamed or moved across days by the engine.
type Activity struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	TimeBlock    TimeBlock    `json:"time_block"`
	SpecificTime string       `json:"specific_time,omitempty"`
	Description  string       `json:"description,omitempty"`
	Type         ActivityType `json:"type"`
	Location     string       `json:"location,omitempty"`
	SourceType   SourceType   `json:"source_type"`
	SourceID     string       `json:"source_id,omitempty"` // back-reference, not ownership
	IsFixed      bool         `json:"is_fixed"`
}

package domain

// ExportRow is a single row in the itinerary export.
// It is a flat, denormalized view: one row per activity, with trip and day
// fields repeated on every row. Days with no activities yield one row with
// empty activity fields so the day still shows up in a spreadsheet.
type ExportRow struct {
	// Trip fields, repeated for every row.
	TripID      string
	TripName    string
	Destination string

	// Day fields.
	DayNumber int
	DayDate   string // "2006-01-02", empty for undated trips

	// Activity fields, zero values when the day is empty.
	ActivityName string
	TimeBlock    TimeBlock
	SpecificTime string
	Type         ActivityType
	Location     string
	SourceType   SourceType
	IsFixed      bool
}

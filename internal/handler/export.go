package handler

import (
	"bytes"
	"encoding/csv"
	"net/http"
	"strconv"

	"github.com/oapi-codegen/runtime"

	"github.com/pkordes/trip-itinerary/internal/domain"
)

// csvHeaders defines the column names written as the first row of any CSV export.
var csvHeaders = []string{
	"trip_id", "trip_name", "destination", "day_number", "day_date",
	"activity_name", "time_block", "specific_time", "type", "location",
	"source_type", "is_fixed",
}

// ExportRow is the JSON form of one export row.
type ExportRow struct {
	TripID       string `json:"trip_id"`
	TripName     string `json:"trip_name"`
	Destination  string `json:"destination"`
	DayNumber    int    `json:"day_number"`
	DayDate      string `json:"day_date,omitempty"`
	ActivityName string `json:"activity_name,omitempty"`
	TimeBlock    string `json:"time_block,omitempty"`
	SpecificTime string `json:"specific_time,omitempty"`
	Type         string `json:"type,omitempty"`
	Location     string `json:"location,omitempty"`
	SourceType   string `json:"source_type,omitempty"`
	IsFixed      bool   `json:"is_fixed"`
}

// ExportTrip handles GET /trips/{tripID}/export.
// It returns one flat row per activity. Use ?format=csv to receive CSV;
// default is JSON.
func (s *Server) ExportTrip(w http.ResponseWriter, r *http.Request) {
	tripID, err := pathUUID(r, "tripID")
	if err != nil {
		paramError(w, err)
		return
	}
	var format *string
	if err := runtime.BindQueryParameter("form", true, false, "format", r.URL.Query(), &format); err != nil {
		paramError(w, err)
		return
	}
	if format != nil && *format != "csv" && *format != "json" {
		requestError(w, "format must be csv or json")
		return
	}

	rows, err := s.trips.Export(r.Context(), ownerID(r), tripID)
	if err != nil {
		serviceError(w, r, err, "trip")
		return
	}

	if format != nil && *format == "csv" {
		writeCSV(w, rows)
		return
	}
	out := make([]ExportRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, domainRowToResponse(row))
	}
	writeJSON(w, http.StatusOK, out)
}

// writeCSV encodes domain rows as CSV with a header row.
func writeCSV(w http.ResponseWriter, rows []domain.ExportRow) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)

	//nolint:errcheck // bytes.Buffer.Write never returns an error.
	cw.Write(csvHeaders)
	for _, r := range rows {
		//nolint:errcheck
		cw.Write(domainRowToCSVRecord(r))
	}
	cw.Flush()

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="itinerary.csv"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	//nolint:errcheck
	w.Write(buf.Bytes())
}

func domainRowToResponse(r domain.ExportRow) ExportRow {
	return ExportRow{
		TripID:       r.TripID,
		TripName:     r.TripName,
		Destination:  r.Destination,
		DayNumber:    r.DayNumber,
		DayDate:      r.DayDate,
		ActivityName: r.ActivityName,
		TimeBlock:    string(r.TimeBlock),
		SpecificTime: r.SpecificTime,
		Type:         string(r.Type),
		Location:     r.Location,
		SourceType:   string(r.SourceType),
		IsFixed:      r.IsFixed,
	}
}

// domainRowToCSVRecord encodes a domain.ExportRow as a flat string slice.
// Empty days leave every activity column blank, including is_fixed.
func domainRowToCSVRecord(r domain.ExportRow) []string {
	fixed := ""
	if r.ActivityName != "" {
		fixed = strconv.FormatBool(r.IsFixed)
	}
	return []string{
		r.TripID,
		r.TripName,
		r.Destination,
		strconv.Itoa(r.DayNumber),
		r.DayDate,
		r.ActivityName,
		string(r.TimeBlock),
		r.SpecificTime,
		string(r.Type),
		r.Location,
		string(r.SourceType),
		fixed,
	}
}

package leads

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"
)

var csvHeader = []string{
	"id", "type", "status", "name", "phone", "email", "truck_make", "truck_model",
	"issue", "location", "urgency", "is_fleet", "fleet_size", "source", "timestamp",
}

// WriteCSV writes a header row and one row per lead.
func WriteCSV(w io.Writer, leads []*Lead) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("leads: write csv header: %w", err)
	}
	for _, l := range leads {
		record := []string{
			l.ID,
			string(l.Type),
			string(l.Status),
			l.Name,
			l.Phone,
			l.Email,
			l.TruckMake,
			l.TruckModel,
			l.Issue,
			l.Location,
			string(l.Urgency),
			strconv.FormatBool(l.IsFleet),
			strconv.Itoa(l.FleetSize),
			l.Source,
			l.Timestamp.UTC().Format(time.RFC3339),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("leads: write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/kilianp07/trikesim/core/model"
)

// WriteJSON writes v to w as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

var passengerHeader = []string{
	"id", "status", "terminal",
	"src_lon", "src_lat", "dest_lon", "dest_lat",
	"create_time", "pickup_time", "death_time", "wait_time", "travel_time",
}

// WritePassengersCSV writes one row per passenger. Wait and travel times
// are left empty until they are known.
func WritePassengersCSV(w io.Writer, passengers []*model.Passenger) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(passengerHeader); err != nil {
		return err
	}
	for _, p := range passengers {
		rec := []string{
			p.ID,
			string(p.Status),
			p.Terminal,
			formatFloat(p.Src.Lon()),
			formatFloat(p.Src.Lat()),
			formatFloat(p.Dest.Lon()),
			formatFloat(p.Dest.Lat()),
			strconv.FormatInt(p.CreateTime, 10),
			optionalTime(p.PickupTime),
			optionalTime(p.DeathTime),
			optionalTime(p.WaitTime()),
			optionalTime(p.TravelTime()),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

func optionalTime(t int64) string {
	if t < 0 {
		return ""
	}
	return strconv.FormatInt(t, 10)
}

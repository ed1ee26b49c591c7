package domain

// ExportRow is a single row of the itinerary table export.
// It is a flat, denormalized view: one row per item, with day fields
// repeated for every item of that day. Days with no items yield one row with
// zero values for all item fields.
type ExportRow struct {
	// Day fields, repeated for every item of the day.
	DayNumber int
	Date      string

	// Item fields. Position is the 1-based place in the day; 0 for an empty day.
	Position  int
	Type      ItemKind
	Name      string // location name or note content
	Address   string
	StartTime string
	EndTime   string
	Lat       *float64
	Lng       *float64
	Notes     string
	Money     float64
	Currency  string

	// Travel fields.
	Transport string
	// TravelTime is the segment's formatted duration, e.g. "1hrs, 15mins".
	TravelTime string
}

// ExportRows flattens the plan into ExportRow values in day and item order.
func (p *Plan) ExportRows() []ExportRow {
	var rows []ExportRow
	for _, d := range p.Days {
		if len(d.Items) == 0 {
			rows = append(rows, ExportRow{DayNumber: d.Number, Date: d.Date})
			continue
		}
		display := map[string]string{}
		for _, sg := range d.Segments() {
			display[sg.Travel.ID] = sg.Display
		}
		for i, it := range d.Items {
			row := ExportRow{DayNumber: d.Number, Date: d.Date, Position: i + 1, Type: it.Kind()}
			switch v := it.(type) {
			case *Location:
				lat, lng := v.Lat, v.Lng
				row.Name = v.Name
				row.Address = v.GoogleAddress
				row.StartTime = v.StartTime
				row.EndTime = v.EndTime
				row.Lat, row.Lng = &lat, &lng
				row.Notes = v.Notes
				row.Money = v.Money
				row.Currency = v.Currency
			case *Note:
				row.Name = v.Content
			case *Travel:
				row.Transport = v.Transport
				row.TravelTime = display[v.ID]
			}
			rows = append(rows, row)
		}
	}
	return rows
}

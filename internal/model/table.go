package model

type Capacity struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Fits reports whether partySize lies within [Min, Max].
func (c Capacity) Fits(partySize int) bool {
	return partySize >= c.Min && partySize <= c.Max
}

type Table struct {
	ID        string   `json:"id"`
	SectorID  string   `json:"sector_id"`
	Name      string   `json:"name"`
	Capacity  Capacity `json:"capacity"`
	SortOrder int      `json:"sort_order"`
}

type Sector struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Color     string `json:"color"`
	SortOrder int    `json:"sort_order"`
}

type ServiceHours struct {
	Start string `json:"start"` // "12:00"
	End   string `json:"end"`   // "16:00"
}

type Restaurant struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Timezone     string         `json:"timezone"`
	ServiceHours []ServiceHours `json:"service_hours"`
}

// FloorPlan is the reference data the scheduling core reads but never mutates.
type FloorPlan struct {
	Restaurant Restaurant `json:"restaurant"`
	Sectors    []Sector   `json:"sectors"`
	Tables     []Table    `json:"tables"`
}

// SectorIDsByName maps sector names to ids for preference lookups.
func (f FloorPlan) SectorIDsByName() map[string]string {
	out := make(map[string]string, len(f.Sectors))
	for _, s := range f.Sectors {
		out[s.Name] = s.ID
	}
	return out
}

func (f FloorPlan) Table(id string) (Table, bool) {
	for _, t := range f.Tables {
		if t.ID == id {
			return t, true
		}
	}
	return Table{}, false
}

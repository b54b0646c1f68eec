package model

// BatchRequest is one pre-validated import row. Date and StartTime are
// wall-clock values in the restaurant's timezone.
type BatchRequest struct {
	CustomerName    string   `json:"customer_name"`
	CustomerPhone   string   `json:"customer_phone"`
	CustomerEmail   string   `json:"customer_email,omitempty"`
	PartySize       int      `json:"party_size"`
	Date            string   `json:"date"`       // YYYY-MM-DD
	StartTime       string   `json:"start_time"` // HH:MM
	DurationMinutes int      `json:"duration_minutes"`
	SpecialRequests string   `json:"special_requests,omitempty"`
	Priority        Priority `json:"priority"`
	PreferredSector string   `json:"preferred_sector,omitempty"`
}

type TableAssignment struct {
	Request       BatchRequest `json:"request"`
	AssignedTable *Table       `json:"assigned_table,omitempty"`
	Reason        string       `json:"reason,omitempty"`
	Alternatives  []Table      `json:"alternatives"`
}

func (a TableAssignment) Assigned() bool {
	return a.AssignedTable != nil
}

type BatchAssignmentResult struct {
	Assignments  []TableAssignment `json:"assignments"`
	SuccessCount int               `json:"success_count"`
	FailureCount int               `json:"failure_count"`
}

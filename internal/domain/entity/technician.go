package entity

// Technician is a dispatchable field worker. Inactive technicians stay in the
// roster for display but are excluded from assignment pickers.
type Technician struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

package domain

// Incident priorities and statuses assigned by default.
const (
	IncidentPriorityMedium = "medium"
	IncidentStatusOpen     = "open"
)

// Incident is a building issue tracked by the administrators.
type Incident struct {
	IncidentID  string  `json:"incidentId"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Priority    *string `json:"priority"`
	Status      *string `json:"status"`
	CreatedAt   int64   `json:"createdAt"`
	CreatedBy   string  `json:"createdBy"`
	AssignedTo  *string `json:"assignedTo"`
	Notes       []Note  `json:"notes"`
	UpdatedAt   *int64  `json:"updatedAt,omitempty"`
}

// Note is an append-only comment on an incident.
type Note struct {
	Timestamp int64  `json:"timestamp"`
	Author    string `json:"author"`
	Note      string `json:"note"`
}

// IncidentInput carries the permitted fields of a new incident.
type IncidentInput struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Priority    *string `json:"priority"`
	Status      *string `json:"status"`
	Author      *string `json:"author"`
	AssignedTo  *string `json:"assignedTo"`
}

// IncidentPatch is a partial update. A Set flag distinguishes an absent key
// from an explicit null, which clears the field.
type IncidentPatch struct {
	Status        *string
	StatusSet     bool
	Priority      *string
	PrioritySet   bool
	AssignedTo    *string
	AssignedToSet bool
	Note          *string
	Author        *string
}

// NewIncident builds an open incident stamped at createdAt.
func NewIncident(in IncidentInput, caller string, createdAt int64) *Incident {
	priority := in.Priority
	if priority == nil {
		priority = StringPtr(IncidentPriorityMedium)
	}
	status := in.Status
	if status == nil {
		status = StringPtr(IncidentStatusOpen)
	}
	return &Incident{
		IncidentID:  NewID(),
		Title:       in.Title,
		Description: in.Description,
		Priority:    priority,
		Status:      status,
		CreatedAt:   createdAt,
		CreatedBy:   Attribution(in.Author, caller, DefaultAdminAuthor),
		AssignedTo:  in.AssignedTo,
		Notes:       []Note{},
	}
}

// Apply overwrites the fields present in p, appends its note and stamps updatedAt.
func (i *Incident) Apply(p IncidentPatch, caller string, now int64) {
	if p.StatusSet {
		i.Status = p.Status
	}
	if p.PrioritySet {
		i.Priority = p.Priority
	}
	if p.AssignedToSet {
		i.AssignedTo = p.AssignedTo
	}
	if p.Note != nil {
		if i.Notes == nil {
			i.Notes = []Note{}
		}
		i.Notes = append(i.Notes, Note{
			Timestamp: now,
			Author:    Attribution(p.Author, caller, DefaultAdminAuthor),
			Note:      *p.Note,
		})
	}
	i.UpdatedAt = &now
}

package domain

// AccessRequestStatusPending is the only status assigned by this service.
const AccessRequestStatusPending = "pending"

// AccessRequest is a prospective member asking for an account on the site.
type AccessRequest struct {
	RequestID       string  `json:"requestId"`
	FirstName       *string `json:"firstName"`
	LastName        *string `json:"lastName"`
	Email           *string `json:"email"`
	Phone           *string `json:"phone"`
	Address         *string `json:"address"`
	ApartmentNumber *string `json:"apartmentNumber"`
	UserType        *string `json:"userType"`
	CompanyName     *string `json:"companyName"`
	Reason          *string `json:"reason"`
	Message         *string `json:"message"`
	Status          string  `json:"status"`
	CreatedAt       int64   `json:"createdAt"`
}

// AccessRequestInput carries the permitted fields of a create request.
type AccessRequestInput struct {
	FirstName       *string `json:"firstName"`
	LastName        *string `json:"lastName"`
	Email           *string `json:"email"`
	Phone           *string `json:"phone"`
	Address         *string `json:"address"`
	ApartmentNumber *string `json:"apartmentNumber"`
	UserType        *string `json:"userType"`
	CompanyName     *string `json:"companyName"`
	Reason          *string `json:"reason"`
	Message         *string `json:"message"`
}

// NewAccessRequest builds a pending request stamped at createdAt.
func NewAccessRequest(in AccessRequestInput, createdAt int64) *AccessRequest {
	return &AccessRequest{
		RequestID:       NewID(),
		FirstName:       in.FirstName,
		LastName:        in.LastName,
		Email:           in.Email,
		Phone:           in.Phone,
		Address:         in.Address,
		ApartmentNumber: in.ApartmentNumber,
		UserType:        in.UserType,
		CompanyName:     in.CompanyName,
		Reason:          in.Reason,
		Message:         in.Message,
		Status:          AccessRequestStatusPending,
		CreatedAt:       createdAt,
	}
}

package models

// RegisterRequest is the body of a public registration call. Only victims
// register themselves; the role may be omitted.
type RegisterRequest struct {
	FullName  string `json:"fullName" validate:"required_unless=Anonymous true,max=120"`
	IDNumber  string `json:"saId" validate:"required,said"`
	Phone     string `json:"phone" validate:"required,min=10,max=15"`
	Email     string `json:"email" validate:"omitempty,email"`
	Password  string `json:"password" validate:"required,min=8"`
	Anonymous bool   `json:"anonymous"`
	Role      Role   `json:"role" validate:"omitempty,oneof=victim"`
}

// StaffRequest is the body of an administrator creating a police or admin account
type StaffRequest struct {
	FullName string `json:"fullName" validate:"required,max=120"`
	IDNumber string `json:"saId" validate:"required,said"`
	Phone    string `json:"phone" validate:"required,min=10,max=15"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     Role   `json:"role" validate:"required,oneof=police admin"`
}

// CreateCaseRequest is the body of a new case report
type CreateCaseRequest struct {
	Type         string `json:"type" validate:"required,max=80"`
	Description  string `json:"description" validate:"max=4000"`
	Province     string `json:"province" validate:"required"`
	City         string `json:"city" validate:"required"`
	Location     string `json:"location"`
	Anonymous    bool   `json:"anonymous"`
	IncidentDate string `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

// TransitionRequest is the body of a status update
type TransitionRequest struct {
	Status Status `json:"status" validate:"required"`
	Note   string `json:"note" validate:"required"`
}

// AssignRequest assigns an investigating officer
type AssignRequest struct {
	OfficerID string `json:"officerId" validate:"required"`
}

// StalledRequest flags or clears a case as stalled
type StalledRequest struct {
	Stalled bool `json:"stalled"`
}

package dto

// ContactRequest is the contact form payload. Name, email and message are required.
type ContactRequest struct {
	Name      string `json:"name" validate:"required,max=120"`
	Email     string `json:"email" validate:"required,email,max=160"`
	Subject   string `json:"subject" validate:"omitempty,max=160"`
	Message   string `json:"message" validate:"required,max=2000"`
	Source    string `json:"source" validate:"omitempty,max=60"`
	Honeypot  string `json:"_note"`
	IPAddress string `json:"-"`
}

// ContactResponse acknowledges a stored submission.
type ContactResponse struct {
	ReferenceID string `json:"reference_id"`
	Status      string `json:"status"`
	Message     string `json:"message"`
}

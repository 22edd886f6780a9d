package shared

// DomainError is a coded error crossing the service boundary. The HTTP
// layer maps Code to a status; Message is safe to show to callers.
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError builds a DomainError with the given code and message
func NewDomainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

// ErrNotFound is returned by repositories when no row matches. Services
// pass it through unchanged so handlers can answer 404.
var ErrNotFound = NewDomainError("NOT_FOUND", "Resource not found")

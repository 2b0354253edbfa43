package http

// APIResponse is the envelope every endpoint answers with.
type APIResponse struct {
	Status  int         `json:"status" example:"200"`
	Message string      `json:"message" example:"OK"`
	TraceID string      `json:"trace_id,omitempty" example:"4bf92f3577b34da6a3ce929d0e0e4736"`
	Data    interface{} `json:"data,omitempty"`
}

// APIResponse400Err documents a request that failed validation.
type APIResponse400Err struct {
	Status  int               `json:"status" example:"400"`
	Message string            `json:"message" example:"Bad Request"`
	Data    []ValidationError `json:"data,omitempty"`
}

// APIResponseAppErr documents the 404, 409, 422, 429 and 502 answers.
type APIResponseAppErr struct {
	Status  int         `json:"status" example:"422"`
	Message string      `json:"message" example:"Unprocessable Entity"`
	Data    []*AppError `json:"data,omitempty"`
}

// ValidationError is one failed rule of a request field.
type ValidationError struct {
	Code    string                 `json:"code,omitempty" example:"ERR_LTE"`
	Field   string                 `json:"field,omitempty" example:"allocation_percentage"`
	Message string                 `json:"message,omitempty" example:"allocation_percentage must be less than or equal to 100"`
	Params  map[string]interface{} `json:"params,omitempty"`
}

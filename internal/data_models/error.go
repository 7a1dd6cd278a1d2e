package dto

type ErrorResponse struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

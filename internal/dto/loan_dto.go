package dto

type AnalyzeLoanRequest struct {
	ApplicationText string `json:"application_text" validate:"notblank"`
}

type AnalyzeLoanResponse struct {
	Success bool   `json:"success"`
	Result  string `json:"result"`
}

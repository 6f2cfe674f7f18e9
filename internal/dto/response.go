package dto

type LoginResponse struct {
	Token string `json:"token"`
}

type EligibilityResponse struct {
	AgeValid     bool    `json:"age_valid"`
	AgeValue     float64 `json:"age_value"`
	ServiceValid bool    `json:"service_valid"`
	ServiceValue float64 `json:"service_value"`
	NetPayValid  bool    `json:"net_pay_valid"`
	NetPayValue  float64 `json:"net_pay_value"`
	DTIValid     bool    `json:"dti_valid"`
	DTI          float64 `json:"dti"`
}

type QuoteResponse struct {
	UpfrontFee     float64 `json:"upfront_fee"`
	Repayment      float64 `json:"repayment"`
	TotalRepayment float64 `json:"total_repayment"`
	NetValue       float64 `json:"net_value"`
}

type SweepResponse struct {
	Completed int `json:"completed"`
}

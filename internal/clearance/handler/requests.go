package handler

// Request bodies for the action endpoints. Actor identifies who asked;
// defaults are applied per endpoint when absent.

type validateRequest struct {
	DocumentPayload string `json:"documentPayload"`
	Actor           string `json:"actor"`
	IdempotencyKey  string `json:"idempotencyKey"`
}

type payRequest struct {
	CaseID         string `json:"caseId"`
	PaymentMethod  string `json:"paymentMethod"`
	IdempotencyKey string `json:"idempotencyKey"`
	ApprovalToken  string `json:"approvalToken,omitempty"`
	Actor          string `json:"actor"`
}

type scheduleRequest struct {
	CaseID          string `json:"caseId"`
	PreferredWindow string `json:"preferredWindow,omitempty"`
	IdempotencyKey  string `json:"idempotencyKey"`
	Actor           string `json:"actor"`
}

type releaseRequest struct {
	CaseID         string `json:"caseId"`
	IdempotencyKey string `json:"idempotencyKey"`
	ApprovalToken  string `json:"approvalToken,omitempty"`
	Actor          string `json:"actor"`
}

type completeInspectionRequest struct {
	CaseID         string `json:"caseId"`
	Passed         bool   `json:"passed"`
	IdempotencyKey string `json:"idempotencyKey"`
	Actor          string `json:"actor"`
}

type gatePassRequest struct {
	CaseID         string `json:"caseId"`
	IdempotencyKey string `json:"idempotencyKey"`
	Actor          string `json:"actor"`
}

type resolveRequest struct {
	Token    string `json:"token"`
	Approved bool   `json:"approved"`
	Actor    string `json:"actor"`
}

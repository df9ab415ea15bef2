package dto

// OperationResponse is the reply to a completed privileged call. Result is
// only present for operations that return data (queue, status, readConfig).
type OperationResponse struct {
	Operation string `json:"operation"`
	Result    string `json:"result,omitempty"`
}

// OperationsResponse lists the operation surface for discovery.
type OperationsResponse struct {
	Service    string   `json:"service"`
	Operations []string `json:"operations"`
}

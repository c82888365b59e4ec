package models

// CategoryAccountsResponse lists the accounts tagged with a category.
type CategoryAccountsResponse struct {
	Category string   `json:"category"`
	Accounts []string `json:"accounts"`
	Offset   int      `json:"offset"`
	Limit    int      `json:"limit"`
}

// AccountsResponse is a plain page of account ids.
type AccountsResponse struct {
	Threshold int64    `json:"threshold,omitempty"`
	Accounts  []string `json:"accounts"`
	Offset    int      `json:"offset"`
	Limit     int      `json:"limit"`
}

// MessageResponse carries an informational message instead of data.
type MessageResponse struct {
	Message string `json:"message"`
}

// UploadResponse reports the outcome of an uploaded batch.
type UploadResponse struct {
	File    string       `json:"file"`
	Message string       `json:"message"`
	Result  IngestResult `json:"result"`
}

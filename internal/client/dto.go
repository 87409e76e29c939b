package client

type StatusResponse struct {
	Running bool `json:"running"`
}

type AckResponse struct {
	Message string `json:"message,omitempty"`
	Status  string `json:"status,omitempty"`
}

const (
	EmailModeDraft    = "draft"
	EmailModeSend     = "send"
	EmailModeFollowUp = "follow-up"
)

// SendBulkEmailsRequest carries exactly one targeting shape: either
// SelectedEmails or the RankMin/RankMax pair.
type SendBulkEmailsRequest struct {
	Mode           string   `json:"mode"`
	SelectedEmails []string `json:"selected_emails,omitempty"`
	RankMin        *int     `json:"rank_min,omitempty"`
	RankMax        *int     `json:"rank_max,omitempty"`
}

type EmailContent struct {
	Found   bool   `json:"found"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

type Download struct {
	Filename string
	Data     []byte
}

type errorPayload struct {
	Error string `json:"error"`
}

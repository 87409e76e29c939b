package types

type ProgressState struct {
	Processed int `json:"processed"`
	Total     int `json:"total"`
}

// Normalized clamps negative counters to zero and processed to total.
func (p ProgressState) Normalized() ProgressState {
	if p.Total < 0 {
		p.Total = 0
	}
	if p.Processed < 0 {
		p.Processed = 0
	}
	if p.Total > 0 && p.Processed > p.Total {
		p.Processed = p.Total
	}
	return p
}

func (p ProgressState) Complete() bool {
	return p.Total > 0 && p.Processed == p.Total
}

// Percent is the completion in [0,100]; 0 when nothing is known yet.
func (p ProgressState) Percent() float64 {
	if p.Total <= 0 {
		return 0
	}
	pct := float64(p.Processed) / float64(p.Total) * 100
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

type TokenUpdate struct {
	TotalInputTokens  int     `json:"total_input_tokens,omitempty"`
	TotalOutputTokens int     `json:"total_output_tokens,omitempty"`
	TotalCost         float64 `json:"total_cost"`
}

type EmailSendProgress struct {
	Sent   int    `json:"sent"`
	Total  int    `json:"total"`
	Action string `json:"action,omitempty"`
}

func (p EmailSendProgress) Percent() float64 {
	return ProgressState{Processed: p.Sent, Total: p.Total}.Normalized().Percent()
}

const emailSystemCompany = "System"

type EmailStatus struct {
	CompanyName string `json:"company_name"`
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	Email       string `json:"email,omitempty"`
	SummaryFile string `json:"summary_file,omitempty"`
}

// EndOfSend reports whether the status is the final summary of a bulk send.
func (s EmailStatus) EndOfSend() bool {
	return s.CompanyName == emailSystemCompany && s.SummaryFile != ""
}

type EmailProgressEvent struct {
	Progress *EmailSendProgress `json:"progress,omitempty"`
	Status   *EmailStatus       `json:"status,omitempty"`
}

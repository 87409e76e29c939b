package types

// AppState is the dashboard state kept between runs of the UI.
type AppState struct {
	SortMode       string `json:"sort_mode,omitempty"`
	EmailMode      string `json:"email_mode,omitempty"`
	LastUploadPath string `json:"last_upload_path,omitempty"`
}

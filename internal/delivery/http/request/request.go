package request

// SubmitURLsRequest is the ingestion body sent by the browser extension.
type SubmitURLsRequest struct {
	DailyURLs []string `json:"daily_urls"`
}

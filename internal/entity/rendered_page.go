package entity

import "time"

// RenderedPage is what the headless browser hands back for one URL.
// The Live* fields come from JavaScript evaluated in the page after load and see
// scripts injected at runtime, which the serialized HTML may not.
type RenderedPage struct {
	URL            string
	FinalURL       string
	HTML           string
	HTTPStatusCode int
	RenderTime     time.Duration

	LiveScripts       int
	LiveScriptSources []string
	LiveHiddenForms   int
}

package models

// Server is the public view of a configured OPC-UA server.
type Server struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

package video

// Reference identifies a single video on the source platform.
// It is immutable once resolved from a URL.
type Reference struct {
	ID  string
	URL string
}

// Metadata is a read-only snapshot of a video's public details,
// fetched once per request and never cached.
type Metadata struct {
	ID        string `json:"videoId"`
	Title     string `json:"title"`
	Duration  int    `json:"duration"` // whole seconds
	Author    string `json:"author"`
	Thumbnail string `json:"thumbnail,omitempty"`
}

package domain

// Group is a named category posts may belong to. Slug is unique and never
// changes once the group exists.
type Group struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
}

func (g Group) String() string {
	return g.Title
}

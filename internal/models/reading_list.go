package models

// DefaultReadingList is the name of the list every user starts with and the
// target of save/bookmark.
const DefaultReadingList = "Reading list"

// ReadingList is a named, ordered collection of post references.
type ReadingList struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	PostIDs []string `json:"posts"`
}

// LibraryList is a ReadingList with its posts resolved.
type LibraryList struct {
	ID    string        `json:"id"`
	Name  string        `json:"name"`
	Posts []PostSummary `json:"posts"`
}

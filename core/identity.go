package core

// Identity is the author recorded on catalog commits.
type Identity struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// DefaultIdentity is used when a caller does not name an author.
var DefaultIdentity = Identity{Name: "sqlfp", Email: "sqlfp@localhost"}

// Package core provides the plain data types shared across sqlfp.
//
// # Result
//
// Result is the fingerprint produced for one statement:
//
//	result := core.Result{
//	    Original:   "SELECT * FROM users WHERE id = 123",
//	    Normalized: "SELECT * FROM users WHERE id = ?",
//	    Hash:       "<64 hex characters>",
//	    Params:     []string{"123"},
//	}
//	fmt.Println(result) // NormalizeResult(hash='...', normalized='...')
//
// # Identity
//
// Identity identifies the author of catalog commits (Git commit author):
//
//	identity := core.Identity{
//	    Name:  "John Doe",
//	    Email: "john@example.com",
//	}
package core

// Package catalog keeps a registry of seen fingerprints in a git repository.
//
// Every entry is a JSON file at fingerprints/<first two hash digits>/<hash>.json.
// Writes build blobs, trees and commits directly through go-git plumbing, so a
// catalog needs no git binary and the full history of when each fingerprint
// appeared is an ordinary git log.
//
// # Usage
//
//	c, err := catalog.NewFile("/var/lib/sqlfp", nil)
//	result, _ := sqlfp.Normalize("SELECT * FROM users WHERE id = 1")
//	entry, err := c.Record(result, "generic", core.DefaultIdentity)
//	fmt.Println(entry.Count, entry.Sample)
//
// Use NewMemory for a throwaway catalog. A catalog can be shared like any
// other repository with AddRemote, Push and Pull.
package catalog

// Package metadata provides the key/value repository backing the credential
// store. SQLiteRepository persists to the local client database (profile
// lifetime); MemoryRepository lives as long as the process (session
// lifetime).
package metadata

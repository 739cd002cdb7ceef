// Package memory provides an in-process implementation of store.SessionStore
// backed by a TTL cache. Sessions expire after a period without updates and
// are lost on restart.
package memory

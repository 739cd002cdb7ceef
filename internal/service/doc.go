// Package service implements the upload, generate, edit and export workflow
// on top of a session store. A session is the request-scoped state of one
// user: the selected document, the generated deck, the loading flag and the
// last user-facing error.
package service

// Package site serves the browser client for the session API.
package site

import (
	"context"
	"net/http"
)

// Register attaches the embedded client to mux at /.
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.Handle("GET /", http.FileServer(FS()))
}

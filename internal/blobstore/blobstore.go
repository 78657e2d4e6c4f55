// Package blobstore is the binary upload port: bytes in, publicly
// resolvable URL out. Only the admin product-image path uses it.
package blobstore

import "context"

type Store interface {
	// Upload writes data under folder and returns a URL a browser can
	// fetch without further authentication.
	Upload(ctx context.Context, data []byte, folder, filename string) (string, error)
}

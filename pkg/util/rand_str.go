// Package util contains any functions used across the application that don't match
// any other package
package util

import gonanoid "github.com/matoous/go-nanoid/v2"

const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// RandStr returns n characters picked uniformly from [A-Za-z0-9]. The bytes come
// from crypto/rand so the output is safe to use in public file names
func RandStr(n int) (string, error) {
	return gonanoid.Generate(charset, n)
}

// MustRandStr is RandStr for places that can't handle an error, like request IDs
func MustRandStr(n int) string {
	return gonanoid.MustGenerate(charset, n)
}

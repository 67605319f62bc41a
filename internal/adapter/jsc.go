package adapter

import "github.com/gowebpki/jcs"

// JCS canonicalizes ESDT attribute documents (RFC 8785) before they are
// hashed, so that key order and whitespace do not change the hash
//
//go:generate mockgen -source=jsc.go -destination=../mocks/jsc.go -package=mocks -mock_names=JCS=MockJCS
type JCS interface {
	Transform(data []byte) ([]byte, error)
}

type rfc8785 struct{}

// NewJCS returns the gowebpki canonicalizer
func NewJCS() JCS {
	return rfc8785{}
}

func (rfc8785) Transform(data []byte) ([]byte, error) {
	return jcs.Transform(data)
}

package adapter

import "encoding/base64"

// Base64 encodes the data field of gateway transactions and decodes the
// base64 fields (URIs, event topics) the Elrond gateway returns
type Base64 interface {
	Encode(data []byte) string
	Decode(data string) ([]byte, error)
}

type gatewayBase64 struct {
	enc *base64.Encoding
}

// NewBase64 returns the padded standard encoding used by the gateway
func NewBase64() Base64 {
	return gatewayBase64{enc: base64.StdEncoding}
}

func (b gatewayBase64) Encode(data []byte) string {
	return b.enc.EncodeToString(data)
}

func (b gatewayBase64) Decode(data string) ([]byte, error) {
	return b.enc.DecodeString(data)
}

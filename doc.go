// Package bodyenc implements the wire formats used for HTTP message bodies.
//
// This package handles chunked transfer encoding,
// application/x-www-form-urlencoded and multipart/form-data, together with the
// header grammar those formats depend on: Content-Disposition parsing and
// multipart boundary extraction. Outbound bodies are produced as lazy,
// pull-based chunk sequences so large payloads never need to be materialised
// in memory; inbound bodies are decoded from raw byte buffers into structured
// values. A reflection-based binding layer encodes and decodes Go structs and
// maps through the same codec.
package bodyenc

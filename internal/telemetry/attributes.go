// SPDX-License-Identifier: MIT

package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Common attribute keys for consistent tracing across the application.
// HTTP-level attributes come from the otelhttp middleware; these cover the
// image fetch pipeline below it.
const (
	// Image fetch attributes
	FetchHostKey        = "fetch.host"
	FetchContentTypeKey = "fetch.content_type"
	FetchBytesKey       = "fetch.bytes"
	FetchCacheKey       = "fetch.cache"

	// Error attributes
	ErrorKey     = "error"
	ErrorTypeKey = "error.type"
)

// FetchAttributes creates image-fetch span attributes.
func FetchAttributes(host, contentType, cacheStatus string, bytes int) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, 4)
	if host != "" {
		attrs = append(attrs, attribute.String(FetchHostKey, host))
	}
	if contentType != "" {
		attrs = append(attrs, attribute.String(FetchContentTypeKey, contentType))
	}
	if cacheStatus != "" {
		attrs = append(attrs, attribute.String(FetchCacheKey, cacheStatus))
	}
	attrs = append(attrs, attribute.Int(FetchBytesKey, bytes))
	return attrs
}

// ErrorAttributes creates error-related span attributes.
func ErrorAttributes(_ error, errorType string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Bool(ErrorKey, true),
		attribute.String(ErrorTypeKey, errorType),
	}
}

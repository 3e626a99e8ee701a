// Package openapi embeds the OpenAPI description of the Driftboat API.
// The server serves it at /openapi.yaml.
package openapi

import _ "embed"

// Spec contains the raw bytes of openapi.yaml, embedded at compile time.
//
//go:embed openapi.yaml
var Spec []byte

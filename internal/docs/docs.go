// Package docs embeds the Swagger 2.0 description of the HTTP API.
package docs

import _ "embed"

//go:embed swagger.json
var Swagger []byte

// Package docs содержит описание API в формате Swagger 2.0.
package docs

import _ "embed"

//go:embed doc.json
var SwaggerJSON []byte

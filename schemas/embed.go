// Package schemas holds the JSON Schema documents shipped with the binary.
package schemas

import _ "embed"

// ConfigSchemaName is the file name of the configuration schema.
const ConfigSchemaName = "config.schema.json"

// ConfigSchema is the JSON Schema for readme_agent configuration files.
//
//go:embed config.schema.json
var ConfigSchema []byte

package server

import (
	"strings"

	"github.com/tidwall/gjson"
	"github.com/xeipuuv/gojsonschema"

	"github.com/abdul-hamid-achik/reqline/packages/core/apperr"
)

// InputSchema describes the inbound body. Extra fields are caller metadata
// and are ignored.
const InputSchema = `{
	"type": "object",
	"required": ["reqline"],
	"properties": {
		"reqline": {"type": "string"}
	}
}`

var inputSchema = gojsonschema.NewStringLoader(InputSchema)

// DecodeInput validates data against InputSchema and returns its reqline.
func DecodeInput(data []byte) (string, error) {
	if !gjson.ValidBytes(data) {
		return "", apperr.Validation("request body must be valid JSON")
	}

	result, err := gojsonschema.Validate(inputSchema, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return "", apperr.Validation("schema validation error: %v", err)
	}

	if !result.Valid() {
		var errs []string
		for _, desc := range result.Errors() {
			errs = append(errs, desc.String())
		}
		return "", apperr.Validation("%s", strings.Join(errs, "; "))
	}

	return gjson.GetBytes(data, "reqline").String(), nil
}

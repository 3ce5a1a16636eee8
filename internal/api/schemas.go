package api

import (
	"encoding/json"
	"io"
	"strings"

	engerr "match-engine/internal/common/errors"

	"github.com/xeipuuv/gojsonschema"
)

var actionRequestSchema = map[string]interface{}{
	"type":                 "object",
	"additionalProperties": false,
	"required":             []string{"userId", "action"},
	"properties": map[string]interface{}{
		"userId": map[string]interface{}{"type": "string", "minLength": 1},
		"action": map[string]interface{}{
			"type": "string",
			"enum": []string{"LIKE", "SKIP", "SAVE"},
		},
	},
}

var previewRequestSchema = map[string]interface{}{
	"type":                 "object",
	"additionalProperties": false,
	"required":             []string{"openingId", "builderId"},
	"properties": map[string]interface{}{
		"openingId": map[string]interface{}{"type": "string", "minLength": 1},
		"builderId": map[string]interface{}{"type": "string", "minLength": 1},
	},
}

// decodeAndValidate reads the request body, checks it against the schema and
// unmarshals it into out.
func decodeAndValidate(body io.Reader, schema map[string]interface{}, out interface{}) error {
	raw, err := io.ReadAll(body)
	if err != nil {
		return engerr.NewInvalidInputError("unreadable request body")
	}

	var doc map[string]interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return engerr.NewInvalidInputError("request body must be a JSON object")
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(schema),
		gojsonschema.NewGoLoader(doc),
	)
	if err != nil {
		return engerr.NewInvalidInputError(err.Error())
	}
	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, e := range result.Errors() {
			errs[i] = e.String()
		}
		return engerr.NewInvalidInputError(strings.Join(errs, "; "))
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return engerr.NewInvalidInputError(err.Error())
	}
	return nil
}

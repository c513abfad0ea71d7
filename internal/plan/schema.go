package plan

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

//go:embed manifest.schema.json
var schemaJSON []byte

var compiledSchema *jsonschema.Schema

func init() {
	var doc interface{}
	if err := json.Unmarshal(schemaJSON, &doc); err != nil {
		panic(fmt.Sprintf("failed to decode manifest schema: %v", err))
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource("manifest.schema.json", doc); err != nil {
		panic(fmt.Sprintf("failed to add manifest schema: %v", err))
	}
	var err error
	compiledSchema, err = c.Compile("manifest.schema.json")
	if err != nil {
		panic(fmt.Sprintf("failed to compile manifest schema: %v", err))
	}
}

func validateSchema(data []byte) error {
	var raw interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to parse manifest: %w", err)
	}
	if err := compiledSchema.Validate(toJSON(raw)); err != nil {
		return fmt.Errorf("invalid manifest: %w", err)
	}
	return nil
}

// toJSON converts the values yaml.v3 produces to the ones encoding/json
// would, which is what the validator expects.
func toJSON(v interface{}) interface{} {
	switch v := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for k, val := range v {
			out[k] = toJSON(val)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, val := range v {
			out[i] = toJSON(val)
		}
		return out
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case uint64:
		return float64(v)
	}
	return v
}

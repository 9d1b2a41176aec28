package contract

import (
	"embed"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/xeipuuv/gojsonschema"

	"github.com/ZhangYouJie-Major/AskIt/internal/domain/entities"
)

//go:embed schemas/*.json
var schemaFS embed.FS

var (
	queryResponseSchema = mustSchema("query_response.json")
	documentSchema      = mustSchema("document.json")
	documentListSchema  = mustSchema("document_list.json")
	healthSchema        = mustSchema("health.json")
	statsSchema         = mustSchema("stats.json")
)

var errInvalidJSON = errors.New("response is not valid JSON")

func mustSchema(name string) *gojsonschema.Schema {
	data, err := schemaFS.ReadFile("schemas/" + name)
	if err != nil {
		panic(errors.Wrapf(err, "reading schema %s", name))
	}
	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(data))
	if err != nil {
		panic(errors.Wrapf(err, "compiling schema %s", name))
	}
	return schema
}

// decode validates body against schema and unmarshals it into T.
// Any mismatch is reported as *entities.DecodeError.
func decode[T any](operation string, schema *gojsonschema.Schema, body []byte) (*T, error) {
	if !json.Valid(body) {
		return nil, &entities.DecodeError{Operation: operation, Err: errInvalidJSON}
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return nil, &entities.DecodeError{Operation: operation, Err: err}
	}
	if !result.Valid() {
		problems := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			problems = append(problems, e.String())
		}
		return nil, &entities.DecodeError{Operation: operation, Problems: problems}
	}

	var out T
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, &entities.DecodeError{Operation: operation, Err: err}
	}
	return &out, nil
}

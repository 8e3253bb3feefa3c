package extract

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// dictionariesSchema constrains a user-supplied rules file: only the known
// keyword sets, each a non-empty list of non-empty uppercase-safe tokens.
const dictionariesSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "document_types":     {"$ref": "#/$defs/tokens"},
    "document_titles":    {"$ref": "#/$defs/tokens"},
    "environmental_docs": {"$ref": "#/$defs/tokens"},
    "personal_docs":      {"$ref": "#/$defs/tokens"},
    "fund_keywords":      {"$ref": "#/$defs/tokens"},
    "market_keywords":    {"$ref": "#/$defs/tokens"}
  },
  "$defs": {
    "tokens": {
      "type": "array",
      "minItems": 1,
      "items": {"type": "string", "minLength": 1, "pattern": "^\\S+$"}
    }
  }
}`

// LoadDictionaries reads and validates a keyword-dictionary override file.
// Sets absent from the file keep their built-in defaults. A file that does
// not match the schema is a configuration error: the caller must abort the
// batch before any document is processed.
func LoadDictionaries(path string) (Dictionaries, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Dictionaries{}, fmt.Errorf("read rules file: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("rules_schema.json", strings.NewReader(dictionariesSchema)); err != nil {
		return Dictionaries{}, fmt.Errorf("add rules schema: %w", err)
	}
	schema, err := compiler.Compile("rules_schema.json")
	if err != nil {
		return Dictionaries{}, fmt.Errorf("compile rules schema: %w", err)
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return Dictionaries{}, fmt.Errorf("parse rules file %s: %w", path, err)
	}
	if err := schema.Validate(doc); err != nil {
		return Dictionaries{}, fmt.Errorf("rules file %s does not match schema: %w", path, err)
	}

	var dicts Dictionaries
	if err := json.Unmarshal(data, &dicts); err != nil {
		return Dictionaries{}, fmt.Errorf("decode rules file %s: %w", path, err)
	}

	// Tokens are matched against folded text, so fold them here once.
	normalizeTokens := func(tokens []string) {
		for i := range tokens {
			tokens[i] = strings.ToUpper(strings.TrimSpace(tokens[i]))
		}
	}
	normalizeTokens(dicts.DocumentTypes)
	normalizeTokens(dicts.DocumentTitles)
	normalizeTokens(dicts.EnvironmentalDocs)
	normalizeTokens(dicts.PersonalDocs)
	normalizeTokens(dicts.FundKeywords)
	normalizeTokens(dicts.MarketKeywords)

	return dicts, nil
}

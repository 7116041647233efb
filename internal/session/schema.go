// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quill Contributors

package session

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/invopop/jsonschema"
	jschema "github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/quillpress/quill/internal/auth"
)

// ProfileSchemaID identifies the JSON schema of the persisted "user" document.
const ProfileSchemaID = "https://quill.dev/schemas/session-user.json"

var (
	profileSchemaOnce sync.Once
	profileSchema     *jschema.Schema
	errProfileSchema  error
)

// GenerateProfileSchema returns the JSON schema of the persisted "user" document,
// reflected from auth.UserProfile.
func GenerateProfileSchema() ([]byte, error) {
	r := jsonschema.Reflector{
		DoNotReference: true,
	}
	schema := r.Reflect(&auth.UserProfile{})
	schema.ID = jsonschema.ID(ProfileSchemaID)
	schema.Title = "Quill session user"
	schema.Description = "Profile hydrated from the identity service and persisted under the \"user\" key"

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	return data, nil
}

func compiledProfileSchema() (*jschema.Schema, error) {
	profileSchemaOnce.Do(func() {
		schemaBytes, err := GenerateProfileSchema()
		if err != nil {
			errProfileSchema = err
			return
		}
		doc, err := jschema.UnmarshalJSON(strings.NewReader(string(schemaBytes)))
		if err != nil {
			errProfileSchema = fmt.Errorf("failed to parse schema JSON: %w", err)
			return
		}
		c := jschema.NewCompiler()
		if err := c.AddResource(ProfileSchemaID, doc); err != nil {
			errProfileSchema = fmt.Errorf("failed to add schema resource: %w", err)
			return
		}
		profileSchema, errProfileSchema = c.Compile(ProfileSchemaID)
	})
	return profileSchema, errProfileSchema
}

// decodeProfile validates raw against the profile schema and decodes it.
// The legacy literal "null" fails validation like any other non-object.
func decodeProfile(raw string) (auth.UserProfile, error) {
	sch, err := compiledProfileSchema()
	if err != nil {
		return auth.UserProfile{}, fmt.Errorf("failed to compile schema: %w", err)
	}

	doc, err := jschema.UnmarshalJSON(strings.NewReader(raw))
	if err != nil {
		return auth.UserProfile{}, fmt.Errorf("invalid JSON: %w", err)
	}
	if err := sch.Validate(doc); err != nil {
		return auth.UserProfile{}, fmt.Errorf("schema validation failed: %w", err)
	}

	var profile auth.UserProfile
	if err := json.Unmarshal([]byte(raw), &profile); err != nil {
		return auth.UserProfile{}, fmt.Errorf("decode profile: %w", err)
	}
	return profile, nil
}

/*
Copyright 2025 The ClimateTools Authors
SPDX-License-Identifier: Apache-2.0
*/

package schema_test

import (
	"testing"

	"climategpt.dev/climatetools/schema"
)

func TestReflect(t *testing.T) {
	type nested struct {
		Value string `json:"value" jsonschema:"description=Nested value"`
	}
	type sample struct {
		Name   string  `json:"name" jsonschema:"description=Name,required"`
		Count  int     `json:"count,omitempty"`
		Nested *nested `json:"nested,omitempty"`
	}

	s := schema.Reflect(&sample{})
	if s == nil {
		t.Fatal("expected schema")
	}

	if len(s.Required) != 1 || s.Required[0] != "name" {
		t.Fatalf("unexpected required: %#v", s.Required)
	}

	props := s.Properties
	if props == nil {
		t.Fatal("expected properties")
	}

	name, ok := props.Get("name")
	if !ok {
		t.Fatal("missing name property")
	}
	if name.Description != "Name" {
		t.Fatalf("unexpected description: %q", name.Description)
	}

	nestedSchema, ok := props.Get("nested")
	if !ok {
		t.Fatal("missing nested property")
	}
	nestedProps := nestedSchema.Properties
	if nestedProps == nil {
		t.Fatal("expected nested properties")
	}
	valueSchema, ok := nestedProps.Get("value")
	if !ok {
		t.Fatal("missing nested value property")
	}
	if valueSchema.Description != "Nested value" {
		t.Fatalf("unexpected nested description: %q", valueSchema.Description)
	}
}

func TestReflectAnswerType(t *testing.T) {
	type answer struct {
		Summary    string   `json:"summary" jsonschema:"description=One-paragraph answer"`
		Confidence float64  `json:"confidence" jsonschema:"description=Confidence between 0 and 1"`
		Regions    []string `json:"regions" jsonschema:"description=Regions the answer covers"`
	}

	s := schema.ReflectType[answer]()
	if s.Type != "object" {
		t.Errorf("expected object type, got %s", s.Type)
	}

	regions, ok := s.Properties.Get("regions")
	if !ok || regions.Type != "array" {
		t.Error("regions should be an array property")
	}
	conf, ok := s.Properties.Get("confidence")
	if !ok || conf.Type != "number" {
		t.Error("confidence should be a number property")
	}
}

package server

import (
	"testing"
)

func TestGetToolDefinitions(t *testing.T) {
	tools := GetToolDefinitions()

	if len(tools) == 0 {
		t.Fatal("GetToolDefinitions returned empty slice")
	}

	expectedTools := []string{
		"image_load",
		"image_dimensions",
		"frame_locate",
		"chroma_estimate",
		"greenscreen_remove",
		"impostor_build",
	}

	toolMap := make(map[string]Tool)
	for _, tool := range tools {
		if _, dup := toolMap[tool.Name]; dup {
			t.Errorf("Tool %s defined twice", tool.Name)
		}
		toolMap[tool.Name] = tool
	}

	for _, name := range expectedTools {
		if _, ok := toolMap[name]; !ok {
			t.Errorf("Expected tool %s not found", name)
		}
	}
	if len(tools) != len(expectedTools) {
		t.Errorf("Tool count: got %d, want %d", len(tools), len(expectedTools))
	}
}

func TestToolDefinitions_Structure(t *testing.T) {
	tools := GetToolDefinitions()

	for _, tool := range tools {
		t.Run(tool.Name, func(t *testing.T) {
			if tool.Description == "" {
				t.Error("Tool description is empty")
			}

			if tool.InputSchema == nil {
				t.Fatal("Tool InputSchema is nil")
			}

			if schemaType := tool.InputSchema["type"]; schemaType != "object" {
				t.Errorf("InputSchema type: got %v, want 'object'", schemaType)
			}

			props, ok := tool.InputSchema["properties"].(map[string]interface{})
			if !ok {
				t.Fatal("InputSchema properties is not a map")
			}

			// Every required field must be declared as a property
			required, ok := tool.InputSchema["required"].([]string)
			if !ok {
				t.Fatal("InputSchema missing 'required' list")
			}
			for _, r := range required {
				if _, ok := props[r]; !ok {
					t.Errorf("required field %q has no property", r)
				}
			}
		})
	}
}

func TestToolDefinitions_RequiredFields(t *testing.T) {
	tests := map[string][]string{
		"image_load":         {"path"},
		"image_dimensions":   {"path"},
		"frame_locate":       {"path"},
		"chroma_estimate":    {"path"},
		"greenscreen_remove": {"path", "output_path"},
		"impostor_build":     {"paths", "output_path"},
	}

	toolMap := make(map[string]Tool)
	for _, tool := range GetToolDefinitions() {
		toolMap[tool.Name] = tool
	}

	for name, want := range tests {
		t.Run(name, func(t *testing.T) {
			tool, ok := toolMap[name]
			if !ok {
				t.Fatalf("Tool %s not found", name)
			}
			required, _ := tool.InputSchema["required"].([]string)
			if len(required) != len(want) {
				t.Fatalf("required: got %v, want %v", required, want)
			}
			for i := range want {
				if required[i] != want[i] {
					t.Errorf("required[%d]: got %s, want %s", i, required[i], want[i])
				}
			}
		})
	}
}

func TestToolDefinitions_FormEnum(t *testing.T) {
	for _, tool := range GetToolDefinitions() {
		if tool.Name != "impostor_build" {
			continue
		}
		props := tool.InputSchema["properties"].(map[string]interface{})
		form, ok := props["form"].(map[string]interface{})
		if !ok {
			t.Fatal("impostor_build has no form property")
		}
		enum, ok := form["enum"].([]string)
		if !ok || len(enum) != 2 || enum[0] != "STAR" || enum[1] != "TSTAR" {
			t.Errorf("form enum: got %v, want [STAR TSTAR]", form["enum"])
		}
		return
	}
	t.Fatal("impostor_build not defined")
}

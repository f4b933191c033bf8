package tools

import (
	"context"
	"encoding/json"
)

// HealthInfo supplies the figures reported by the health tool.
type HealthInfo func() map[string]interface{}

type HealthTool struct {
	registry *Registry
	info     HealthInfo
}

func NewHealthTool(registry *Registry, info HealthInfo) *HealthTool {
	return &HealthTool{registry: registry, info: info}
}

func (t *HealthTool) Name() string {
	return "health"
}

func (t *HealthTool) Description() string {
	return "Check tool server health and loaded resources"
}

func (t *HealthTool) Title() string {
	return "Health"
}

func (t *HealthTool) Annotations() map[string]bool {
	return ReadOnlyAnnotations()
}

func (t *HealthTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {},
		"required": []
	}`)
}

func (t *HealthTool) Execute(ctx context.Context, input json.RawMessage) (interface{}, error) {
	result := map[string]interface{}{
		"status": "healthy",
	}
	if t.registry != nil {
		result["tools"] = t.registry.Names()
	}
	if t.info != nil {
		for k, v := range t.info() {
			result[k] = v
		}
	}
	return result, nil
}

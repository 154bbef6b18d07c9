package llm

import (
	"context"
	"strconv"
	"strings"
)

// ProjectSettings is the per-project model configuration exposed by the
// relational store. Temperature stays a string until resolution so a
// non-numeric value can fall back instead of failing the request.
type ProjectSettings struct {
	ModelName    string
	Temperature  string
	ContextSize  string // low | medium | high
	SystemPrompt string
}

// SettingsSource resolves a project's stored settings.
type SettingsSource interface {
	ProjectSettings(ctx context.Context, projectID string) (ProjectSettings, error)
}

// Defaults applied when a project has no explicit settings.
type Defaults struct {
	Model       string
	Temperature float64
}

// Resolver turns a project id into a usable (model, temperature) pair.
type Resolver struct {
	source   SettingsSource
	defaults Defaults
}

func NewResolver(source SettingsSource, defaults Defaults) *Resolver {
	if defaults.Model == "" {
		defaults.Model = "gpt-4o-mini"
	}
	return &Resolver{source: source, defaults: defaults}
}

// Resolve never fails: a missing project or malformed settings degrade to the
// process-wide defaults.
func (r *Resolver) Resolve(ctx context.Context, projectID string) (string, float64) {
	if r.source == nil {
		return r.defaults.Model, r.defaults.Temperature
	}
	settings, err := r.source.ProjectSettings(ctx, projectID)
	if err != nil {
		return r.defaults.Model, r.defaults.Temperature
	}

	model := strings.TrimSpace(settings.ModelName)
	if model == "" {
		model = r.defaults.Model
	}
	temperature := r.defaults.Temperature
	if t := strings.TrimSpace(settings.Temperature); t != "" {
		if v, err := strconv.ParseFloat(t, 64); err == nil {
			temperature = v
		}
	}
	return model, temperature
}

// SystemPrompt returns the project's stored system prompt, or the fallback.
func (r *Resolver) SystemPrompt(ctx context.Context, projectID, fallback string) string {
	if r.source == nil {
		return fallback
	}
	settings, err := r.source.ProjectSettings(ctx, projectID)
	if err != nil || strings.TrimSpace(settings.SystemPrompt) == "" {
		return fallback
	}
	return settings.SystemPrompt
}

// ContextSize returns the project's context-size setting, or "medium".
func (r *Resolver) ContextSize(ctx context.Context, projectID string) string {
	if r.source == nil {
		return "medium"
	}
	settings, err := r.source.ProjectSettings(ctx, projectID)
	if err != nil || strings.TrimSpace(settings.ContextSize) == "" {
		return "medium"
	}
	return settings.ContextSize
}

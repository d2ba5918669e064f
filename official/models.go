package official

import (
	"fmt"

	config "github.com/Mai-with-u/MaiBot"
)

// APIProvider describes one model API endpoint and its credentials.
type APIProvider struct {
	Name          string `toml:"name,required" help:"provider name, referenced by models"`
	BaseURL       string `toml:"base_url" help:"API endpoint, may be empty for the gemini client"`
	APIKey        string `toml:"api_key,required"`
	ClientType    string `toml:"client_type" help:"openai or gemini"`
	MaxRetry      int    `toml:"max_retry" help:"attempts per request before giving up"`
	TimeoutSec    int    `toml:"timeout" help:"seconds before a request is abandoned"`
	RetryInterval int    `toml:"retry_interval" help:"seconds between attempts"`
}

func (p *APIProvider) PostLoad() error {
	if p.Name == "" {
		return &config.ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if p.APIKey == "" {
		return &config.ValidationError{Field: "api_key", Reason: "must not be empty"}
	}
	switch p.ClientType {
	case "openai", "gemini":
	default:
		return &config.ValidationError{Field: "client_type", Reason: "must be openai or gemini"}
	}
	// The gemini client knows its own endpoint.
	if p.BaseURL == "" && p.ClientType != "gemini" {
		return &config.ValidationError{Field: "base_url", Reason: "required unless client_type is gemini"}
	}
	if p.MaxRetry < 1 {
		return &config.ValidationError{Field: "max_retry", Reason: "must be at least 1"}
	}
	if p.TimeoutSec < 1 {
		return &config.ValidationError{Field: "timeout", Reason: "must be at least 1"}
	}
	if p.RetryInterval < 0 {
		return &config.ValidationError{Field: "retry_interval", Reason: "must not be negative"}
	}
	return nil
}

// ModelInfo describes one model offered by a provider, with its pricing
// and optional generation overrides.
type ModelInfo struct {
	ModelIdentifier string            `toml:"model_identifier,required" help:"identifier the provider API expects"`
	Name            string            `toml:"name,required" help:"name tasks refer to this model by"`
	APIProvider     string            `toml:"api_provider,required" help:"name of the provider serving this model"`
	PriceIn         float64           `toml:"price_in" help:"cost per million input tokens"`
	PriceOut        float64           `toml:"price_out" help:"cost per million output tokens"`
	Temperature     *float64          `toml:"temperature" help:"overrides the task temperature when set"`
	MaxTokens       *int              `toml:"max_tokens" help:"overrides the task max_tokens when set"`
	ForceStreamMode bool              `toml:"force_stream_mode"`
	ExtraParams     map[string]string `toml:"extra_params" help:"provider-specific request parameters"`
}

func (m *ModelInfo) PostLoad() error {
	if m.ModelIdentifier == "" {
		return &config.ValidationError{Field: "model_identifier", Reason: "must not be empty"}
	}
	if m.Name == "" {
		return &config.ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if m.APIProvider == "" {
		return &config.ValidationError{Field: "api_provider", Reason: "must not be empty"}
	}
	if m.PriceIn < 0 || m.PriceOut < 0 {
		return &config.ValidationError{Field: "price_in", Reason: "prices must not be negative"}
	}
	if m.Temperature != nil && (*m.Temperature < 0 || *m.Temperature > 2) {
		return &config.ValidationError{Field: "temperature", Reason: "must be within 0.0 and 2.0"}
	}
	if m.MaxTokens != nil && *m.MaxTokens < 1 {
		return &config.ValidationError{Field: "max_tokens", Reason: "must be at least 1"}
	}
	return nil
}

// TaskConfig binds one pipeline task to a list of candidate models.
type TaskConfig struct {
	ModelList         []string `toml:"model_list" help:"names of models this task may use, in preference order"`
	MaxTokens         int      `toml:"max_tokens" help:"response length limit"`
	Temperature       float64  `toml:"temperature"`
	SlowThreshold     float64  `toml:"slow_threshold" help:"seconds after which a model counts as slow"`
	SelectionStrategy string   `toml:"selection_strategy" help:"balance or random"`
}

func (t *TaskConfig) PostLoad() error {
	if t.MaxTokens < 1 {
		return &config.ValidationError{Field: "max_tokens", Reason: "must be at least 1"}
	}
	if t.Temperature < 0 || t.Temperature > 2 {
		return &config.ValidationError{Field: "temperature", Reason: "must be within 0.0 and 2.0"}
	}
	if t.SlowThreshold <= 0 {
		return &config.ValidationError{Field: "slow_threshold", Reason: "must be positive"}
	}
	if t.SelectionStrategy != "balance" && t.SelectionStrategy != "random" {
		return &config.ValidationError{Field: "selection_strategy", Reason: "must be balance or random"}
	}
	return nil
}

// ModelTaskConfig assigns models to each pipeline task.
type ModelTaskConfig struct {
	Utils     TaskConfig `toml:"utils" help:"light utility calls"`
	Replyer   TaskConfig `toml:"replyer" help:"reply generation"`
	Planner   TaskConfig `toml:"planner" help:"action planning"`
	VLM       TaskConfig `toml:"vlm" help:"image understanding"`
	Embedding TaskConfig `toml:"embedding"`
	ToolUse   TaskConfig `toml:"tool_use" help:"tool call decisions"`
}

// ModelConfig is the root of the model configuration file.
type ModelConfig struct {
	APIProviders []APIProvider   `toml:"api_providers"`
	Models       []ModelInfo     `toml:"models"`
	TaskConfigs  ModelTaskConfig `toml:"model_task_config"`
}

func (c *ModelConfig) PostLoad() error {
	providers := make(map[string]struct{}, len(c.APIProviders))
	for _, p := range c.APIProviders {
		if _, dup := providers[p.Name]; dup {
			return &config.ValidationError{
				Field:  "api_providers",
				Reason: fmt.Sprintf("provider name %q declared twice", p.Name),
			}
		}
		providers[p.Name] = struct{}{}
	}

	names := make(map[string]struct{}, len(c.Models))
	for _, m := range c.Models {
		if _, dup := names[m.Name]; dup {
			return &config.ValidationError{
				Field:  "models",
				Reason: fmt.Sprintf("model name %q declared twice", m.Name),
			}
		}
		names[m.Name] = struct{}{}
		if _, ok := providers[m.APIProvider]; !ok {
			return &config.ValidationError{
				Field:  "models",
				Reason: fmt.Sprintf("model %q references unknown provider %q", m.Name, m.APIProvider),
			}
		}
	}

	for task, list := range map[string][]string{
		"utils":     c.TaskConfigs.Utils.ModelList,
		"replyer":   c.TaskConfigs.Replyer.ModelList,
		"planner":   c.TaskConfigs.Planner.ModelList,
		"vlm":       c.TaskConfigs.VLM.ModelList,
		"embedding": c.TaskConfigs.Embedding.ModelList,
		"tool_use":  c.TaskConfigs.ToolUse.ModelList,
	} {
		for _, name := range list {
			if _, ok := names[name]; !ok {
				return &config.ValidationError{
					Field:  "model_task_config." + task + ".model_list",
					Reason: fmt.Sprintf("unknown model %q", name),
				}
			}
		}
	}
	return nil
}

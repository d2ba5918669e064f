package official

import (
	"sync"

	config "github.com/Mai-with-u/MaiBot"
)

var (
	schemaOnce sync.Once
	schema     *config.Schema
)

// Schema returns the shared schema with every official record defined.
// Item records are defined first, with their own prototypes, so their
// defaults win over the zero values the root definitions would capture.
func Schema() *config.Schema {
	schemaOnce.Do(func() {
		s := config.New()
		s.MustDefine(&TalkRulesItem{RuleType: "group", Value: 1})
		s.MustDefine(&TargetItem{RuleType: "group"})
		s.MustDefine(&LearningItem{
			RuleType:             "group",
			UseExpression:        true,
			EnableLearning:       true,
			EnableJargonLearning: true,
		})
		s.MustDefine(&KeywordRuleConfig{})
		s.MustDefine(defaultBot())
		s.MustDefine(defaultPersonality())
		s.MustDefine(defaultChat())
		s.MustDefine(defaultMessageReceive())
		s.MustDefine(defaultExpression())
		s.MustDefine(defaultEmoji())
		s.MustDefine(&TelemetryConfig{Enable: true})
		s.MustDefine(&DebugConfig{ShowReplyerReasoning: true})
		s.MustDefine(&Config{})

		s.MustDefine(defaultTask())
		s.MustDefine(&APIProvider{
			ClientType:    "openai",
			MaxRetry:      2,
			TimeoutSec:    30,
			RetryInterval: 10,
		})
		s.MustDefine(&ModelInfo{})
		s.MustDefine(defaultModelTasks())
		s.MustDefine(&ModelConfig{})
		schema = s
	})
	return schema
}

func defaultBot() *BotConfig {
	return &BotConfig{
		Nickname:   "Mai",
		AliasNames: []string{"Mai-chan"},
	}
}

func defaultPersonality() *PersonalityConfig {
	return &PersonalityConfig{
		Personality:         "A sharp-tongued but warm-hearted university student who hangs out in group chats.",
		ReplyStyle:          "Casual and to the point, like a regular forum user.",
		MultipleReplyStyle:  []string{},
		MultipleProbability: 0.3,
		States:              []string{"relaxed", "focused", "sleepy"},
		StateProbability:    0.1,
	}
}

func defaultChat() *ChatConfig {
	return &ChatConfig{
		TalkValue:            1,
		MentionedBotReply:    true,
		MaxContextSize:       30,
		PlannerSmooth:        3,
		ThinkMode:            "dynamic",
		EnableTalkValueRules: false,
		TalkValueRules: []TalkRulesItem{
			{RuleType: "group", Time: "00:00-08:59", Value: 0.6},
			{RuleType: "group", Time: "09:00-23:59", Value: 1},
		},
	}
}

func defaultMessageReceive() *MessageReceiveConfig {
	return &MessageReceiveConfig{
		BanWords:     map[string]struct{}{},
		BanMsgsRegex: map[string]struct{}{},
	}
}

func defaultExpression() *ExpressionConfig {
	return &ExpressionConfig{
		LearningList: []LearningItem{{
			RuleType:             "group",
			UseExpression:        true,
			EnableLearning:       true,
			EnableJargonLearning: true,
		}},
		ExpressionCheckedOnly:       true,
		ExpressionSelfReflect:       false,
		ExpressionAutoCheckInterval: 600,
		ExpressionAutoCheckCount:    20,
		AllowReflect:                []TargetItem{},
		AllGlobalJargon:             false,
		JargonMode:                  "context",
	}
}

func defaultEmoji() *EmojiConfig {
	return &EmojiConfig{
		EmojiChance:       0.4,
		MaxRegNum:         200,
		DoReplace:         true,
		CheckInterval:     10,
		StealEmoji:        true,
		ContentFiltration: false,
		FiltrationPrompt:  "fine to post in a public group chat",
	}
}

func defaultTask() *TaskConfig {
	return &TaskConfig{
		ModelList:         []string{},
		MaxTokens:         800,
		Temperature:       0.3,
		SlowThreshold:     10,
		SelectionStrategy: "balance",
	}
}

func defaultModelTasks() *ModelTaskConfig {
	return &ModelTaskConfig{
		Utils:     *defaultTask(),
		Replyer:   *defaultTask(),
		Planner:   *defaultTask(),
		VLM:       *defaultTask(),
		Embedding: *defaultTask(),
		ToolUse:   *defaultTask(),
	}
}

// Default returns a main configuration populated with stock defaults.
func Default() *Config {
	return &Config{
		Bot:            *defaultBot(),
		Personality:    *defaultPersonality(),
		Chat:           *defaultChat(),
		MessageReceive: *defaultMessageReceive(),
		Expression:     *defaultExpression(),
		KeywordReaction: KeywordReactionConfig{
			KeywordRules: []KeywordRuleConfig{},
			RegexRules:   []KeywordRuleConfig{},
		},
		Emoji:     *defaultEmoji(),
		Telemetry: TelemetryConfig{Enable: true},
		Debug:     DebugConfig{ShowReplyerReasoning: true},
	}
}

// DefaultModels returns a model configuration populated with stock
// defaults. It names no providers or models; those have no sensible
// defaults.
func DefaultModels() *ModelConfig {
	return &ModelConfig{
		TaskConfigs: *defaultModelTasks(),
	}
}

// Load reads and validates the main configuration file.
func Load(path string) (*Config, error) {
	cfg := new(Config)
	if err := Schema().LoadFromFile(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadModels reads and validates the model configuration file.
func LoadModels(path string) (*ModelConfig, error) {
	cfg := new(ModelConfig)
	if err := Schema().LoadFromFile(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Package official declares the bot's configuration records: plain data
// structs validated by the schema in the parent package. Records carry no
// behavior beyond their PostLoad hooks; code that needs configuration
// reads fields directly.
package official

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	config "github.com/Mai-with-u/MaiBot"
)

// BotConfig identifies the bot itself.
type BotConfig struct {
	Nickname   string   `toml:"nickname,required" help:"primary name the bot goes by"`
	AliasNames []string `toml:"alias_names" help:"other names the bot answers to"`
}

// PersonalityConfig shapes how the bot presents itself in conversation.
type PersonalityConfig struct {
	Personality         string   `toml:"personality" help:"core persona description, fed to the replyer"`
	ReplyStyle          string   `toml:"reply_style" help:"default tone of generated replies"`
	MultipleReplyStyle  []string `toml:"multiple_reply_style" help:"alternate reply styles to rotate through"`
	MultipleProbability float64  `toml:"multiple_probability" help:"chance of picking an alternate reply style"`
	States              []string `toml:"states" help:"moods the bot can drift between"`
	StateProbability    float64  `toml:"state_probability" help:"chance of switching mood per reply"`
}

func (c *PersonalityConfig) PostLoad() error {
	if c.MultipleProbability < 0 || c.MultipleProbability > 1 {
		return &config.ValidationError{Field: "multiple_probability", Reason: "must be within 0.0 and 1.0"}
	}
	if c.StateProbability < 0 || c.StateProbability > 1 {
		return &config.ValidationError{Field: "state_probability", Reason: "must be within 0.0 and 1.0"}
	}
	return nil
}

// TalkRulesItem overrides the talk value for one chat during one daily
// time window. Platform and ID may be empty to match any chat.
type TalkRulesItem struct {
	Platform string  `toml:"platform" help:"platform the rule applies to, empty for all"`
	ID       string  `toml:"id" help:"chat identifier the rule applies to, empty for all"`
	RuleType string  `toml:"rule_type" help:"group or private"`
	Time     string  `toml:"time" help:"daily window as HH:MM-HH:MM, may wrap past midnight"`
	Value    float64 `toml:"value" help:"talk value while the window is active"`
}

func (r *TalkRulesItem) PostLoad() error {
	if r.RuleType != "group" && r.RuleType != "private" {
		return &config.ValidationError{Field: "rule_type", Reason: "must be group or private"}
	}
	if r.Value < 0 || r.Value > 1 {
		return &config.ValidationError{Field: "value", Reason: "must be within 0.0 and 1.0"}
	}
	if r.Time != "" {
		if _, _, err := parseClockRange(r.Time); err != nil {
			return &config.ValidationError{Field: "time", Reason: err.Error()}
		}
	}
	return nil
}

// ChatConfig controls when and how much the bot talks.
type ChatConfig struct {
	TalkValue            float64         `toml:"talk_value" help:"base willingness to reply, 0 silences the bot"`
	MentionedBotReply    bool            `toml:"mentioned_bot_reply" help:"always reply when the bot is mentioned"`
	MaxContextSize       int             `toml:"max_context_size" help:"messages of chat history handed to the model"`
	PlannerSmooth        float64         `toml:"planner_smooth" help:"seconds of smoothing between planner runs"`
	ThinkMode            string          `toml:"think_mode" help:"classic, deep, or dynamic"`
	EnableTalkValueRules bool            `toml:"enable_talk_value_rules" help:"apply per-chat time-window talk value overrides"`
	TalkValueRules       []TalkRulesItem `toml:"talk_value_rules"`
}

func (c *ChatConfig) PostLoad() error {
	if c.TalkValue < 0 || c.TalkValue > 1 {
		return &config.ValidationError{Field: "talk_value", Reason: "must be within 0.0 and 1.0"}
	}
	if c.MaxContextSize < 1 {
		return &config.ValidationError{Field: "max_context_size", Reason: "must be at least 1"}
	}
	if c.PlannerSmooth < 0 {
		return &config.ValidationError{Field: "planner_smooth", Reason: "must not be negative"}
	}
	switch c.ThinkMode {
	case "classic", "deep", "dynamic":
	default:
		return &config.ValidationError{Field: "think_mode", Reason: "must be classic, deep, or dynamic"}
	}
	return nil
}

// MessageReceiveConfig filters inbound messages before they reach the
// chat pipeline.
type MessageReceiveConfig struct {
	BanWords     map[string]struct{} `toml:"ban_words" help:"messages containing any of these words are dropped"`
	BanMsgsRegex map[string]struct{} `toml:"ban_msgs_regex" help:"messages matching any of these patterns are dropped"`
}

func (c *MessageReceiveConfig) PostLoad() error {
	for pattern := range c.BanMsgsRegex {
		if _, err := regexp.Compile(pattern); err != nil {
			return &config.ValidationError{
				Field:  "ban_msgs_regex",
				Reason: fmt.Sprintf("pattern %q does not compile: %v", pattern, err),
			}
		}
	}
	return nil
}

// TargetItem designates one chat by platform and identifier.
type TargetItem struct {
	Platform string `toml:"platform"`
	ID       string `toml:"id"`
	RuleType string `toml:"rule_type" help:"group or private"`
}

func (t *TargetItem) PostLoad() error {
	if t.RuleType != "group" && t.RuleType != "private" {
		return &config.ValidationError{Field: "rule_type", Reason: "must be group or private"}
	}
	return nil
}

// LearningItem enables expression learning for one chat.
type LearningItem struct {
	Platform             string `toml:"platform"`
	ID                   string `toml:"id"`
	RuleType             string `toml:"rule_type" help:"group or private"`
	UseExpression        bool   `toml:"use_expression" help:"apply learned expressions in this chat"`
	EnableLearning       bool   `toml:"enable_learning" help:"learn new expressions from this chat"`
	EnableJargonLearning bool   `toml:"enable_jargon_learning" help:"learn chat-specific jargon from this chat"`
}

func (l *LearningItem) PostLoad() error {
	if l.RuleType != "group" && l.RuleType != "private" {
		return &config.ValidationError{Field: "rule_type", Reason: "must be group or private"}
	}
	return nil
}

// ExpressionConfig governs expression and jargon learning.
type ExpressionConfig struct {
	LearningList                []LearningItem `toml:"learning_list" help:"chats that take part in expression learning"`
	ExpressionCheckedOnly       bool           `toml:"expression_checked_only" help:"only use expressions that passed review"`
	ExpressionSelfReflect       bool           `toml:"expression_self_reflect" help:"periodically review learned expressions"`
	ExpressionAutoCheckInterval int            `toml:"expression_auto_check_interval" help:"seconds between automatic reviews"`
	ExpressionAutoCheckCount    int            `toml:"expression_auto_check_count" help:"expressions reviewed per pass"`
	ManualReflectOperator       *TargetItem    `toml:"manual_reflect_operator" help:"chat allowed to trigger reviews by hand"`
	AllowReflect                []TargetItem   `toml:"allow_reflect" help:"chats whose feedback counts during review"`
	AllGlobalJargon             bool           `toml:"all_global_jargon" help:"share learned jargon across all chats"`
	JargonMode                  string         `toml:"jargon_mode" help:"context or planner"`
}

func (c *ExpressionConfig) PostLoad() error {
	if c.ExpressionAutoCheckInterval < 1 {
		return &config.ValidationError{Field: "expression_auto_check_interval", Reason: "must be at least 1"}
	}
	if c.ExpressionAutoCheckCount < 1 {
		return &config.ValidationError{Field: "expression_auto_check_count", Reason: "must be at least 1"}
	}
	if c.JargonMode != "context" && c.JargonMode != "planner" {
		return &config.ValidationError{Field: "jargon_mode", Reason: "must be context or planner"}
	}
	return nil
}

// KeywordRuleConfig triggers a canned reaction on a keyword or pattern
// match.
type KeywordRuleConfig struct {
	Keywords []string `toml:"keywords" help:"literal substrings that trigger the reaction"`
	Regex    []string `toml:"regex" help:"patterns that trigger the reaction"`
	Reaction string   `toml:"reaction" help:"instruction injected into the reply prompt"`
}

func (k *KeywordRuleConfig) PostLoad() error {
	if len(k.Keywords) == 0 && len(k.Regex) == 0 {
		return &config.ValidationError{Field: "keywords", Reason: "a rule needs keywords or regex triggers"}
	}
	if k.Reaction == "" {
		return &config.ValidationError{Field: "reaction", Reason: "a rule needs a reaction"}
	}
	for _, pattern := range k.Regex {
		if _, err := regexp.Compile(pattern); err != nil {
			return &config.ValidationError{
				Field:  "regex",
				Reason: fmt.Sprintf("pattern %q does not compile: %v", pattern, err),
			}
		}
	}
	return nil
}

// KeywordReactionConfig groups the keyword rules.
type KeywordReactionConfig struct {
	KeywordRules []KeywordRuleConfig `toml:"keyword_rules"`
	RegexRules   []KeywordRuleConfig `toml:"regex_rules"`
}

// EmojiConfig controls sticker collection and use.
type EmojiConfig struct {
	EmojiChance       float64 `toml:"emoji_chance" help:"chance of attaching a sticker to a reply"`
	MaxRegNum         int     `toml:"max_reg_num" help:"sticker registry size limit"`
	DoReplace         bool    `toml:"do_replace" help:"replace old stickers when the registry is full"`
	CheckInterval     int     `toml:"check_interval" help:"minutes between registry maintenance passes"`
	StealEmoji        bool    `toml:"steal_emoji" help:"collect stickers seen in chats"`
	ContentFiltration bool    `toml:"content_filtration" help:"filter collected stickers by description"`
	FiltrationPrompt  string  `toml:"filtration_prompt" help:"description a sticker must fit to be kept"`
}

func (c *EmojiConfig) PostLoad() error {
	if c.EmojiChance < 0 || c.EmojiChance > 1 {
		return &config.ValidationError{Field: "emoji_chance", Reason: "must be within 0.0 and 1.0"}
	}
	if c.MaxRegNum < 1 {
		return &config.ValidationError{Field: "max_reg_num", Reason: "must be at least 1"}
	}
	if c.CheckInterval < 1 {
		return &config.ValidationError{Field: "check_interval", Reason: "must be at least 1"}
	}
	return nil
}

// TelemetryConfig controls anonymous usage reporting.
type TelemetryConfig struct {
	Enable bool `toml:"enable"`
}

// DebugConfig toggles prompt and reasoning dumps in the log.
type DebugConfig struct {
	ShowPrompt           bool `toml:"show_prompt"`
	ShowReplyerPrompt    bool `toml:"show_replyer_prompt"`
	ShowReplyerReasoning bool `toml:"show_replyer_reasoning"`
	ShowPlannerPrompt    bool `toml:"show_planner_prompt"`
}

// Config is the root of the main configuration file.
type Config struct {
	Bot             BotConfig             `toml:"bot"`
	Personality     PersonalityConfig     `toml:"personality"`
	Chat            ChatConfig            `toml:"chat"`
	MessageReceive  MessageReceiveConfig  `toml:"message_receive"`
	Expression      ExpressionConfig      `toml:"expression"`
	KeywordReaction KeywordReactionConfig `toml:"keyword_reaction"`
	Emoji           EmojiConfig           `toml:"emoji"`
	Telemetry       TelemetryConfig       `toml:"telemetry"`
	Debug           DebugConfig           `toml:"debug"`
}

// parseClockRange parses a daily window "HH:MM-HH:MM" into minutes since
// midnight. Start after end is valid and means the window wraps past
// midnight.
func parseClockRange(s string) (start, end int, err error) {
	from, to, ok := strings.Cut(s, "-")
	if !ok {
		return 0, 0, fmt.Errorf("time window %q must be HH:MM-HH:MM", s)
	}
	if start, err = parseClock(from); err != nil {
		return 0, 0, err
	}
	if end, err = parseClock(to); err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

func parseClock(s string) (int, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("clock %q must be HH:MM", strings.TrimSpace(s))
	}
	return t.Hour()*60 + t.Minute(), nil
}

// inClockRange reports whether a minute-of-day falls inside a window,
// wrapping past midnight when start > end.
func inClockRange(minute, start, end int) bool {
	if start <= end {
		return minute >= start && minute <= end
	}
	return minute >= start || minute <= end
}

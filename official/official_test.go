package official

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	config "github.com/Mai-with-u/MaiBot"
)

// minimalTree is the smallest tree that satisfies the main configuration:
// everything except the bot's name has a stock default.
func minimalTree() map[string]any {
	return map[string]any{
		"bot": map[string]any{"nickname": "Mai"},
	}
}

func TestLoadMinimalConfig(t *testing.T) {
	var cfg Config
	require.NoError(t, Schema().Load(minimalTree(), &cfg))

	assert.Equal(t, "Mai", cfg.Bot.Nickname)
	assert.Equal(t, []string{"Mai-chan"}, cfg.Bot.AliasNames)

	// Absent sections fall back to the stock defaults, hooks included.
	assert.Equal(t, 1.0, cfg.Chat.TalkValue)
	assert.Equal(t, "dynamic", cfg.Chat.ThinkMode)
	assert.Equal(t, 30, cfg.Chat.MaxContextSize)
	require.Len(t, cfg.Chat.TalkValueRules, 2)
	assert.Equal(t, "00:00-08:59", cfg.Chat.TalkValueRules[0].Time)

	assert.Equal(t, 600, cfg.Expression.ExpressionAutoCheckInterval)
	assert.Equal(t, "context", cfg.Expression.JargonMode)
	require.Len(t, cfg.Expression.LearningList, 1)
	assert.True(t, cfg.Expression.LearningList[0].UseExpression)
	assert.Nil(t, cfg.Expression.ManualReflectOperator)

	assert.Equal(t, 0.4, cfg.Emoji.EmojiChance)
	assert.True(t, cfg.Telemetry.Enable)
}

func TestLoadRequiresNickname(t *testing.T) {
	tests := []struct {
		name string
		tree map[string]any
	}{
		{"empty tree", map[string]any{}},
		{"empty bot table", map[string]any{"bot": map[string]any{}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cfg Config
			err := Schema().Load(tt.tree, &cfg)
			require.Error(t, err)
			assert.ErrorIs(t, err, config.ErrMissingField)

			var le *config.LoadError
			require.ErrorAs(t, err, &le)
			assert.Equal(t, "bot.nickname", le.Path)
		})
	}
}

func TestLoadValidatesSections(t *testing.T) {
	tests := []struct {
		name    string
		section string
		table   map[string]any
		path    string
	}{
		{
			"talk value out of range",
			"chat",
			map[string]any{"talk_value": 1.5},
			"chat.talk_value",
		},
		{
			"unknown think mode",
			"chat",
			map[string]any{"think_mode": "quantum"},
			"chat.think_mode",
		},
		{
			"rule with bad window",
			"chat",
			map[string]any{
				"talk_value_rules": []any{
					map[string]any{"rule_type": "group", "time": "25:00-26:00", "value": 0.5},
				},
			},
			"chat.talk_value_rules[0].time",
		},
		{
			"rule with bad type",
			"chat",
			map[string]any{
				"talk_value_rules": []any{
					map[string]any{"rule_type": "channel", "value": 0.5},
				},
			},
			"chat.talk_value_rules[0].rule_type",
		},
		{
			"ban pattern does not compile",
			"message_receive",
			map[string]any{"ban_msgs_regex": []any{"(unclosed"}},
			"message_receive.ban_msgs_regex",
		},
		{
			"state probability out of range",
			"personality",
			map[string]any{"state_probability": -0.2},
			"personality.state_probability",
		},
		{
			"jargon mode unknown",
			"expression",
			map[string]any{"jargon_mode": "global"},
			"expression.jargon_mode",
		},
		{
			"keyword rule without reaction",
			"keyword_reaction",
			map[string]any{
				"keyword_rules": []any{
					map[string]any{"keywords": []any{"hello"}},
				},
			},
			"keyword_reaction.keyword_rules[0].reaction",
		},
		{
			"emoji chance out of range",
			"emoji",
			map[string]any{"emoji_chance": 2.0},
			"emoji.emoji_chance",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := minimalTree()
			tree[tt.section] = tt.table

			var cfg Config
			err := Schema().Load(tree, &cfg)
			require.Error(t, err)
			assert.ErrorIs(t, err, config.ErrValidationFailed)

			var le *config.LoadError
			require.ErrorAs(t, err, &le)
			assert.Equal(t, tt.path, le.Path)
		})
	}
}

func TestDefaultPassesItsOwnSchema(t *testing.T) {
	tree, err := Schema().Dump(Default())
	require.NoError(t, err)

	var cfg Config
	require.NoError(t, Schema().Load(tree, &cfg))
	assert.Equal(t, *Default(), cfg)
}

func TestLoadMainConfigFile(t *testing.T) {
	content := `
[bot]
nickname = "Mai"
alias_names = ["M", "Mai-chan"]

[chat]
talk_value = 0.8
think_mode = "deep"
enable_talk_value_rules = true

[[chat.talk_value_rules]]
rule_type = "group"
time = "22:00-06:00"
value = 0.2

[message_receive]
ban_words = ["spoiler"]
ban_msgs_regex = ['^!\w+']

[expression]
jargon_mode = "planner"

[[expression.learning_list]]
platform = "qq"
id = "114514"
rule_type = "group"

[debug]
show_prompt = true
`
	path := filepath.Join(t.TempDir(), "bot_config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"M", "Mai-chan"}, cfg.Bot.AliasNames)
	assert.Equal(t, 0.8, cfg.Chat.TalkValue)
	assert.Equal(t, "deep", cfg.Chat.ThinkMode)
	require.Len(t, cfg.Chat.TalkValueRules, 1)
	assert.Equal(t, "22:00-06:00", cfg.Chat.TalkValueRules[0].Time)

	assert.Contains(t, cfg.MessageReceive.BanWords, "spoiler")
	assert.Contains(t, cfg.MessageReceive.BanMsgsRegex, `^!\w+`)

	require.Len(t, cfg.Expression.LearningList, 1)
	assert.Equal(t, "114514", cfg.Expression.LearningList[0].ID)
	// Item fields the table omits come from the item defaults.
	assert.True(t, cfg.Expression.LearningList[0].UseExpression)
	assert.Equal(t, "planner", cfg.Expression.JargonMode)

	assert.True(t, cfg.Debug.ShowPrompt)
	// Untouched sections still carry their defaults.
	assert.Equal(t, 200, cfg.Emoji.MaxRegNum)
}

func TestLoadMissingConfigFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	assert.ErrorIs(t, err, config.ErrConfigNotFound)
}

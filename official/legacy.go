package official

import (
	"regexp"
	"strings"
	"sync"
	"time"

	config "github.com/Mai-with-u/MaiBot"
)

// Free functions covering behavior that used to live as methods on the
// records. Records now carry data plus at most a PostLoad hook, so these
// exist to keep old call sites working while they migrate. Each one logs
// a deprecation notice on first use.

var (
	allNamesOnce   sync.Once
	talkValueOnce  sync.Once
	matchesBanOnce sync.Once
)

func deprecated(once *sync.Once, name, instead string) {
	once.Do(func() {
		config.Logger().Warn("deprecated function", "func", name, "use", instead)
	})
}

// AllNames returns the nickname followed by the alias names.
//
// Deprecated: read BotConfig.Nickname and BotConfig.AliasNames directly;
// name matching belongs to the platform adapters.
func AllNames(b *BotConfig) []string {
	deprecated(&allNamesOnce, "official.AllNames", "BotConfig.Nickname and BotConfig.AliasNames")
	names := make([]string, 0, 1+len(b.AliasNames))
	names = append(names, b.Nickname)
	return append(names, b.AliasNames...)
}

// TalkValueAt resolves the talk value for one chat at a point in time,
// applying the first matching time-window rule. Rules with an empty
// platform or id match any chat; a rule with no window always matches.
//
// Deprecated: talk value scheduling belongs to the chat manager.
func TalkValueAt(c *ChatConfig, platform, id, ruleType string, at time.Time) float64 {
	deprecated(&talkValueOnce, "official.TalkValueAt", "the chat manager's scheduler")
	if !c.EnableTalkValueRules {
		return c.TalkValue
	}

	minute := at.Hour()*60 + at.Minute()
	for i := range c.TalkValueRules {
		r := &c.TalkValueRules[i]
		if r.Platform != "" && r.Platform != platform {
			continue
		}
		if r.ID != "" && r.ID != id {
			continue
		}
		if r.RuleType != ruleType {
			continue
		}
		if r.Time == "" {
			return r.Value
		}
		start, end, err := parseClockRange(r.Time)
		if err != nil {
			// The hook validated windows at load time; skip rather than
			// guess on a hand-built record.
			continue
		}
		if inClockRange(minute, start, end) {
			return r.Value
		}
	}
	return c.TalkValue
}

// MatchesBanWord reports whether a message trips the ban word list or one
// of the ban patterns. Patterns that do not compile are skipped; the hook
// rejects them at load time.
//
// Deprecated: message filtering belongs to the receive pipeline.
func MatchesBanWord(m *MessageReceiveConfig, text string) bool {
	deprecated(&matchesBanOnce, "official.MatchesBanWord", "the receive pipeline's filter")
	for word := range m.BanWords {
		if strings.Contains(text, word) {
			return true
		}
	}
	for pattern := range m.BanMsgsRegex {
		re, err := regexp.Compile(pattern)
		if err != nil {
			continue
		}
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

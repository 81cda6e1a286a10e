package toneguard

import (
	"strings"
	"unicode"
)

// blamePhrases always lift a verdict to at least medium. Matching is done on
// normalized text: lower case, apostrophes dropped, punctuation as spaces.
var blamePhrases = []string{
	"you always",
	"you never",
	"your fault",
	"because of you",
	"what's wrong with you",
	"what is wrong with you",
	"how dare you",
	"shut up",
	"sick of you",
	"sick and tired",
	"you're useless",
	"you are useless",
	"you're pathetic",
	"you are pathetic",
	"you're a terrible",
	"you are a terrible",
	"you'll regret",
	"you will regret",
	"see you in court",
	"typical of you",
	"as usual you",
	"don't you dare",
	"i'm done with you",
	"get a life",
}

const floorReason = "Message contains blaming or hostile language"

var normalizedBlamePhrases = func() []string {
	out := make([]string, len(blamePhrases))
	for i, p := range blamePhrases {
		out[i] = normalize(p)
	}
	return out
}()

func normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text) + 2)
	b.WriteByte(' ')
	space := true
	for _, r := range strings.ToLower(text) {
		switch {
		case r == '\'' || r == '’' || r == '‘':
			continue
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			space = false
		default:
			if !space {
				b.WriteByte(' ')
				space = true
			}
		}
	}
	if !space {
		b.WriteByte(' ')
	}
	return b.String()
}

// MatchBlamePhrase returns the first blame phrase found in text.
func MatchBlamePhrase(text string) (string, bool) {
	n := normalize(text)
	for i, p := range normalizedBlamePhrases {
		if strings.Contains(n, p) {
			return blamePhrases[i], true
		}
	}
	return "", false
}

// ApplyPhraseFloor raises v to medium when text contains a blame phrase.
// It never lowers a verdict.
func ApplyPhraseFloor(text string, v Verdict) Verdict {
	if v.Risk.Flagged() {
		return v
	}
	phrase, ok := MatchBlamePhrase(text)
	if !ok {
		return v
	}
	return Verdict{
		Risk:    RiskMedium,
		Reason:  floorReason + ` ("` + phrase + `")`,
		Rewrite: v.Rewrite,
	}
}

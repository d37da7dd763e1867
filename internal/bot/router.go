package bot

import "strings"

// Command is the structured form of a "/name arg ..." message, so
// authorization and validation never slice raw text.
type Command struct {
	Name    string   // lowercase, without the leading slash
	Args    []string // space-delimited arguments
	ArgText string   // everything after the command word, trimmed
}

// ParseCommand parses text into a Command. A "@botUser" suffix on the
// command word is stripped (group clients append it). ok is false for
// non-command text.
func ParseCommand(text, botUser string) (Command, bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return Command{}, false
	}

	word := text
	rest := ""
	if i := strings.IndexAny(text, " \t\n"); i >= 0 {
		word = text[:i]
		rest = strings.TrimSpace(text[i:])
	}

	word = strings.TrimPrefix(word, "/")
	if at := strings.IndexByte(word, '@'); at >= 0 {
		target := word[at+1:]
		if botUser != "" && !strings.EqualFold(target, botUser) {
			// Addressed to a different bot in the group.
			return Command{}, false
		}
		word = word[:at]
	}
	if word == "" {
		return Command{}, false
	}

	cmd := Command{
		Name:    strings.ToLower(word),
		ArgText: rest,
	}
	if rest != "" {
		cmd.Args = strings.Fields(rest)
	}
	return cmd, true
}

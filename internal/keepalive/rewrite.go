package keepalive

import "regexp"

// verbStartRe matches the verb at a statement-start position: the
// beginning of the command text, or right after &&, ||, ;, a newline, or a
// tab, optionally followed by an existing "-n" (so an already-wrapped verb
// is left untouched rather than double-wrapped).
var verbStartRe = regexp.MustCompile(`(^|&&|\|\||;|\n|\t)([ \t]*)sudo\b([ \t]*-n)?`)

// Rewrite applies the opt-in, best-effort command substitution described by
// the spec: every occurrence of the verb at a statement-start position gets
// " -n" appended so it runs non-interactively inside the PTY. This is plain
// text substitution, not a shell parser, and is documented as best-effort:
// it can both over-match (a quoted string containing "sudo ...") and
// under-match (the verb hidden behind a variable or shell alias).
func (c Config) Rewrite(command string) string {
	if !c.Wrap {
		return command
	}
	return verbStartRe.ReplaceAllStringFunc(command, func(match string) string {
		groups := verbStartRe.FindStringSubmatch(match)
		if groups[3] != "" {
			return match
		}
		return groups[1] + groups[2] + Verb + " -n"
	})
}

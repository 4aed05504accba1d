package shell

import "strings"

// splitArgs splits a command line into words. Single and double quotes group
// words; a backslash escapes the next rune outside single quotes. An unclosed
// quote runs to the end of the line.
func splitArgs(line string) []string {
	var (
		args    []string
		cur     strings.Builder
		inWord  bool
		quote   rune
		escaped bool
	)
	for _, r := range line {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case r == '\\' && quote != '\'':
			escaped = true
			inWord = true
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				cur.WriteRune(r)
			}
		case r == '\'' || r == '"':
			quote = r
			inWord = true
		case r == ' ' || r == '\t':
			if inWord {
				args = append(args, cur.String())
				cur.Reset()
				inWord = false
			}
		default:
			cur.WriteRune(r)
			inWord = true
		}
	}
	if inWord {
		args = append(args, cur.String())
	}
	return args
}

// wordBeforeCursor returns the words before the one being typed, and the
// partial word itself ("" after trailing whitespace).
func wordBeforeCursor(before string) (completed []string, current string) {
	args := splitArgs(before)
	if len(args) == 0 || strings.HasSuffix(before, " ") || strings.HasSuffix(before, "\t") {
		return args, ""
	}
	return args[:len(args)-1], args[len(args)-1]
}

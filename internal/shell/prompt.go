package shell

import (
	"context"
	"strings"

	prompt "github.com/joeycumines/go-prompt"
	istrings "github.com/joeycumines/go-prompt/strings"
)

// fileArgCommands complete their argument with file names.
var fileArgCommands = map[string]bool{"open": true, "o": true, "rm": true, "delete": true}

// suggestions returns completions for the text before the cursor, and the
// partial word they replace.
func (s *Shell) suggestions(before string) ([]prompt.Suggest, string) {
	trimmed := strings.TrimLeft(before, " \t")
	if !strings.HasPrefix(trimmed, ":") {
		return nil, ""
	}
	completed, current := wordBeforeCursor(trimmed[1:])
	var out []prompt.Suggest
	switch len(completed) {
	case 0:
		for _, c := range commands {
			if strings.HasPrefix(c.name, current) {
				out = append(out, prompt.Suggest{Text: ":" + c.name, Description: c.help})
			}
		}
		current = ":" + current
	case 1:
		if !fileArgCommands[completed[0]] {
			return nil, ""
		}
		names, err := s.session.Workspace().List()
		if err != nil {
			return nil, ""
		}
		for _, name := range names {
			if strings.HasPrefix(name, current) {
				out = append(out, prompt.Suggest{Text: name})
			}
		}
	}
	return out, current
}

func (s *Shell) complete(d prompt.Document) ([]prompt.Suggest, istrings.RuneNumber, istrings.RuneNumber) {
	before := d.TextBeforeCursor()
	sugg, word := s.suggestions(before)
	end := len([]rune(before))
	start := end - len([]rune(word))
	return sugg, istrings.RuneNumber(start), istrings.RuneNumber(end)
}

// RunPrompt runs the interactive go-prompt loop until :quit or Ctrl-D.
func (s *Shell) RunPrompt(ctx context.Context) error {
	var done bool
	executor := func(line string) {
		if !s.Execute(ctx, line) || ctx.Err() != nil {
			done = true
		}
	}
	p := prompt.New(executor,
		prompt.WithPrefix(s.prefix),
		prompt.WithPrefixTextColor(prompt.Cyan),
		prompt.WithSuggestionBGColor(prompt.DarkGray),
		prompt.WithSuggestionTextColor(prompt.White),
		prompt.WithSelectedSuggestionBGColor(prompt.Cyan),
		prompt.WithSelectedSuggestionTextColor(prompt.Black),
		prompt.WithDescriptionBGColor(prompt.DarkGray),
		prompt.WithDescriptionTextColor(prompt.White),
		prompt.WithCompleter(s.complete),
		prompt.WithExitChecker(func(_ string, breakline bool) bool {
			return breakline && done
		}),
	)
	p.Run()
	return ctx.Err()
}

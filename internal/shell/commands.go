package shell

import (
	"context"
	"fmt"
	"text/tabwriter"
)

type command struct {
	name    string
	aliases []string
	usage   string
	help    string
	run     func(s *Shell, ctx context.Context, args []string) bool
}

// commands is in :help order.
var commands []*command

func init() {
	commands = []*command{
		{name: "run", aliases: []string{"r"}, usage: ":run", help: "Run the buffer", run: func(s *Shell, ctx context.Context, _ []string) bool {
			s.RunRequested(ctx)
			return true
		}},
		{name: "save", aliases: []string{"w"}, usage: ":save", help: "Save the buffer, asking for a name if it is unsaved", run: func(s *Shell, _ context.Context, _ []string) bool {
			_ = s.SaveRequested()
			return true
		}},
		{name: "open", aliases: []string{"o"}, usage: ":open NAME", help: "Open a file", run: func(s *Shell, _ context.Context, args []string) bool {
			if len(args) != 1 {
				s.dialogs.Alert("Usage: :open NAME")
				return true
			}
			_ = s.OpenFile(args[0])
			return true
		}},
		{name: "new", usage: ":new [NAME]", help: "Create and open a new file", run: func(s *Shell, _ context.Context, args []string) bool {
			_ = s.CreateFile(firstArg(args), false)
			return true
		}},
		{name: "saveas", usage: ":saveas [NAME]", help: "Create a new file from the buffer and open it", run: func(s *Shell, _ context.Context, args []string) bool {
			_ = s.CreateFile(firstArg(args), true)
			return true
		}},
		{name: "rm", aliases: []string{"delete"}, usage: ":rm [NAME]", help: "Delete a file (default: the open file)", run: func(s *Shell, _ context.Context, args []string) bool {
			name := firstArg(args)
			if name == "" {
				name = s.session.CurrentFile()
			}
			if name == "" {
				s.dialogs.Alert("Usage: :rm NAME")
				return true
			}
			_, _ = s.DeleteFile(name)
			return true
		}},
		{name: "ls", aliases: []string{"files"}, usage: ":ls", help: "List files", run: func(s *Shell, _ context.Context, _ []string) bool {
			s.listFiles()
			return true
		}},
		{name: "show", aliases: []string{"p"}, usage: ":show", help: "Print the buffer", run: func(s *Shell, _ context.Context, _ []string) bool {
			s.showBuffer()
			return true
		}},
		{name: "edit", aliases: []string{"e"}, usage: ":edit", help: "Edit the buffer in $VISUAL or $EDITOR", run: func(s *Shell, ctx context.Context, _ []string) bool {
			s.editBuffer(ctx)
			return true
		}},
		{name: "clear", usage: ":clear", help: "Empty the buffer", run: func(s *Shell, _ context.Context, _ []string) bool {
			s.EditEvent("")
			return true
		}},
		{name: "log", usage: ":log [N]", help: "Show recent log entries", run: func(s *Shell, _ context.Context, args []string) bool {
			s.showLog(args)
			return true
		}},
		{name: "help", aliases: []string{"h", "?"}, usage: ":help", help: "Show this help", run: func(s *Shell, _ context.Context, _ []string) bool {
			s.printHelp()
			return true
		}},
		{name: "quit", aliases: []string{"q", "exit"}, usage: ":quit", help: "Leave the shell", run: func(s *Shell, _ context.Context, _ []string) bool {
			return s.session.Dirty() && !s.dialogs.Confirm("You have unsaved changes. Quit anyway?")
		}},
	}
}

func lookupCommand(name string) *command {
	for _, c := range commands {
		if c.name == name {
			return c
		}
		for _, a := range c.aliases {
			if a == name {
				return c
			}
		}
	}
	return nil
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

func (s *Shell) printHelp() {
	s.println("Lines not starting with \":\" are appended to the buffer (start with \"::\" for a literal colon).")
	s.println("")
	w := tabwriter.NewWriter(s.out, 0, 8, 2, ' ', 0)
	for _, c := range commands {
		_, _ = fmt.Fprintf(w, "  %s\t%s\n", c.usage, c.help)
	}
	_ = w.Flush()
}

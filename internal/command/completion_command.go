package command

import (
	"fmt"
	"io"
	"strings"
)

// filesSubcommands are the subcommands of the files command, for completion.
var filesSubcommands = []string{"ls", "cat", "rm", "import", "export"}

// configSubcommands are the subcommands of the config command.
var configSubcommands = []string{"get", "set", "unset", "validate", "schema"}

// CompletionCommand generates shell completion scripts.
type CompletionCommand struct {
	*BaseCommand
	registry *Registry
}

// NewCompletionCommand creates a new completion command.
func NewCompletionCommand(registry *Registry) *CompletionCommand {
	return &CompletionCommand{
		BaseCommand: NewBaseCommand(
			"completion",
			"Generate shell completion scripts",
			"completion [bash|zsh|fish]",
		),
		registry: registry,
	}
}

// Execute generates the completion script for the given shell, bash by
// default.
func (c *CompletionCommand) Execute(args []string, stdout, stderr io.Writer) error {
	if len(args) > 1 {
		_, _ = fmt.Fprintf(stderr, "Too many arguments: %v\n", args[1:])
		_, _ = fmt.Fprintln(stderr, "Usage: jsx completion [bash|zsh|fish]")
		return fmt.Errorf("too many arguments")
	}
	sh := "bash"
	if len(args) > 0 {
		sh = strings.ToLower(args[0])
	}

	var script string
	switch sh {
	case "bash":
		script = c.bash()
	case "zsh":
		script = c.zsh()
	case "fish":
		script = c.fish()
	default:
		_, _ = fmt.Fprintf(stderr, "Unsupported shell: %s\n", sh)
		_, _ = fmt.Fprintln(stderr, "Supported shells: bash, zsh, fish")
		return fmt.Errorf("unsupported shell: %s", sh)
	}
	_, err := io.WriteString(stdout, script)
	return err
}

// Workspace file names are listed by "jsx files ls" with the size column
// cut off, so completion tracks the configured store.
const listNamesCmd = `jsx files ls 2>/dev/null | sed -e 's/^. //' -e 's/  *[0-9]* bytes.*$//'`

func (c *CompletionCommand) bash() string {
	return fmt.Sprintf(`# bash completion for jsx

_jsx_completion() {
    local cur prev
    COMPREPLY=()
    cur="${COMP_WORDS[COMP_CWORD]}"
    prev="${COMP_WORDS[COMP_CWORD-1]}"

    if [[ ${COMP_CWORD} -eq 1 ]]; then
        COMPREPLY=($(compgen -W "%s" -- "${cur}"))
        return 0
    fi

    case "${prev}" in
        completion)
            COMPREPLY=($(compgen -W "bash zsh fish" -- "${cur}"))
            ;;
        files)
            COMPREPLY=($(compgen -W "%s" -- "${cur}"))
            ;;
        config)
            COMPREPLY=($(compgen -W "%s" -- "${cur}"))
            ;;
        run|cat|rm|export|-open)
            local IFS=$'\n'
            COMPREPLY=($(compgen -W "$(%s)" -- "${cur}"))
            ;;
        *)
            COMPREPLY=($(compgen -f -- "${cur}"))
            ;;
    esac
    return 0
}

complete -F _jsx_completion jsx

# Install with: source <(jsx completion bash)
`, strings.Join(c.registry.List(), " "),
		strings.Join(filesSubcommands, " "),
		strings.Join(configSubcommands, " "),
		listNamesCmd)
}

func (c *CompletionCommand) zsh() string {
	var commands strings.Builder
	for _, name := range c.registry.List() {
		if cmd, err := c.registry.Get(name); err == nil {
			fmt.Fprintf(&commands, "                '%s:%s'\n", name, zshEscape(cmd.Description()))
		}
	}
	return fmt.Sprintf(`#compdef jsx

_jsx() {
    local state
    _arguments -C '1: :->commands' '*: :->args' && return 0

    case "$state" in
        commands)
            local commands
            commands=(
%s            )
            _describe 'commands' commands
            ;;
        args)
            case ${words[2]} in
                completion) _values 'shell' bash zsh fish ;;
                files)
                    if (( CURRENT == 3 )); then
                        _values 'subcommand' %s
                    else
                        _values 'file' ${(f)"$(%s)"}
                    fi
                    ;;
                config) _values 'subcommand' %s ;;
                run) _values 'file' ${(f)"$(%s)"} ;;
                *) _files ;;
            esac
            ;;
    esac
}

_jsx "$@"

# Install with: source <(jsx completion zsh)
`, commands.String(),
		strings.Join(filesSubcommands, " "),
		listNamesCmd,
		strings.Join(configSubcommands, " "),
		listNamesCmd)
}

func (c *CompletionCommand) fish() string {
	var b strings.Builder
	b.WriteString("# fish completion for jsx\n\n")
	for _, name := range c.registry.List() {
		if cmd, err := c.registry.Get(name); err == nil {
			fmt.Fprintf(&b, "complete -c jsx -n '__fish_use_subcommand' -a '%s' -d '%s'\n",
				name, fishEscape(cmd.Description()))
		}
	}
	fmt.Fprintf(&b, "complete -c jsx -n '__fish_seen_subcommand_from completion' -a 'bash zsh fish'\n")
	fmt.Fprintf(&b, "complete -c jsx -n '__fish_seen_subcommand_from files' -a '%s'\n", strings.Join(filesSubcommands, " "))
	fmt.Fprintf(&b, "complete -c jsx -n '__fish_seen_subcommand_from config' -a '%s'\n", strings.Join(configSubcommands, " "))
	fmt.Fprintf(&b, "complete -c jsx -n '__fish_seen_subcommand_from run cat rm export' -f -a '(%s)'\n", fishEscape(listNamesCmd))
	b.WriteString("\n# Install with: jsx completion fish > ~/.config/fish/completions/jsx.fish\n")
	return b.String()
}

func zshEscape(s string) string {
	return strings.NewReplacer("'", `'\''`, ":", `\:`).Replace(s)
}

// fishEscape escapes s for a single-quoted fish string.
func fishEscape(s string) string {
	return strings.NewReplacer(`\`, `\\`, "'", `\'`).Replace(s)
}

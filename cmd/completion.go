package cmd

import (
	"fmt"
	"os"
)

// Completion outputs shell completion scripts
func Completion(shell string) {
	script, ok := completionScript(shell)
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown shell: %s\nSupported: bash, zsh, fish\n", shell)
		os.Exit(1)
	}
	fmt.Print(script)
}

func completionScript(shell string) (string, bool) {
	switch shell {
	case "bash":
		return bashCompletion, true
	case "zsh":
		return zshCompletion, true
	case "fish":
		return fishCompletion, true
	}
	return "", false
}

// Hidden IDs are only offered when CLOAK_PASSWORD is set; stdin is closed so
// the password prompt fails instead of blocking the shell.
const bashCompletion = `_cloak() {
    local cur prev words cword
    _init_completion || return

    local commands="init level hide unhide rm open diff ls status check purge key help completion"

    if [[ $cword -eq 1 ]]; then
        COMPREPLY=($(compgen -W "$commands" -- "$cur"))
        return
    fi

    local cmd="${words[1]}"
    case "$cmd" in
        init)
            COMPREPLY=($(compgen -W "--level" -- "$cur"))
            ;;
        level)
            COMPREPLY=($(compgen -W "fast-hide advanced" -- "$cur"))
            ;;
        hide)
            if [[ "$cur" == -* ]]; then
                COMPREPLY=($(compgen -W "-r --remove --keep" -- "$cur"))
            else
                _filedir
            fi
            ;;
        unhide|rm|open|diff)
            local ids
            ids=$(cloak ls -q </dev/null 2>/dev/null)
            COMPREPLY=($(compgen -W "$ids" -- "$cur"))
            ;;
        check)
            COMPREPLY=($(compgen -W "--prune" -- "$cur"))
            ;;
        help)
            COMPREPLY=($(compgen -W "$commands" -- "$cur"))
            ;;
        completion)
            COMPREPLY=($(compgen -W "bash zsh fish" -- "$cur"))
            ;;
    esac
}

complete -F _cloak cloak
`

const zshCompletion = `#compdef cloak

_cloak() {
    local -a commands
    commands=(
        'init:Set the master password and security level'
        'level:Show or change the security level'
        'hide:Hide files or directories in the vault'
        'unhide:Restore hidden items to their original paths'
        'rm:Permanently delete hidden items'
        'open:View a hidden item without unhiding it'
        'diff:Compare a hidden item with the file on disk'
        'ls:List hidden items'
        'status:Show vault status'
        'check:Find entries and vault objects that disagree'
        'purge:Remove staged plaintext'
        'key:Show keyring status'
        'help:Show help for a command'
        'completion:Generate shell completions'
    )

    _arguments -C \
        '1: :->command' \
        '*: :->args'

    case "$state" in
        command)
            _describe -t commands 'cloak commands' commands
            ;;
        args)
            case "${words[2]}" in
                init)
                    _arguments '--level[Security level]:level:(fast-hide advanced)'
                    ;;
                level)
                    _values 'level' fast-hide advanced
                    ;;
                hide)
                    _arguments \
                        '-r[Delete originals after an advanced hide]' \
                        '--remove[Delete originals after an advanced hide]' \
                        '--keep[Keep originals after an advanced hide]' \
                        '*:file:_files'
                    ;;
                unhide|rm|open|diff)
                    _arguments '*:hidden item:_cloak_ids'
                    ;;
                check)
                    _arguments '--prune[Drop entries without a vault object]'
                    ;;
                help)
                    _describe -t commands 'cloak commands' commands
                    ;;
                completion)
                    _values 'shell' bash zsh fish
                    ;;
            esac
            ;;
    esac
}

_cloak_ids() {
    local -a ids
    ids=(${(f)"$(cloak ls -q </dev/null 2>/dev/null)"})
    _describe -t ids 'hidden items' ids
}

_cloak "$@"
`

const fishCompletion = `# cloak fish completions

set -l commands init level hide unhide rm open diff ls status check purge key help completion

complete -c cloak -f

# Commands
complete -c cloak -n "not __fish_seen_subcommand_from $commands" -a init -d 'Set master password and level'
complete -c cloak -n "not __fish_seen_subcommand_from $commands" -a level -d 'Show or change security level'
complete -c cloak -n "not __fish_seen_subcommand_from $commands" -a hide -d 'Hide files or directories'
complete -c cloak -n "not __fish_seen_subcommand_from $commands" -a unhide -d 'Restore hidden items'
complete -c cloak -n "not __fish_seen_subcommand_from $commands" -a rm -d 'Delete hidden items'
complete -c cloak -n "not __fish_seen_subcommand_from $commands" -a open -d 'View a hidden item'
complete -c cloak -n "not __fish_seen_subcommand_from $commands" -a diff -d 'Compare hidden with on-disk'
complete -c cloak -n "not __fish_seen_subcommand_from $commands" -a ls -d 'List hidden items'
complete -c cloak -n "not __fish_seen_subcommand_from $commands" -a status -d 'Show vault status'
complete -c cloak -n "not __fish_seen_subcommand_from $commands" -a check -d 'Check vault consistency'
complete -c cloak -n "not __fish_seen_subcommand_from $commands" -a purge -d 'Remove staged plaintext'
complete -c cloak -n "not __fish_seen_subcommand_from $commands" -a key -d 'Show keyring status'
complete -c cloak -n "not __fish_seen_subcommand_from $commands" -a help -d 'Show help'
complete -c cloak -n "not __fish_seen_subcommand_from $commands" -a completion -d 'Generate completions'

# init and level
complete -c cloak -n "__fish_seen_subcommand_from init" -l level -x -a "fast-hide advanced"
complete -c cloak -n "__fish_seen_subcommand_from level" -a "fast-hide advanced"

# hide flags and files
complete -c cloak -n "__fish_seen_subcommand_from hide" -s r -l remove -d 'Delete originals'
complete -c cloak -n "__fish_seen_subcommand_from hide" -l keep -d 'Keep originals'
complete -c cloak -n "__fish_seen_subcommand_from hide" -F

# hidden item IDs
complete -c cloak -n "__fish_seen_subcommand_from unhide rm open diff" -a "(cloak ls -q </dev/null 2>/dev/null)"

# check
complete -c cloak -n "__fish_seen_subcommand_from check" -l prune -d 'Drop entries without a vault object'

# help completions
complete -c cloak -n "__fish_seen_subcommand_from help" -a "$commands"

# completion completions
complete -c cloak -n "__fish_seen_subcommand_from completion" -a "bash zsh fish"
`

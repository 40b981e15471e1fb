package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/illarion/cloak/cmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "init":
		runInit(ctx, os.Args[2:])
	case "level":
		runLevel(ctx, os.Args[2:])
	case "hide":
		runHide(ctx, os.Args[2:])
	case "unhide":
		runUnhide(ctx, os.Args[2:])
	case "rm":
		runRm(ctx, os.Args[2:])
	case "open":
		runOpen(ctx, os.Args[2:])
	case "diff":
		runDiff(ctx, os.Args[2:])
	case "ls":
		runLs(ctx, os.Args[2:])
	case "status":
		runStatus(ctx, os.Args[2:])
	case "check":
		runCheck(ctx, os.Args[2:])
	case "purge":
		runPurge(ctx, os.Args[2:])
	case "key":
		runKey(ctx, os.Args[2:])
	case "completion":
		runCompletion(ctx, os.Args[2:])
	case "help", "-h", "--help":
		if len(os.Args) <= 2 {
			printUsage()
			return
		}
		printCommandHelp(os.Args[2])
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func parse(fs *flag.FlagSet, args []string) {
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func firstArg(fs *flag.FlagSet) string {
	if fs.NArg() == 0 {
		return ""
	}
	return fs.Arg(0)
}

func runInit(_ context.Context, args []string) {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	level := fs.String("level", "", "Security level: fast-hide or advanced")
	parse(fs, args)

	cmd.Init(*level)
}

func runLevel(_ context.Context, args []string) {
	fs := flag.NewFlagSet("level", flag.ExitOnError)
	parse(fs, args)

	cmd.Level(firstArg(fs))
}

func runHide(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("hide", flag.ExitOnError)
	removeShort := fs.Bool("r", false, "Delete originals after an advanced hide without asking")
	removeLong := fs.Bool("remove", false, "Delete originals after an advanced hide without asking")
	keep := fs.Bool("keep", false, "Keep originals after an advanced hide without asking")
	parse(fs, args)

	cmd.Hide(ctx, fs.Args(), *removeShort || *removeLong, *keep)
}

func runUnhide(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("unhide", flag.ExitOnError)
	parse(fs, args)

	cmd.Unhide(ctx, fs.Args())
}

func runRm(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("rm", flag.ExitOnError)
	force := fs.Bool("f", false, "Delete without confirmation")
	parse(fs, args)

	cmd.Remove(ctx, fs.Args(), *force)
}

func runOpen(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("open", flag.ExitOnError)
	parse(fs, args)

	cmd.Open(ctx, firstArg(fs))
}

func runDiff(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("diff", flag.ExitOnError)
	parse(fs, args)

	cmd.Diff(ctx, firstArg(fs))
}

func runLs(_ context.Context, args []string) {
	fs := flag.NewFlagSet("ls", flag.ExitOnError)
	quiet := fs.Bool("q", false, "Print only IDs")
	parse(fs, args)

	cmd.Ls(*quiet)
}

func runStatus(_ context.Context, args []string) {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	parse(fs, args)

	cmd.Status()
}

func runCheck(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	prune := fs.Bool("prune", false, "Drop entries whose vault object is gone")
	parse(fs, args)

	cmd.Check(ctx, *prune)
}

func runPurge(_ context.Context, args []string) {
	fs := flag.NewFlagSet("purge", flag.ExitOnError)
	parse(fs, args)

	cmd.Purge()
}

func runKey(_ context.Context, args []string) {
	fs := flag.NewFlagSet("key", flag.ExitOnError)
	parse(fs, args)

	cmd.Key()
}

func runCompletion(_ context.Context, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: cloak completion <bash|zsh|fish>")
		os.Exit(1)
	}
	cmd.Completion(args[0])
}

func printUsage() {
	fmt.Println("cloak - Hide files and folders on this machine")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  cloak <command> [arguments]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  init        Set the master password and security level")
	fmt.Println("  level       Show or change the security level")
	fmt.Println("  hide        Hide files or directories in the vault")
	fmt.Println("  unhide      Restore hidden items to their original paths")
	fmt.Println("  rm          Permanently delete hidden items")
	fmt.Println("  open        View a hidden item without unhiding it")
	fmt.Println("  diff        Compare a hidden item with the file on disk")
	fmt.Println("  ls          List hidden items")
	fmt.Println("  status      Show vault status")
	fmt.Println("  check       Find entries and vault objects that disagree")
	fmt.Println("  purge       Remove staged plaintext")
	fmt.Println("  key         Show keyring status")
	fmt.Println("  completion  Generate shell completions")
	fmt.Println("  help        Show help for a command")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  cloak init --level advanced     # Set up with encryption")
	fmt.Println("  cloak hide ~/notes.txt          # Hide a file")
	fmt.Println("  cloak ls                        # List hidden items")
	fmt.Println("  cloak unhide 0199f3a2           # Restore by ID prefix")
	fmt.Println()
	fmt.Println("The master password is read from CLOAK_PASSWORD or prompted for.")
	fmt.Println("Use 'cloak help <command>' for more information about a command.")
}

func printCommandHelp(command string) {
	switch command {
	case "init":
		fmt.Println("cloak init [--level fast-hide|advanced]")
		fmt.Println()
		fmt.Println("Sets the master password and the security level used for new hides.")
		fmt.Println("Prompts for the level when --level is not given.")
		fmt.Println("Fails if cloak is already initialized.")
		fmt.Println()
		fmt.Println("Levels:")
		fmt.Println("  fast-hide   Move items into the vault under random names")
		fmt.Println("  advanced    Encrypt regular files with AES-256-GCM")
	case "level":
		fmt.Println("cloak level [fast-hide|advanced]")
		fmt.Println()
		fmt.Println("Without an argument prints the current level.")
		fmt.Println("Items already hidden keep the level they were hidden with.")
	case "hide":
		fmt.Println("cloak hide [-r|--remove] [--keep] <path> [path...]")
		fmt.Println()
		fmt.Println("Hides files or directories at the current security level.")
		fmt.Println("Fast-hide accepts files, directories and symlinks.")
		fmt.Println("Advanced accepts regular files and leaves the originals in place")
		fmt.Println("until you confirm their deletion.")
		fmt.Println("Supports glob patterns for multiple files.")
		fmt.Println()
		fmt.Println("Flags:")
		fmt.Println("  -r, --remove    Delete originals after an advanced hide without asking")
		fmt.Println("  --keep          Keep originals after an advanced hide without asking")
		fmt.Println()
		fmt.Println("Examples:")
		fmt.Println("  cloak hide report.pdf")
		fmt.Println("  cloak hide -r \"secrets/*.txt\"")
	case "unhide":
		fmt.Println("cloak unhide <id> [id...]")
		fmt.Println()
		fmt.Println("Restores hidden items to their original paths.")
		fmt.Println("Missing parent directories are recreated.")
		fmt.Println("Fails for an item whose original path is occupied.")
	case "rm":
		fmt.Println("cloak rm [-f] <id> [id...]")
		fmt.Println()
		fmt.Println("Permanently deletes hidden items. Asks for each item unless -f is given.")
	case "open":
		fmt.Println("cloak open <id>")
		fmt.Println()
		fmt.Println("Copies or decrypts a hidden item into the staging area and opens it")
		fmt.Println("with the system viewer. The staged copy is removed when you press")
		fmt.Println("Enter, or after the grace period when not run from a terminal.")
	case "diff":
		fmt.Println("cloak diff <id>")
		fmt.Println()
		fmt.Println("Shows a unified diff between a hidden file and the file currently at")
		fmt.Println("its original path.")
	case "ls":
		fmt.Println("cloak ls [-q]")
		fmt.Println()
		fmt.Println("Lists hidden items with short ID, mode, name, size and original path.")
		fmt.Println("With -q prints only the short IDs.")
	case "status":
		fmt.Println("cloak status")
		fmt.Println()
		fmt.Println("Shows the vault location, security level and hidden items.")
	case "check":
		fmt.Println("cloak check [--prune]")
		fmt.Println()
		fmt.Println("Reports entries whose vault object is gone and vault objects that no")
		fmt.Println("entry refers to. With --prune drops the former. Orphaned objects are")
		fmt.Println("only reported.")
	case "purge":
		fmt.Println("cloak purge")
		fmt.Println()
		fmt.Println("Removes any staged plaintext left behind by 'cloak open'.")
		fmt.Println("Does not require a password.")
	case "key":
		fmt.Println("cloak key")
		fmt.Println()
		fmt.Println("Shows whether the encryption key and master credential are present")
		fmt.Println("in the system keyring. Does not require a password.")
	case "completion":
		fmt.Println("cloak completion <bash|zsh|fish>")
		fmt.Println()
		fmt.Println("Outputs shell completion script for the specified shell.")
		fmt.Println()
		fmt.Println("Setup:")
		fmt.Println("  # Bash - add to ~/.bashrc")
		fmt.Println("  eval \"$(cloak completion bash)\"")
		fmt.Println()
		fmt.Println("  # Zsh - add to ~/.zshrc")
		fmt.Println("  eval \"$(cloak completion zsh)\"")
		fmt.Println()
		fmt.Println("  # Fish - add to ~/.config/fish/config.fish")
		fmt.Println("  cloak completion fish | source")
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
	}
}

package service

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"postsapi/app/repositories"

	"github.com/dgraph-io/badger/v4"
)

// DefaultBackupDir receives backups written without an explicit file name.
const DefaultBackupDir = "data/backups"

// Commands implements the db maintenance subcommands for the Badger store.
type Commands struct {
	DBPath    string
	BackupDir string
	In        io.Reader
	Out       io.Writer

	now func() time.Time
}

// NewCommands returns Commands for the database at dbPath using stdin and stdout.
func NewCommands(dbPath string) *Commands {
	return &Commands{
		DBPath:    dbPath,
		BackupDir: DefaultBackupDir,
		In:        os.Stdin,
		Out:       os.Stdout,
		now:       time.Now,
	}
}

// Run handles db subcommands and returns an exit code.
func (c *Commands) Run(args []string) int {
	if len(args) < 1 {
		c.printHelp()
		return 1
	}

	cmd, rest := args[0], args[1:]
	isYes := func(arg string) bool { return arg == "--yes" }
	yes := slices.ContainsFunc(rest, isYes)
	rest = slices.DeleteFunc(slices.Clone(rest), isYes)

	var err error
	switch cmd {
	case "init":
		err = c.initDB()
	case "clean":
		err = c.clean(yes)
	case "backup":
		file := ""
		if len(rest) > 0 {
			file = rest[0]
		}
		err = c.backup(file)
	case "restore":
		if len(rest) < 1 {
			fmt.Fprintln(c.Out, "Error: backup file path required for restore")
			return 1
		}
		err = c.restore(rest[0], yes)
	case "help":
		c.printHelp()
		return 0
	default:
		fmt.Fprintf(c.Out, "Unknown db command: %s\n\n", cmd)
		c.printHelp()
		return 1
	}

	if errors.Is(err, errCancelled) {
		fmt.Fprintln(c.Out, "Operation cancelled")
		return 1
	}
	if err != nil {
		fmt.Fprintf(c.Out, "Error: %v\n", err)
		return 1
	}
	return 0
}

var errCancelled = errors.New("cancelled")

func (c *Commands) printHelp() {
	fmt.Fprintln(c.Out, `Usage: postsapi db <command>

Commands:
  init                     Initialize a new empty database
  clean [--yes]            Remove the database
  backup [file]            Write a backup (default: data/backups/backup_<unix>.db)
  restore <file> [--yes]   Replace the database with a backup
  help                     Display this help message`)
}

// initDB creates an empty database.
func (c *Commands) initDB() error {
	if exists(c.DBPath) {
		fmt.Fprintln(c.Out, "Database already exists. Use 'clean' first if you want to reinitialize.")
		return nil
	}

	db, err := repositories.OpenBadger(c.DBPath)
	if err != nil {
		return err
	}
	if err := db.Close(); err != nil {
		return err
	}

	fmt.Fprintf(c.Out, "Database initialized at %s\n", c.DBPath)
	return nil
}

// clean removes the database.
func (c *Commands) clean(yes bool) error {
	if !exists(c.DBPath) {
		fmt.Fprintln(c.Out, "Database is already clean (does not exist)")
		return nil
	}

	if !yes && !c.confirm("Are you sure you want to clean the database? This cannot be undone.") {
		return errCancelled
	}

	if err := os.RemoveAll(c.DBPath); err != nil {
		return fmt.Errorf("failed to clean database: %w", err)
	}
	fmt.Fprintln(c.Out, "Database cleaned successfully")
	return nil
}

// backup writes a full backup of the database to file.
func (c *Commands) backup(file string) error {
	if !exists(c.DBPath) {
		return errors.New("no database exists to backup")
	}

	if file == "" {
		file = filepath.Join(c.BackupDir, fmt.Sprintf("backup_%d.db", c.now().Unix()))
	}
	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		return fmt.Errorf("failed to create backup directory: %w", err)
	}

	db, err := repositories.OpenBadger(c.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	f, err := os.Create(file)
	if err != nil {
		return fmt.Errorf("failed to create backup file: %w", err)
	}
	if err := writeBackup(db, f); err != nil {
		return err
	}

	fmt.Fprintf(c.Out, "Database backed up successfully to %s\n", file)
	return nil
}

// writeBackup streams a full backup into w and closes it, returning the close error.
func writeBackup(db *badger.DB, w io.WriteCloser) error {
	if _, err := db.Backup(w, 0); err != nil {
		w.Close()
		return fmt.Errorf("failed to backup database: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to write backup file: %w", err)
	}
	return nil
}

// restore replaces the database with the contents of file.
func (c *Commands) restore(file string, yes bool) error {
	fi, err := os.Stat(file)
	if err != nil {
		return fmt.Errorf("backup file does not exist: %s", file)
	}
	if fi.Size() == 0 {
		return fmt.Errorf("backup file is empty: %s", file)
	}

	if exists(c.DBPath) {
		if !yes && !c.confirm("Existing database found. Do you want to replace it?") {
			return errCancelled
		}
		if err := os.RemoveAll(c.DBPath); err != nil {
			return fmt.Errorf("failed to remove existing database: %w", err)
		}
	}

	db, err := repositories.OpenBadger(c.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	f, err := os.Open(file)
	if err != nil {
		return fmt.Errorf("failed to open backup file: %w", err)
	}
	defer f.Close()

	if err := db.Load(f, 16); err != nil {
		return fmt.Errorf("failed to restore database: %w", err)
	}

	fmt.Fprintln(c.Out, "Database restored successfully")
	return nil
}

func (c *Commands) confirm(question string) bool {
	fmt.Fprintf(c.Out, "%s [y/N] ", question)
	scanner := bufio.NewScanner(c.In)
	if !scanner.Scan() {
		return false
	}
	answer := strings.TrimSpace(scanner.Text())
	return answer == "y" || answer == "Y"
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

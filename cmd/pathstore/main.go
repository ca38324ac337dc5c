// Command pathstore is an operator tool for file-backed pathstore databases.
//
// It opens a store described by a YAML manifest and runs one operation
// against it:
//
//	pathstore -manifest store.yaml get /login
//	pathstore -manifest store.yaml set /login '{"username":"a"}'
//	pathstore -manifest store.yaml push /restaurants '{"name":"r3"}'
//	pathstore -manifest store.yaml push /teams '"v1"' alice
//	pathstore -manifest store.yaml merge /login '{"username":"c"}'
//	pathstore -manifest store.yaml delete /teams alice
//	pathstore -manifest store.yaml exists /restaurants 2
//	pathstore -manifest store.yaml schema
//
// Data arguments are JSON. A locator argument is an array index when it
// parses as an integer, otherwise a dictionary key.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/pathstore/pathstore"
)

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "pathstore: %v\n", err)
		os.Exit(1)
	}
}

func mainImpl() error {
	manifestPath := flag.String("manifest", "pathstore.yaml", "Store manifest file")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	ll := &slog.LevelVar{}
	if err := ll.UnmarshalText([]byte(*logLevel)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", *logLevel, err)
	}
	logger := slog.New(tint.NewHandler(colorable.NewColorable(os.Stderr), &tint.Options{
		Level:      ll,
		TimeFormat: "15:04:05.000", // Like time.TimeOnly plus milliseconds.
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
	}))
	slog.SetDefault(logger)

	args := flag.Args()
	if len(args) == 0 {
		return fmt.Errorf("missing operation (get, set, push, merge, delete, exists, schema)")
	}

	store, err := pathstore.OpenManifest(*manifestPath)
	if err != nil {
		return err
	}
	slog.Debug("Opened store", "manifest", *manifestPath, "file", store.Filename())

	if err := run(store, args[0], args[1:]); err != nil {
		return err
	}
	// Covers stores whose manifest does not enable save_on_push.
	return store.Save(false)
}

func run(store *pathstore.Store, op string, args []string) error {
	switch op {
	case "get":
		path, loc, err := pathAndLocator(args, 1)
		if err != nil {
			return err
		}
		v, err := store.Get(path, loc...)
		if err != nil {
			return err
		}
		return printJSON(v)
	case "set":
		return mutate(store.Set, args)
	case "push":
		return mutate(store.Push, args)
	case "merge":
		return mutate(store.Merge, args)
	case "delete":
		path, loc, err := pathAndLocator(args, 1)
		if err != nil {
			return err
		}
		if err := store.Delete(path, loc...); err != nil {
			return err
		}
		slog.Info("Deleted", "path", path)
		return nil
	case "exists":
		path, loc, err := pathAndLocator(args, 1)
		if err != nil {
			return err
		}
		found, err := store.Exists(path, loc...)
		if err != nil {
			return err
		}
		fmt.Println(found)
		return nil
	case "schema":
		if len(args) != 0 {
			return fmt.Errorf("schema takes no arguments")
		}
		return printJSON(store.Schema())
	}
	return fmt.Errorf("unknown operation %q", op)
}

// mutate runs a write operation taking (path, data, locator?).
func mutate(op func(string, any, ...pathstore.Locator) error, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("need a path and a JSON data argument")
	}
	var data any
	if err := json.Unmarshal([]byte(args[1]), &data); err != nil {
		return fmt.Errorf("data is not valid JSON: %w", err)
	}
	loc, err := parseLocators(args[2:])
	if err != nil {
		return err
	}
	if err := op(args[0], data, loc...); err != nil {
		return err
	}
	slog.Info("Wrote", "path", args[0])
	return nil
}

// pathAndLocator parses a path followed by at most maxLoc locator arguments.
func pathAndLocator(args []string, maxLoc int) (string, []pathstore.Locator, error) {
	if len(args) < 1 {
		return "", nil, fmt.Errorf("need a path argument")
	}
	if len(args) > 1+maxLoc {
		return "", nil, fmt.Errorf("too many arguments")
	}
	loc, err := parseLocators(args[1:])
	if err != nil {
		return "", nil, err
	}
	return args[0], loc, nil
}

func parseLocators(args []string) ([]pathstore.Locator, error) {
	var loc []pathstore.Locator
	for _, arg := range args {
		if i, err := strconv.Atoi(arg); err == nil {
			loc = append(loc, pathstore.Index(i))
		} else {
			loc = append(loc, pathstore.Key(arg))
		}
	}
	return loc, nil
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to render result: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

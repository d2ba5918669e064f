// Command maiconf-check validates a bot configuration file and, on
// success, prints the resolved configuration as flat key = value lines.
// It never writes anything.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/charmbracelet/log"

	config "github.com/Mai-with-u/MaiBot"
	"github.com/Mai-with-u/MaiBot/official"
)

func main() {
	modelPath := flag.String("models", "", "model configuration file to check as well")
	quiet := flag.Bool("quiet", false, "suppress the resolved configuration listing")
	flag.Parse()

	logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: "maiconf-check"})
	config.SetLogger(logger)

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: maiconf-check [-models FILE] [-quiet] CONFIG_FILE")
		os.Exit(2)
	}
	path := flag.Arg(0)

	cfg, err := official.Load(path)
	if err != nil {
		reportError(logger, path, err)
		os.Exit(1)
	}
	logger.Info("configuration OK", "file", path, "bot", cfg.Bot.Nickname)

	if *modelPath != "" {
		models, err := official.LoadModels(*modelPath)
		if err != nil {
			reportError(logger, *modelPath, err)
			os.Exit(1)
		}
		logger.Info("model configuration OK", "file", *modelPath,
			"providers", len(models.APIProviders), "models", len(models.Models))
	}

	if !*quiet {
		printResolved(cfg)
	}
}

// reportError prints the failure with its field path when one is known.
func reportError(logger *log.Logger, path string, err error) {
	var le *config.LoadError
	if errors.As(err, &le) {
		logger.Error("configuration rejected", "file", path, "field", le.Path, "err", le.Err, "detail", le.Error())
		return
	}
	logger.Error("configuration rejected", "file", path, "err", err)
}

// printResolved dumps the validated record graph, defaults included, as
// sorted flat paths.
func printResolved(cfg *official.Config) {
	tree, err := official.Schema().Dump(cfg)
	if err != nil {
		return
	}
	flat := config.Flatten(tree)

	paths := make([]string, 0, len(flat))
	for p := range flat {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, p := range paths {
		fmt.Printf("%s = %v\n", p, flat[p])
	}
}

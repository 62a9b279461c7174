package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/quill-lang/quill/internal/cache"
	"github.com/quill-lang/quill/internal/config"
	"github.com/quill-lang/quill/pkg/quill"
)

var (
	write     = flag.Bool("w", false, "write result back to source files instead of stdout")
	check     = flag.Bool("check", false, "exit non-zero if any file is not in canonical form, print nothing")
	regen     = flag.Bool("regen", false, "regenerate (lossless round-trip) instead of full canonical formatting")
	assignIDs = flag.Bool("assign-ids", false, "fill empty chunk marker ids with fresh UUIDs (implies -regen)")
	useCache  = flag.Bool("cache", false, "use the formatter cache configured in quill.yaml")
)

func usage() {
	fmt.Fprintf(os.Stderr, "usage: quill [flags] [path ...]\n")
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()

	cfg, err := config.Load(".")
	if err != nil {
		fail("%v", err)
	}

	var store *cache.Cache
	if *useCache {
		store, err = cache.Open(cfg.CachePath)
		if err != nil {
			fail("%v", err)
		}
		defer store.Close()
	}

	paths := flag.Args()
	if len(paths) == 0 {
		paths = []string{"."}
	}

	exit := 0
	for _, path := range paths {
		files, err := sourceFiles(path)
		if err != nil {
			fail("%v", err)
		}
		for _, file := range files {
			changed, err := processFile(file, cfg, store)
			if err != nil {
				warn(cfg, "%s: %v", file, err)
				exit = 1
				continue
			}
			if changed && *check {
				fmt.Fprintf(os.Stderr, "%s: not formatted\n", file)
				exit = 1
			}
		}
	}
	os.Exit(exit)
}

func processFile(path string, cfg *config.Config, store *cache.Cache) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}
	source := string(data)

	// Assigned ids are fresh on every run, so that mode bypasses the cache.
	useStore := store != nil && !*assignIDs

	var out string
	if useStore {
		if cached, ok, err := store.Get(source); err == nil && ok {
			out = cached
		}
	}
	if out == "" {
		if *regen || *assignIDs {
			doc, err := quill.Parse(source)
			if err != nil {
				return false, err
			}
			if *assignIDs {
				doc.AssignChunkIDs()
			}
			text, diags := doc.Regenerate()
			for _, d := range diags {
				warn(cfg, "%s: %s", path, d)
			}
			out = text
		} else {
			text, err := quill.FormatIndent(source, cfg.Indent)
			if err != nil {
				return false, err
			}
			out = text
		}
		if useStore {
			if err := store.Put(source, out); err != nil {
				warn(cfg, "cache write failed: %v", err)
			}
		}
	}

	changed := out != source
	if *check {
		return changed, nil
	}
	if *write {
		if !changed {
			return false, nil
		}
		info, err := os.Stat(path)
		if err != nil {
			return changed, err
		}
		return changed, os.WriteFile(path, []byte(out), info.Mode().Perm())
	}
	fmt.Print(out)
	return changed, nil
}

// sourceFiles expands path into the list of Quill source files under it.
func sourceFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}
	var files []string
	err = filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && p != path {
				return filepath.SkipDir
			}
			return nil
		}
		if isSourceFile(p) {
			files = append(files, p)
		}
		return nil
	})
	return files, err
}

func isSourceFile(path string) bool {
	for _, ext := range config.SourceFileExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "quill: "+format+"\n", args...)
	os.Exit(2)
}

// warn prints a diagnostic, colored when the config and terminal allow it.
func warn(cfg *config.Config, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if colorEnabled(cfg) {
		msg = "\x1b[33m" + msg + "\x1b[0m"
	}
	fmt.Fprintln(os.Stderr, msg)
}

func colorEnabled(cfg *config.Config) bool {
	switch cfg.Color {
	case "always":
		return true
	case "never":
		return false
	}
	return isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
}

//go:build ignore

// build.go minifies the static assets in place before a release build and
// restores them afterwards:
//
//	go run build.go -release && go build -tags release && go run build.go -clean
package main

import (
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/js"
)

const (
	staticDir    = "static"
	backupSuffix = ".orig"
)

var (
	m          = minify.New()
	mediaTypes = map[string]string{
		".css": "text/css",
		".js":  "text/javascript",
	}
)

func init() {
	m.AddFunc("text/css", css.Minify)
	m.AddFunc("text/javascript", js.Minify)
}

func main() {
	release := flag.Bool("release", false, "Process assets for release")
	clean := flag.Bool("clean", false, "Clean processed assets and restore original files")
	flag.Parse()

	if *release && *clean {
		log.Fatal("Cannot use -release and -clean flags simultaneously.")
	}

	switch {
	case *release:
		fmt.Println("Processing assets for release...")
		if err := processAssets(); err != nil {
			log.Fatalf("Failed to process assets for release: %v", err)
		}
		fmt.Println("Assets processed successfully.")
	case *clean:
		fmt.Println("Cleaning up processed assets...")
		if err := cleanupAssets(); err != nil {
			log.Fatalf("Failed to clean up assets: %v", err)
		}
		fmt.Println("Cleanup complete.")
	default:
		fmt.Println("No action specified. Use -release to process assets or -clean to clean up.")
	}
}

func processAssets() error {
	return filepath.WalkDir(staticDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		mediaType, ok := mediaTypes[filepath.Ext(path)]
		if !ok {
			return nil
		}
		if _, err := os.Stat(path + backupSuffix); err == nil {
			return fmt.Errorf("%s was already processed, run -clean first", path)
		}

		src, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		out, err := m.Bytes(mediaType, src)
		if err != nil {
			return fmt.Errorf("minify %s: %w", path, err)
		}
		if err := os.WriteFile(path+backupSuffix, src, 0o644); err != nil {
			return err
		}
		fmt.Printf("  %s: %d -> %d bytes\n", path, len(src), len(out))
		return os.WriteFile(path, out, 0o644)
	})
}

func cleanupAssets() error {
	return filepath.WalkDir(staticDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || filepath.Ext(path) != backupSuffix {
			return err
		}
		return os.Rename(path, path[:len(path)-len(backupSuffix)])
	})
}

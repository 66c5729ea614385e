package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	j "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	jsonmodel "github.com/reoring/jsonmodel"
	"github.com/reoring/jsonmodel/config"
	"github.com/reoring/jsonmodel/registry"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	sub := os.Args[1]
	switch sub {
	case "get":
		getCmd(os.Args[2:])
	case "set":
		setCmd(os.Args[2:])
	case "paths":
		pathsCmd(os.Args[2:])
	case "meta":
		metaCmd(os.Args[2:])
	case "validate":
		validateCmd(os.Args[2:])
	case "inspect":
		inspectCmd(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `jsonmodel CLI

Usage:
  jsonmodel get -f doc.json -p /user/name
  jsonmodel set -f doc.json -p /user/name -v '"Jane"' [-o out.json]
  jsonmodel paths -f doc.yaml
  jsonmodel meta -f doc.json
  jsonmodel validate -c models.yaml
  jsonmodel inspect -c models.yaml [-ns app]

Notes:
  - Documents are read as YAML when the extension is .yaml or .yml, JSON otherwise.
  - set parses -v as JSON and falls back to a plain string.`)
}

func getCmd(args []string) {
	fs := flag.NewFlagSet("get", flag.ExitOnError)
	var file, path string
	fs.StringVar(&file, "f", "", "document file")
	fs.StringVar(&path, "p", "/", "path to read")
	verbose := fs.Bool("v", false, "enable debug logs")
	_ = fs.Parse(args)
	if file == "" {
		fs.Usage()
		os.Exit(2)
	}
	setupLogging(*verbose)

	m := loadDoc(file)
	v, ok := m.Get(path)
	if !ok {
		fatalf("%s: %s", path, m.Lookup(path).Status)
	}
	printJSON(v)
}

func setCmd(args []string) {
	fs := flag.NewFlagSet("set", flag.ExitOnError)
	var file, path, raw, out string
	fs.StringVar(&file, "f", "", "document file")
	fs.StringVar(&path, "p", "", "path to write")
	fs.StringVar(&raw, "v", "", "value as JSON")
	fs.StringVar(&out, "o", "", "output file (stdout when empty)")
	_ = fs.Parse(args)
	if file == "" || path == "" {
		fs.Usage()
		os.Exit(2)
	}
	setupLogging(false)

	m := loadDoc(file)
	if err := m.Set(path, parseValue(raw)); err != nil {
		fatalf("set %s: %v", path, err)
	}
	var b []byte
	var err error
	if isYAML(out) || (out == "" && isYAML(file)) {
		b, err = m.ToYAML()
	} else {
		b, err = m.ToJSON()
		b = append(b, '\n')
	}
	if err != nil {
		fatalf("encode: %v", err)
	}
	if out == "" {
		_, _ = os.Stdout.Write(b)
		return
	}
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		fatalf("creating output dir: %v", err)
	}
	if err := os.WriteFile(out, b, 0o644); err != nil {
		fatalf("writing output: %v", err)
	}
}

func pathsCmd(args []string) {
	fs := flag.NewFlagSet("paths", flag.ExitOnError)
	var file string
	fs.StringVar(&file, "f", "", "document file")
	_ = fs.Parse(args)
	if file == "" {
		fs.Usage()
		os.Exit(2)
	}
	setupLogging(false)
	for _, p := range loadDoc(file).Metadata().Paths {
		fmt.Println(p)
	}
}

func metaCmd(args []string) {
	fs := flag.NewFlagSet("meta", flag.ExitOnError)
	var file string
	fs.StringVar(&file, "f", "", "document file")
	_ = fs.Parse(args)
	if file == "" {
		fs.Usage()
		os.Exit(2)
	}
	setupLogging(false)
	md := loadDoc(file).Metadata()
	printYAML(map[string]any{
		"version":     md.Version.String(),
		"changeCount": md.ChangeCount,
		"size":        md.Size,
		"paths":       len(md.Paths),
	})
}

func validateCmd(args []string) {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	var cfgPath string
	fs.StringVar(&cfgPath, "c", "", "registry config file")
	verbose := fs.Bool("v", false, "enable debug logs")
	_ = fs.Parse(args)
	if cfgPath == "" {
		fs.Usage()
		os.Exit(2)
	}
	setupLogging(*verbose)

	r := loadRegistry(cfgPath)
	failed := 0
	for _, ns := range r.Namespaces() {
		mgr, _ := r.Get(ns)
		for _, name := range mgr.Names() {
			m, _ := mgr.Model(name)
			for _, it := range m.Issues() {
				failed++
				fmt.Printf("%s/%s %s: %s (%s)\n", ns, name, it.Path, it.Message, it.Code)
			}
		}
	}
	if failed > 0 {
		fatalf("%d issue(s)", failed)
	}
	fmt.Println("ok")
}

func inspectCmd(args []string) {
	fs := flag.NewFlagSet("inspect", flag.ExitOnError)
	var cfgPath, ns string
	fs.StringVar(&cfgPath, "c", "", "registry config file")
	fs.StringVar(&ns, "ns", "", "namespace to inspect (all when empty)")
	_ = fs.Parse(args)
	if cfgPath == "" {
		fs.Usage()
		os.Exit(2)
	}
	setupLogging(false)

	r := loadRegistry(cfgPath)
	if ns == "" {
		if err := r.DumpState(os.Stdout); err != nil {
			fatalf("dump: %v", err)
		}
		return
	}
	in, err := r.Inspect(ns)
	if err != nil {
		fatalf("%v", err)
	}
	printYAML(in)
}

func loadDoc(file string) *jsonmodel.Model {
	b, err := os.ReadFile(file)
	if err != nil {
		fatalf("reading %s: %v", file, err)
	}
	m := jsonmodel.New(nil, jsonmodel.Options{EnableLogging: true})
	if isYAML(file) {
		err = m.FromYAML(b)
	} else {
		err = m.FromJSON(b)
	}
	if err != nil {
		fatalf("%s: %v", file, err)
	}
	return m
}

func loadRegistry(path string) *registry.Registry {
	cfg, err := config.LoadFile(path)
	if err != nil {
		fatalf("%v", err)
	}
	r := registry.New()
	if err := cfg.Apply(r); err != nil {
		fatalf("apply %s: %v", path, err)
	}
	return r
}

func parseValue(raw string) any {
	var v any
	if err := j.Unmarshal([]byte(raw), &v); err != nil {
		return raw
	}
	return v
}

func isYAML(file string) bool {
	switch strings.ToLower(filepath.Ext(file)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

func printJSON(v any) {
	b, err := j.MarshalIndent(v, "", "  ")
	if err != nil {
		fatalf("encode: %v", err)
	}
	fmt.Println(string(b))
}

func printYAML(v any) {
	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		fatalf("encode: %v", err)
	}
	_ = enc.Close()
}

func setupLogging(verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}

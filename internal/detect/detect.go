// Package detect implements binary and shell discovery: a PATH scan for a
// fixed table of tool candidates grouped by category, with concurrent
// version probing (multiple invocation attempts, each bounded by a
// timeout).
package detect

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// BinaryReport is one candidate's detection outcome.
type BinaryReport struct {
	Name     string
	Category string
	Found    bool
	Path     string // ";"-joined when more than one PATH match
	Version  string
	Error    string
}

// ShellInfo describes one discovered login shell.
type ShellInfo struct {
	Name    string
	Path    string
	Version string
}

// candidateGroup is one category's list of tool names.
type candidateGroup struct {
	category string
	names    []string
}

// baseCandidateGroups mirrors the original detector's fixed table.
var baseCandidateGroups = []candidateGroup{
	{"package_managers", []string{"npm", "pip", "cargo", "dnf", "apt", "snap", "flatpak", "brew"}},
	{"rust_tools", []string{"cargo", "rustc", "rustfmt", "clippy-driver"}},
	{"python_tools", []string{"python", "python3", "pip", "pytest", "black", "ruff", "mypy"}},
	{"build_systems", []string{"make", "cmake", "ninja", "gradle", "maven", "mvn"}},
	{"c_cpp_tools", []string{"gcc", "g++", "clang", "gdb", "lldb"}},
	{"java_jvm_tools", []string{"java", "javac", "javadoc", "jar", "jarsigner", "jconsole", "jdeps", "jlink", "jshell", "kotlin", "kotlinc", "scala", "scalac", "groovy", "groovyc"}},
	{"maven_tools", []string{"mvn", "mvnw", "mvnd"}},
	{"node_js_tools", []string{"node", "deno", "bun", "npm", "yarn"}},
	{"go_tools", []string{"go", "gofmt"}},
	{"editors_dev", []string{"vim", "nvim", "emacs", "code", "zed"}},
	{"search_productivity", []string{"rg", "fd", "fzf", "jq", "bat", "tree", "exa"}},
	{"system_perf", []string{"htop", "ps", "top", "df", "du"}},
	{"containers", []string{"docker", "podman", "kubectl", "helm"}},
	{"networking", []string{"curl", "wget", "dig", "traceroute"}},
	{"security", []string{"openssl", "gpg", "ssh-keygen"}},
	{"databases", []string{"sqlite3", "psql", "mysql", "redis-cli"}},
	{"vcs", []string{"git", "gh"}},
}

// commonShells mirrors the original detector's well-known shell paths.
var commonShells = []struct{ path, name string }{
	{"/bin/bash", "bash"}, {"/usr/bin/bash", "bash"},
	{"/bin/zsh", "zsh"}, {"/usr/bin/zsh", "zsh"}, {"/usr/local/bin/zsh", "zsh"},
	{"/bin/fish", "fish"}, {"/usr/bin/fish", "fish"}, {"/usr/local/bin/fish", "fish"},
	{"/bin/sh", "sh"}, {"/usr/bin/sh", "sh"},
	{"/bin/dash", "dash"}, {"/bin/ksh", "ksh"}, {"/bin/tcsh", "tcsh"}, {"/bin/csh", "csh"},
}

type task struct{ category, name string }

// DetectBinaries scans PATH for every candidate in the (optionally
// filtered) category table and probes each match's version, bounded by
// maxConcurrency workers. When includeMissing is false, not-found
// candidates are dropped from the result.
func DetectBinaries(filterCategories []string, maxConcurrency int, versionTimeout time.Duration, includeMissing bool) []BinaryReport {
	filter := toFilterSet(filterCategories)

	var tasks []task
	for _, group := range baseCandidateGroups {
		if filter != nil && !filter[strings.ToLower(group.category)] {
			continue
		}
		for _, name := range group.names {
			tasks = append(tasks, task{category: group.category, name: name})
		}
	}

	if maxConcurrency < 1 {
		maxConcurrency = 1
	}

	results := make([]BinaryReport, len(tasks))
	sem := make(chan struct{}, maxConcurrency)
	var wg sync.WaitGroup
	for i, t := range tasks {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, t task) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = probeBinary(t, versionTimeout)
		}(i, t)
	}
	wg.Wait()

	sort.Slice(results, func(i, j int) bool {
		if results[i].Category != results[j].Category {
			return results[i].Category < results[j].Category
		}
		return results[i].Name < results[j].Name
	})

	if includeMissing {
		return results
	}
	filtered := results[:0]
	for _, r := range results {
		if r.Found {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

func probeBinary(t task, timeout time.Duration) BinaryReport {
	paths := whichAll(t.name)
	if len(paths) == 0 {
		return BinaryReport{Name: t.name, Category: t.category, Found: false}
	}

	version, err := detectVersion(paths[0], timeout)
	report := BinaryReport{
		Name:     t.name,
		Category: t.category,
		Found:    true,
		Path:     strings.Join(paths, ";"),
	}
	if err != nil {
		report.Error = err.Error()
	} else {
		report.Version = version
	}
	return report
}

func toFilterSet(categories []string) map[string]bool {
	if categories == nil {
		return nil
	}
	set := make(map[string]bool, len(categories))
	for _, c := range categories {
		set[strings.ToLower(c)] = true
	}
	return set
}

// DetectShells checks the well-known shell paths plus $SHELL and returns the
// ones that exist on disk, deduplicated by name.
func DetectShells() []ShellInfo {
	var shells []ShellInfo
	seen := make(map[string]bool)

	for _, cs := range commonShells {
		if seen[cs.name] {
			continue
		}
		if info, err := os.Stat(cs.path); err != nil || info.IsDir() {
			continue
		}
		seen[cs.name] = true
		version, _ := detectVersion(cs.path, 1500*time.Millisecond)
		shells = append(shells, ShellInfo{Name: cs.name, Path: cs.path, Version: version})
	}

	if userShell := os.Getenv("SHELL"); userShell != "" && !hasPath(shells, userShell) && !seen[filepath.Base(userShell)] {
		name := filepath.Base(userShell)
		version, _ := detectVersion(userShell, 1500*time.Millisecond)
		shells = append(shells, ShellInfo{Name: name, Path: userShell, Version: version})
	}

	return shells
}

func hasPath(shells []ShellInfo, path string) bool {
	for _, s := range shells {
		if s.Path == path {
			return true
		}
	}
	return false
}

func whichAll(name string) []string {
	var matches []string
	pathVar := os.Getenv("PATH")
	if pathVar == "" {
		return matches
	}
	for _, dir := range filepath.SplitList(pathVar) {
		candidate := filepath.Join(dir, name)
		if isExecutableFile(candidate) {
			matches = append(matches, candidate)
		}
	}
	return matches
}

var versionAttempts = [][]string{{"--version"}, {"version"}, {"-V"}}

func detectVersion(path string, timeout time.Duration) (string, error) {
	var lastErr error
	for _, args := range versionAttempts {
		line, err := probeVersion(path, args, timeout)
		if err == nil {
			return line, nil
		}
		lastErr = err
		if isTimeoutErr(err) {
			break
		}
	}
	return "", lastErr
}

func probeVersion(path string, args []string, timeout time.Duration) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, path, args...)
	out, err := cmd.CombinedOutput()
	if ctx.Err() == context.DeadlineExceeded {
		return "", timeoutError{timeout: timeout}
	}
	if err != nil {
		return "", err
	}

	line := firstNonEmptyLine(string(out))
	if line == "" {
		return "", errEmptyVersion
	}
	return line, nil
}

func firstNonEmptyLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed != "" {
			return trimmed
		}
	}
	return ""
}

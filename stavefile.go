//go:build stave

package main

import (
	"cmp"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/yaklabco/stave/pkg/sh"
	"github.com/yaklabco/stave/pkg/st"
	"github.com/yaklabco/stave/pkg/target"
)

const (
	binary    = "bin/volblock"
	smokeDir  = "testdata/smoke"
	coverFile = "coverage.out"
)

// Default target runs build.
var Default = Build

// Aliases for common targets.
var Aliases = map[string]any{
	"b":   Build,
	"t":   Test.Default,
	"s":   Smoke,
	"l":   Lint.Default,
	"c":   Check,
	"fmt": Lint.Fmt,
	"x":   CI.Cross,
}

type (
	Test  st.Namespace
	Lint  st.Namespace
	CI    st.Namespace
	Bench st.Namespace
)

// cgoEnv is the environment for anything that links the tree-sitter C parser.
func cgoEnv() map[string]string {
	return map[string]string{"CGO_ENABLED": "1"}
}

// Build compiles bin/volblock unless it is newer than every source.
func Build() error {
	rebuild, err := target.Dir(binary, "cmd/", "pkg/", "internal/", "go.mod", "go.sum")
	if err != nil {
		return err
	}
	if !rebuild {
		fmt.Println(binary, "is up to date")
		return nil
	}
	fmt.Println("Building volblock...")
	return sh.RunWithV(cgoEnv(), "go", "build", "-ldflags", ldflags(), "-o", binary, "./cmd/volblock")
}

// Smoke runs both passes in dry-run mode against testdata/smoke and fails if
// either one exits non-zero. The file tree is left untouched.
func Smoke() error {
	st.Deps(Build)
	for _, pass := range []string{"optnone", "volatilize"} {
		fmt.Printf("Smoke: %s --dry-run %s\n", pass, smokeDir)
		if err := sh.RunV(binary, pass, "--dry-run", "--summary", smokeDir); err != nil {
			return fmt.Errorf("smoke %s: %w", pass, err)
		}
	}
	return nil
}

// Check formats, lints, tests and smoke-tests in that order.
func Check() {
	st.SerialDeps(Lint.Fmt, Lint.Default, Test.Default, Smoke)
}

// Clean removes the binary and coverage output.
func Clean() error {
	for _, path := range []string{"bin", coverFile, "coverage.html"} {
		if err := sh.Rm(path); err != nil {
			return err
		}
	}
	return nil
}

// Install puts volblock in $GOBIN (or $GOPATH/bin).
func Install() error {
	fmt.Println("Installing volblock...")
	return sh.RunWithV(cgoEnv(), "go", "install", "-ldflags", ldflags(), "./cmd/volblock")
}

// Uninstall removes what Install put in place.
func Uninstall() error {
	path, err := installPath("volblock")
	if err != nil {
		return err
	}
	err = os.Remove(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		fmt.Println("volblock is not installed")
		return nil
	case err != nil:
		return fmt.Errorf("remove %s: %w", path, err)
	}
	fmt.Println("Removed", path)
	return nil
}

// Deps downloads and tidies modules.
func Deps() error {
	if err := sh.RunV("go", "mod", "download"); err != nil {
		return err
	}
	return sh.RunV("go", "mod", "tidy")
}

// Coverage writes coverage.html from a fresh test run.
func Coverage() error {
	st.Deps(Test.Default)
	return sh.RunV("go", "tool", "cover", "-html="+coverFile, "-o", "coverage.html")
}

// gotestsum runs the whole module under gotestsum with the given format.
func gotestsum(format string, extra ...string) error {
	procs := cmp.Or(os.Getenv("STAVE_NUM_PROCESSORS"), "4")
	args := []string{
		"tool", "gotestsum", "-f", format, "--",
		"-race", "-p", procs, "-parallel", procs,
		"-coverprofile=" + coverFile, "-covermode=atomic",
	}
	args = append(args, extra...)
	args = append(args, "./...")
	return sh.RunWithV(cgoEnv(), "go", args...)
}

// Default runs every test with the race detector and coverage.
func (Test) Default() error {
	fmt.Println("Running tests...")
	return gotestsum("pkgname-and-test-fails")
}

// Verbose is Default with per-test output.
func (Test) Verbose() error {
	return gotestsum("standard-verbose", "-v")
}

// Short skips the end-to-end command tests.
func (Test) Short() error {
	return gotestsum("pkgname-and-test-fails", "-short")
}

// Default runs golangci-lint and applies its fixes.
func (Lint) Default() error {
	return sh.RunV("golangci-lint", "run", "--fix", "./...")
}

// CI runs golangci-lint without fixing anything.
func (Lint) CI() error {
	return sh.RunV("golangci-lint", "run", "./...")
}

// Fmt rewrites Go sources with gofmt.
func (Lint) Fmt() error {
	return sh.RunV("gofmt", "-w", ".")
}

// FmtCheck lists files gofmt would change and fails if there are any.
func (Lint) FmtCheck() error {
	out, err := sh.Output("gofmt", "-l", ".")
	if err != nil {
		return fmt.Errorf("gofmt: %w", err)
	}
	if out != "" {
		return fmt.Errorf("unformatted files (run 'stave lint:fmt'):\n%s", out)
	}
	return nil
}

// Vet runs go vet with cgo enabled.
func (Lint) Vet() error {
	return sh.RunWithV(cgoEnv(), "go", "vet", "./...")
}

// Gate is everything CI requires before a merge.
func (CI) Gate() error {
	st.SerialDeps(
		Lint.FmtCheck,
		Lint.Vet,
		Lint.CI,
		Build,
		Test.Default,
		Smoke,
		CI.ModTidy,
		CI.Cross,
	)
	fmt.Println("CI gate passed")
	return nil
}

// ModTidy fails when go mod tidy would change go.mod or go.sum.
func (CI) ModTidy() error {
	files := []string{"go.mod", "go.sum"}
	before := make(map[string]string, len(files))
	for _, name := range files {
		data, err := os.ReadFile(name)
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}
		before[name] = string(data)
	}

	if err := sh.RunV("go", "mod", "tidy"); err != nil {
		return err
	}

	for _, name := range files {
		data, err := os.ReadFile(name)
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}
		if string(data) != before[name] {
			return fmt.Errorf("%s is not tidy; commit the result of 'go mod tidy'", name)
		}
	}
	return nil
}

// Cross type-checks the cgo-free packages for every release platform. The C
// front end needs cgo and is only built natively.
func (CI) Cross() error {
	platforms := []string{
		"linux/amd64", "linux/arm64",
		"darwin/amd64", "darwin/arm64",
		"windows/amd64", "freebsd/amd64",
	}
	args := []string{"build", "-o", os.DevNull, "./internal/rlimit/", "./internal/ui/pretty/", "./pkg/fsutil/"}
	for _, platform := range platforms {
		goos, goarch, _ := strings.Cut(platform, "/")
		fmt.Println("  cross", platform)
		env := map[string]string{"GOOS": goos, "GOARCH": goarch, "CGO_ENABLED": "0"}
		if err := sh.RunWith(env, "go", args...); err != nil {
			return fmt.Errorf("cross build %s: %w", platform, err)
		}
	}
	return nil
}

// Default runs every benchmark in the module.
func (Bench) Default() error {
	return sh.RunWithV(cgoEnv(), "go", "test", "-run=^$", "-bench=.", "-benchmem", "./...")
}

// Parser benchmarks the front end and type descriptor construction.
func (Bench) Parser() error {
	return sh.RunWithV(cgoEnv(), "go",
		"test", "-run=^$", "-bench=.", "-benchmem",
		"./pkg/parser/treesitter/", "./pkg/langdetect/", "./pkg/typedesc/",
	)
}

func git(args ...string) string {
	out, err := sh.Output("git", args...)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(out)
}

// ldflags injects version, commit and build date into cmd/volblock.
func ldflags() string {
	return fmt.Sprintf("-X main.version=%s -X main.commit=%s -X main.date=%s",
		cmp.Or(git("describe", "--tags", "--always", "--dirty"), "dev"),
		cmp.Or(git("rev-parse", "--short", "HEAD"), "none"),
		time.Now().UTC().Format(time.RFC3339),
	)
}

func installPath(name string) (string, error) {
	if gobin := os.Getenv("GOBIN"); gobin != "" {
		return filepath.Join(gobin, name), nil
	}
	gopath := os.Getenv("GOPATH")
	if gopath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("home directory: %w", err)
		}
		gopath = filepath.Join(home, "go")
	}
	return filepath.Join(gopath, "bin", name), nil
}

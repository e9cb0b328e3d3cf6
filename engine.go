package markupdocx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/qixing/markup-docx/internal/process"
	"github.com/qixing/markup-docx/internal/styles"
)

// Engine renders markup text into a document fragment.
type Engine interface {
	Render(ctx context.Context, text string, format Format) (*Fragment, error)
}

// CommandRunner abstracts command execution to enable testing without real
// subprocesses.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) (stdout string, stderr string, err error)
}

// ExecRunner implements CommandRunner using os/exec. The child runs in its
// own process group so a context cancellation kills the whole tree.
type ExecRunner struct{}

func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) (string, string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	process.SetGroup(cmd)
	cmd.Cancel = func() error {
		process.KillGroup(cmd.Process.Pid)
		return nil
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

// PandocEngine renders markup by invoking pandoc with -t docx and parsing
// the resulting file. The command line is configurable so wrappers like
// "pandoc --sandbox" work.
type PandocEngine struct {
	Runner  CommandRunner
	Command []string    // binary plus fixed leading args, default {"pandoc"}
	Styles  *styles.Map // style map used to interpret the output
	KeepDir string      // when set, rendered .docx files are copied here
}

// NewPandocEngine creates a PandocEngine with a real command runner and
// the default style map.
func NewPandocEngine() *PandocEngine {
	return &PandocEngine{
		Runner:  &ExecRunner{},
		Command: []string{"pandoc"},
		Styles:  styles.Default(),
	}
}

// Render converts markup text to a Fragment.
//
// The engine contract: write source.<ext> to a temp dir, run
// `pandoc -f <format> -t docx source.<ext> -o out.docx`, parse out.docx.
// A missing binary fails fast with ErrEngineNotFound; a non-zero exit
// surfaces the engine's stderr under ErrRenderFailed; a blown deadline
// maps to ErrRenderTimeout.
func (e *PandocEngine) Render(ctx context.Context, text string, format Format) (*Fragment, error) {
	if err := format.Validate(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrNoSelection
	}

	name := "pandoc"
	var fixed []string
	if len(e.Command) > 0 {
		name = e.Command[0]
		fixed = e.Command[1:]
	}
	if _, err := exec.LookPath(name); err != nil {
		return nil, fmt.Errorf("%w: %q (install pandoc or pass --engine)", ErrEngineNotFound, name)
	}

	dir, err := os.MkdirTemp("", "markup-docx-*")
	if err != nil {
		return nil, fmt.Errorf("creating temp dir: %w", err)
	}
	defer func() { _ = os.RemoveAll(dir) }()

	src := filepath.Join(dir, "source."+format.Ext())
	if err := os.WriteFile(src, []byte(text), 0o600); err != nil {
		return nil, fmt.Errorf("writing source file: %w", err)
	}
	out := filepath.Join(dir, "out.docx")

	args := append(append([]string{}, fixed...),
		"-f", string(format), "-t", "docx", src, "-o", out)
	_, stderr, err := e.Runner.Run(ctx, name, args...)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %v", ErrRenderTimeout, ctx.Err())
		}
		return nil, fmt.Errorf("%w: %s", ErrRenderFailed, engineMessage(stderr, err))
	}

	if e.KeepDir != "" {
		// Debugging aid; a failed copy must not fail the conversion.
		_ = copyFile(out, filepath.Join(e.KeepDir, "markup-docx-last.docx"))
	}

	m := e.Styles
	if m == nil {
		m = styles.Default()
	}
	return ReadFragmentFile(out, m)
}

// engineMessage prefers the engine's own diagnostics over the exec error.
func engineMessage(stderr string, err error) string {
	if msg := strings.TrimSpace(stderr); msg != "" {
		return msg
	}
	return err.Error()
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src) // #nosec G304 -- both paths are program-controlled
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0o600)
}

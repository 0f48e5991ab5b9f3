// Package compdb rewrites a compile_commands.json produced by UnrealBuildTool
// into one a clang based language server can use.
//
// The database is treated as line-oriented text. Only "file" and "command"
// lines are inspected; every other line is copied verbatim, and every command
// line yields exactly one output line so record order and count are kept.
package compdb

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"unreal_compilation_database/internal/cmdline"
	"unreal_compilation_database/internal/pathpolicy"
	"unreal_compilation_database/internal/rsp"
)

// Options configures one processing pass.
type Options struct {
	EngineRoot        string
	OutputDir         string // synthesized response files go here
	Dialect           pathpolicy.Dialect
	SkipEngineEntries bool
	Verbose           bool
	// Jobs bounds concurrent response file writes. Zero means runtime.NumCPU().
	Jobs int
	// Logger defaults to a no-op logger.
	Logger *zerolog.Logger
}

// Result is the outcome of a pass.
type Result struct {
	Text         string
	FilesWritten int
	Errors       []string
	Entries      int // command lines that belonged to a file entry
	Rewritten    int // command lines that were rewritten
}

// Success reports whether every entry was processed without error.
func (r *Result) Success() bool {
	return len(r.Errors) == 0
}

// Processor runs passes. It holds no state between passes.
type Processor struct {
	opts Options
}

func NewProcessor(opts Options) *Processor {
	if opts.Jobs <= 0 {
		opts.Jobs = runtime.NumCPU()
	}
	if opts.Logger == nil {
		nop := zerolog.Nop()
		opts.Logger = &nop
	}
	return &Processor{opts: opts}
}

// Process runs a single pass over the database at inputPath.
func Process(ctx context.Context, inputPath string, opts Options) (*Result, error) {
	return NewProcessor(opts).Process(ctx, inputPath)
}

// Process rewrites the database at inputPath. Failing to open the input or to
// create the output directory aborts the pass; failures of single entries are
// collected in Result.Errors.
func (p *Processor) Process(ctx context.Context, inputPath string) (*Result, error) {
	f, err := os.Open(inputPath)
	if err != nil {
		return nil, fmt.Errorf("unable to open compile database %s: %w", inputPath, err)
	}
	defer f.Close()
	return p.ProcessReader(ctx, f)
}

// job is the deferred file work of one entry.
type job struct {
	entry  int
	target string
	run    func() error
}

type jobResult struct {
	written bool
	err     error
}

// ProcessReader is Process over an already opened database.
func (p *Processor) ProcessReader(ctx context.Context, r io.Reader) (*Result, error) {
	if p.opts.OutputDir != "" {
		if err := os.MkdirAll(p.opts.OutputDir, 0o775); err != nil {
			return nil, fmt.Errorf("unable to create output directory %s: %w", p.opts.OutputDir, err)
		}
	}

	var (
		out  []string
		jobs []job
		sc   Scanner
		res  Result
		br   = bufio.NewReaderSize(r, 256*1024)
		log  = p.opts.Logger
	)
	for {
		line, err := br.ReadString('\n')
		if len(line) > 0 {
			tok := sc.Next(line)
			if tok.Kind == CommandLine {
				res.Entries++
				rewritten, j := p.rewriteEntry(line, tok.File)
				if rewritten != line {
					res.Rewritten++
				}
				if j != nil {
					j.entry = res.Entries
					jobs = append(jobs, *j)
				}
				line = rewritten
			}
			out = append(out, line)
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("unable to read compile database: %w", err)
		}
	}

	results, err := p.runJobs(ctx, jobs)
	if err != nil {
		return nil, err
	}
	for i, jr := range results {
		switch {
		case jr.err != nil:
			res.Errors = append(res.Errors, jr.err.Error())
			log.Warn().Err(jr.err).Int("entry", jobs[i].entry).Msg("entry failed")
		case jr.written:
			res.FilesWritten++
		}
	}
	res.Text = strings.Join(out, "")

	log.Info().
		Int("entries", res.Entries).
		Int("rewritten", res.Rewritten).
		Int("written", res.FilesWritten).
		Int("errors", len(res.Errors)).
		Msg("compile database processed")
	return &res, nil
}

// rewriteEntry returns the output line for a command line and, unless the
// entry is skipped or passed through, the file work it needs.
func (p *Processor) rewriteEntry(line, file string) (string, *job) {
	log := p.opts.Logger
	d := p.opts.Dialect

	skip := p.opts.SkipEngineEntries && pathpolicy.IsUnderRoot(file, p.opts.EngineRoot)

	cmd, ok := ParseCommand(line)
	if !ok {
		return line, nil
	}
	compEnd, ok := d.FindCompiler(cmd.Body)
	if !ok {
		if p.opts.Verbose {
			log.Debug().Str("file", file).Msg("no compiler token, passing through")
		}
		return line, nil
	}

	if ref, ok := FindResponseRef(cmd.Body[compEnd:]); ok {
		orig := ref.Path
		target := d.ResponseFilePath(orig)
		body := cmd.Body[:compEnd+ref.Start] + quotedRef(target) + cmd.Body[compEnd+ref.End:]
		cmd.Body = body
		if p.opts.Verbose {
			log.Debug().Str("file", file).Str("rsp", target).Bool("skip", skip).Msg("translating response file")
		}
		if skip {
			return cmd.String(), nil
		}
		return cmd.String(), &job{
			target: target,
			run: func() error {
				text, err := rsp.Translate(orig, p.opts.EngineRoot, d)
				if err != nil {
					return fmt.Errorf("unable to translate response file for %s: %w", file, err)
				}
				if err := writeResponseFile(target, text); err != nil {
					return fmt.Errorf("unable to translate response file for %s: %w", file, err)
				}
				return nil
			},
		}
	}

	target := filepath.Join(p.opts.OutputDir, pathpolicy.FlatName(file))
	tail := cmd.Body[compEnd:]
	cmd.Body = cmd.Body[:compEnd] + " " + quotedRef(target) + ` \"` + escapeJSON(file) + `\"`
	if p.opts.Verbose {
		log.Debug().Str("file", file).Str("rsp", target).Bool("skip", skip).Msg("synthesizing response file")
	}
	if skip {
		return cmd.String(), nil
	}
	return cmd.String(), &job{
		target: target,
		run: func() error {
			if err := writeResponseFile(target, cmdline.Rewrite(tail)); err != nil {
				return fmt.Errorf("unable to synthesize response file for %s: %w", file, err)
			}
			return nil
		},
	}
}

// runJobs executes the file work, at most Jobs at a time. Jobs writing the
// same target run in input order on one goroutine so the last entry wins, as
// it would in a sequential pass.
func (p *Processor) runJobs(ctx context.Context, jobs []job) ([]jobResult, error) {
	results := make([]jobResult, len(jobs))
	var (
		order  []string
		groups = make(map[string][]int)
	)
	for i, j := range jobs {
		if _, ok := groups[j.target]; !ok {
			order = append(order, j.target)
		}
		groups[j.target] = append(groups[j.target], i)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Jobs)
	for _, target := range order {
		idx := groups[target]
		g.Go(func() error {
			for _, i := range idx {
				if err := gctx.Err(); err != nil {
					return err
				}
				err := jobs[i].run()
				results[i] = jobResult{written: err == nil, err: err}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("compile database pass interrupted: %w", err)
	}
	return results, nil
}

func writeResponseFile(path, text string) error {
	if err := os.WriteFile(path, []byte(text), 0o664); err != nil {
		return fmt.Errorf("unable to write response file %s: %w", path, err)
	}
	return nil
}

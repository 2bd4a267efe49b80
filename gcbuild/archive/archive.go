// Package archive preserves the interesting artifacts of a runtime build:
// the GC source tree as it was compiled, the GC binaries with their symbol
// files, and a disassembly listing for the binaries worth diffing later.
package archive

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/gcforge/infra/gcbuild/config"
	"github.com/gcforge/infra/gcbuild/runner"
)

// Entry summarizes one archived binary.
type Entry struct {
	Name         string
	Size         int64
	Disassembled bool
}

// Archiver copies build products into a save directory.
type Archiver struct {
	log          zerolog.Logger
	runner       runner.Runner
	disassembler string
}

func New(log zerolog.Logger, r runner.Runner, disassembler string) *Archiver {
	return &Archiver{
		log:          log,
		runner:       r,
		disassembler: disassembler,
	}
}

// CopyTree mirrors the directory rooted at src into dst.
func (a *Archiver) CopyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0755)
		}
		return CopyFile(path, target)
	})
}

// Binaries copies each configured binary and its symbol file from the
// Core_Root layout into dst, disassembles the marked ones and returns a
// summary entry per binary. Symbol files live under Core_Root/PDB; the
// disassembler runs on the archived copy so the listing matches what was
// preserved.
func (a *Archiver) Binaries(ctx context.Context, coreRoot, dst string, binaries []config.Binary) ([]Entry, error) {
	entries := make([]Entry, 0, len(binaries))
	for _, bin := range binaries {
		src := filepath.Join(coreRoot, bin.Name)
		info, err := os.Stat(src)
		if err != nil {
			return nil, errors.Wrapf(err, "binary [%s] not found in core root", bin.Name)
		}
		copied := filepath.Join(dst, bin.Name)
		if err := CopyFile(src, copied); err != nil {
			return nil, err
		}

		sym := symbolFile(bin.Name)
		if err := CopyFile(filepath.Join(coreRoot, "PDB", sym), filepath.Join(dst, sym)); err != nil {
			return nil, err
		}

		if bin.Disasm {
			if err := a.disassemble(ctx, copied, filepath.Join(dst, listingFile(bin.Name))); err != nil {
				return nil, err
			}
		}

		a.log.Info().Str("binary", bin.Name).Int64("size", info.Size()).Msg("archived")
		entries = append(entries, Entry{Name: bin.Name, Size: info.Size(), Disassembled: bin.Disasm})
	}
	return entries, nil
}

func (a *Archiver) disassemble(ctx context.Context, binPath, asmPath string) error {
	f, err := os.Create(asmPath)
	if err != nil {
		return errors.Wrapf(err, "failed to create [%s]", asmPath)
	}
	spec := runner.Spec{
		Name:   a.disassembler,
		Args:   []string{"/disasm", binPath},
		Stdout: f,
	}
	if err := a.runner.Run(ctx, spec); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Summary renders the archived binaries as a table.
func Summary(out io.Writer, entries []Entry) {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetTitle("Archived binaries")
	t.AppendHeader(table.Row{"Binary", "Size", "Disassembly"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Size", Align: text.AlignRight},
	})

	var total int64
	for _, e := range entries {
		mark := "-"
		if e.Disassembled {
			mark = listingFile(e.Name)
		}
		t.AppendRow(table.Row{e.Name, formatSize(e.Size), mark})
		total += e.Size
	}
	t.AppendFooter(table.Row{"TOTAL", formatSize(total), ""})
	t.Render()
}

func formatSize(n int64) string {
	return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
}

// symbolFile maps a binary name to its symbol file, clrgc.dll to clrgc.pdb.
func symbolFile(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name)) + ".pdb"
}

// listingFile maps a binary name to its disassembly listing, clrgc.dll to
// clrgc.asm.
func listingFile(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name)) + ".asm"
}

// CopyFile copies a single file, overwriting dst if it exists.
func CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return errors.Wrapf(err, "failed to open [%s]", src)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return errors.Wrapf(err, "failed to create [%s]", dst)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return errors.Wrapf(err, "failed to copy [%s]", src)
	}
	return out.Close()
}

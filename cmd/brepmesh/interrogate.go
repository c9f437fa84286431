package main

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

	"github.com/gogpu/brepio"
	"github.com/gogpu/brepio/cache"
	"github.com/gogpu/brepio/document"
	"github.com/gogpu/brepio/gpuexport"
	"github.com/gogpu/brepio/internal/scenefile"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newInterrogateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "interrogate [flags] scene.hcl...",
		Short: "Mesh scenes and write their face documents",
		Long: `Loads each scene, meshes it at the requested deflection and writes
{"faces": [...]} as JSON.

A single scene is written to stdout unless --out-dir is set. Several
scenes require --out-dir and are processed concurrently, one document
per scene named after the scene file.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.interrogate(cmd.Context(), cmd.OutOrStdout(), args)
		},
	}

	f := cmd.Flags()
	f.Float64Var(&a.deflection, "deflection", brepio.DefaultDeflection, "meshing deflection, relative to part size")
	f.BoolVar(&a.structOnly, "struct-only", false, "omit tessellation")
	f.IntVar(&a.batchSize, "batch-size", brepio.DefaultBatchSize, "triangles serialized per batch")
	f.BoolVar(&a.vertexBuffer, "vertex-buffer", false, "also write a packed GPU vertex buffer (.vbuf)")
	f.BoolVar(&a.indent, "indent", false, "indent JSON output")
	f.IntVar(&a.jobs, "jobs", 0, "concurrent scenes; 0 means one per CPU")
	f.StringVarP(&a.outDir, "out-dir", "o", "", "directory receiving one document per scene")
	return cmd
}

func (a *app) interrogate(ctx context.Context, stdout io.Writer, paths []string) error {
	cfg := a.cfg
	if len(paths) > 1 && cfg.Output.Dir == "" {
		return errors.New("several scenes require --out-dir")
	}
	if cfg.Output.VertexBuffer && cfg.StructOnly {
		return errors.New("--vertex-buffer needs tessellation and cannot be combined with --struct-only")
	}
	if err := uniqueOutputs(paths); err != nil {
		return err
	}
	if cfg.Output.Dir != "" {
		if err := os.MkdirAll(cfg.Output.Dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	session, err := a.session()
	if err != nil {
		return err
	}

	jobs := cfg.Jobs
	if jobs == 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for _, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return a.interrogateScene(session, path, stdout)
		})
	}
	err = g.Wait()
	a.logCacheStats(session.Kernel())
	return err
}

// cacheStatser is implemented by kernels that cache triangulations.
type cacheStatser interface {
	CacheStats() cache.Stats
}

func (a *app) logCacheStats(k brepio.GeometryKernel) {
	cs, ok := k.(cacheStatser)
	if !ok {
		return
	}
	st := cs.CacheStats()
	a.logger.Debug("mesh cache",
		"entries", st.Len, "hits", st.Hits, "misses", st.Misses,
		"evictions", st.Evictions, "hit_rate", st.HitRate())
}

// interrogateScene handles one scene. Shapes are never shared between
// scenes, so scenes may run concurrently on one session.
func (a *app) interrogateScene(session *brepio.Session, path string, stdout io.Writer) error {
	cfg := a.cfg
	sc, err := scenefile.Load(path)
	if err != nil {
		return err
	}
	res, err := session.Run(sc.Shape, cfg.Deflection, cfg.StructOnly)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	log := a.logger.With("scene", sc.Name)
	if n := len(res.Report.Failures); n > 0 {
		log.Warn("faces skipped", "count", n)
	}

	if cfg.Output.Dir == "" {
		if err := writeDocument(stdout, res.Document, cfg.Output.Indent); err != nil {
			return err
		}
	} else {
		out := filepath.Join(cfg.Output.Dir, outputName(path)+".json")
		if err := writeFile(out, func(w io.Writer) error {
			return writeDocument(w, res.Document, cfg.Output.Indent)
		}); err != nil {
			return err
		}
		log.Info("document written", "path", out, "faces", res.Report.Emitted)
	}

	if cfg.Output.VertexBuffer {
		vb := gpuexport.Pack(res.Faces)
		out := vertexBufferPath(path, cfg.Output.Dir)
		if err := writeFile(out, func(w io.Writer) error {
			_, err := w.Write(vb.Bytes())
			return err
		}); err != nil {
			return err
		}
		log.Info("vertex buffer written",
			"path", out, "vertices", vb.VertexCount(), "stride", gpuexport.VertexStride)
	}
	return nil
}

func writeDocument(w io.Writer, doc *document.Object, indent bool) error {
	if err := document.Encode(w, doc, indent); err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	return nil
}

func writeFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	bw := bufio.NewWriter(f)
	if err := write(bw); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return bw.Flush()
}

func outputName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func vertexBufferPath(scene, dir string) string {
	if dir == "" {
		return strings.TrimSuffix(scene, filepath.Ext(scene)) + ".vbuf"
	}
	return filepath.Join(dir, outputName(scene)+".vbuf")
}

func uniqueOutputs(paths []string) error {
	seen := make(map[string]string, len(paths))
	for _, p := range paths {
		name := outputName(p)
		if prev, dup := seen[name]; dup {
			return fmt.Errorf("scenes %s and %s would write the same output %q", prev, p, name)
		}
		seen[name] = p
	}
	return nil
}

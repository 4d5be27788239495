package cmd

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"asset-catalog/core/config"
	"asset-catalog/core/logger"
	"asset-catalog/feature/catalog"

	"github.com/goccy/go-json"
	"github.com/natefinch/atomic"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	loadKind     string
	loadTag      string
	loadAsync    bool
	loadManifest string
	loadReport   string
)

// loadCmd represents the load command
var loadCmd = &cobra.Command{
	Use:   "load [paths...]",
	Short: "Load assets into a catalog and print their state",
	Long: `Loads the given paths, or the {path, tag} entries of a JSON manifest, into the
catalog of one kind, waits for background loads to finish and prints one line per asset.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		startTime := time.Now()

		cfg, err := config.LoadConfig(".")
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		logg, err := logger.New(&cfg.Log)
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
		defer logg.Sync()

		reqs, err := buildRequests(afero.NewOsFs(), args, loadManifest, loadTag, loadAsync)
		if err != nil {
			return err
		}
		if len(reqs) == 0 {
			return fmt.Errorf("nothing to load: pass paths or --manifest")
		}

		ctx := cmd.Context()
		src, closeSrc, err := openSource(ctx, cfg, logg)
		if err != nil {
			return err
		}
		defer closeSrc()

		svc, err := catalog.NewService(cfg.Catalog, src, nil, logg)
		if err != nil {
			return fmt.Errorf("failed to create catalog service: %w", err)
		}

		results, err := runLoad(ctx, svc, loadKind, reqs)
		if err != nil {
			return err
		}

		printResults(cmd.OutOrStdout(), results)

		if loadReport != "" {
			if err := writeReport(loadReport, results); err != nil {
				return err
			}
			logg.Info("Report saved", zap.String("file", loadReport))
		}

		logg.Info("Load completed",
			zap.String("kind", loadKind),
			zap.Int("assets", len(results)),
			zap.Duration("execution_time", time.Since(startTime)))
		return nil
	},
}

func init() {
	loadCmd.Flags().StringVar(&loadKind, "kind", catalog.KindTexture, "asset kind (texture, blob)")
	loadCmd.Flags().StringVar(&loadTag, "tag", "", "tag applied to paths given as arguments")
	loadCmd.Flags().BoolVar(&loadAsync, "async", false, "parse assets on the background loader")
	loadCmd.Flags().StringVar(&loadManifest, "manifest", "", "JSON file listing {path, tag} entries")
	loadCmd.Flags().StringVar(&loadReport, "report", "", "write a JSON report to this file")
	RootCmd.AddCommand(loadCmd)
}

// buildRequests merges the manifest entries with the argument paths.
func buildRequests(fs afero.Fs, paths []string, manifest, tag string, async bool) ([]catalog.LoadRequest, error) {
	var reqs []catalog.LoadRequest
	if manifest != "" {
		data, err := afero.ReadFile(fs, manifest)
		if err != nil {
			return nil, fmt.Errorf("failed to read manifest: %w", err)
		}
		if err := json.Unmarshal(data, &reqs); err != nil {
			return nil, fmt.Errorf("failed to parse manifest %s: %w", manifest, err)
		}
		for i := range reqs {
			reqs[i].Async = reqs[i].Async || async
		}
	}
	for _, p := range paths {
		reqs = append(reqs, catalog.LoadRequest{Path: p, Tag: tag, Async: async})
	}
	return reqs, nil
}

type loadResult struct {
	Path  string        `json:"path"`
	Tag   string        `json:"tag,omitempty"`
	Asset catalog.Asset `json:"asset"`
}

// runLoad drives svc for the duration of the load and stops it afterwards.
func runLoad(ctx context.Context, svc *catalog.Service, kind string, reqs []catalog.LoadRequest) ([]loadResult, error) {
	ctx, cancel := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return svc.Run(gctx) })

	results, err := func() ([]loadResult, error) {
		defer cancel()

		ids := make([]uint64, len(reqs))
		for i, req := range reqs {
			id, err := svc.Load(gctx, kind, req)
			if err != nil {
				return nil, fmt.Errorf("failed to load %s: %w", req.Path, err)
			}
			ids[i] = id
		}

		if err := svc.WaitIdle(gctx); err != nil {
			return nil, err
		}

		results := make([]loadResult, len(reqs))
		for i, req := range reqs {
			asset, err := svc.Get(gctx, kind, ids[i])
			if err != nil {
				return nil, fmt.Errorf("failed to read %s: %w", req.Path, err)
			}
			results[i] = loadResult{Path: req.Path, Tag: req.Tag, Asset: asset}
		}
		return results, nil
	}()

	if waitErr := g.Wait(); err == nil {
		err = waitErr
	}
	return results, err
}

func printResults(w io.Writer, results []loadResult) {
	for _, r := range results {
		a := r.Asset
		switch {
		case a.Texture != nil:
			fmt.Fprintf(w, "%-40s %-10s %dx%d %s %s\n", r.Path, a.Handle,
				a.Texture.Width, a.Texture.Height, a.Texture.Format, a.Texture.State)
		case a.Blob != nil:
			fmt.Fprintf(w, "%-40s %-10s %d bytes crc32=%08x %s\n", r.Path, a.Handle,
				a.Blob.Size, a.Blob.CRC32, a.Blob.State)
		default:
			fmt.Fprintf(w, "%-40s %-10s\n", r.Path, a.Handle)
		}
	}
}

func writeReport(path string, results []loadResult) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	return nil
}

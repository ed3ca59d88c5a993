package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/pflag"
	"go.uber.org/dig"

	"github.com/davidbz/imgresolve/internal/cache"
	"github.com/davidbz/imgresolve/internal/catalog"
	"github.com/davidbz/imgresolve/internal/config"
	"github.com/davidbz/imgresolve/internal/domain"
	"github.com/davidbz/imgresolve/internal/http"
	"github.com/davidbz/imgresolve/internal/ledger"
	"github.com/davidbz/imgresolve/internal/pathmap"
	"github.com/davidbz/imgresolve/internal/scan"
	"github.com/davidbz/imgresolve/internal/source"
)

const shutdownTimeout = 15 * time.Second

type command func(container *dig.Container, args []string) error

//nolint:gochecknoglobals // command table
var commands = map[string]command{
	"serve":   runServe,
	"resolve": runResolve,
	"map":     runMap,
	"sweep":   runSweep,
	"audit":   runAudit,
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runServe(container *dig.Container, args []string) error {
	fs := pflag.NewFlagSet("serve", pflag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	return container.Invoke(func(server *http.Server, store *cache.Store, l *ledger.Ledger) error {
		defer closeLedger(l)

		ctx, stop := signalContext()
		defer stop()

		go store.Run(ctx)

		errCh := make(chan error, 1)
		go func() { errCh <- server.Start() }()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
}

func runResolve(container *dig.Container, args []string) error {
	fs := pflag.NewFlagSet("resolve", pflag.ContinueOnError)
	width := fs.Int("width", 0, "requested width")
	height := fs.Int("height", 0, "requested height")
	quality := fs.String("quality", string(domain.QualityStandard), "quality tier: standard or premium")
	format := fs.String("format", "", "requested format hint (webp, jpg, ...)")
	query := fs.String("query", "", "free-text search query")
	category := fs.String("category", "", "fallback category")
	article := fs.String("article", "", "article using the image")
	delegate := fs.Bool("delegate", false, "return URLs without downloading")
	avoid := fs.Bool("avoid-duplicates", false, "prefer images no other article uses")
	out := fs.StringP("output", "o", "", "write the payload of a single reference to this file")
	preload := fs.Bool("preload", false, "warm the cache with every remote reference found in the content directory")
	asJSON := fs.Bool("json", false, "print outcomes as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	return container.Invoke(func(
		svc *domain.ImageService,
		scanner *scan.Scanner,
		paths *config.PathsConfig,
		l *ledger.Ledger,
	) error {
		defer closeLedger(l)

		ctx, stop := signalContext()
		defer stop()

		if *preload {
			return preloadContent(ctx, svc, scanner, paths.ContentDir)
		}

		if fs.NArg() == 0 {
			return errors.New("at least one reference is required")
		}
		if *out != "" && fs.NArg() != 1 {
			return errors.New("--output needs exactly one reference")
		}

		variant := domain.Variant{
			Width:   *width,
			Height:  *height,
			Quality: domain.QualityTier(*quality),
			Format:  *format,
		}
		refs := make([]domain.ImageReference, 0, fs.NArg())
		for _, raw := range fs.Args() {
			ref, err := domain.NewReference(raw, variant,
				domain.WithSearchQuery(*query),
				domain.WithCategory(*category),
				domain.WithArticle(*article),
			)
			if err != nil {
				return err
			}
			refs = append(refs, ref)
		}

		opts := svc.Defaults()
		if fs.Changed("delegate") {
			opts.DelegateURL = *delegate
		}
		if fs.Changed("avoid-duplicates") {
			opts.AvoidDuplicates = *avoid
		}

		outcomes := svc.ResolveAll(ctx, refs, opts)

		if *out != "" {
			img := outcomes[0].Image
			if img == nil || len(img.Bytes) == 0 {
				return fmt.Errorf("no payload for %s: %s", outcomes[0].Reference, outcomes[0].Error)
			}
			if err := os.WriteFile(*out, img.Bytes, 0o644); err != nil { //nolint:gosec // output is a user-chosen image
				return fmt.Errorf("failed to write %s: %w", *out, err)
			}
		}

		if *asJSON {
			return printJSON(outcomes)
		}
		printOutcomes(outcomes)

		if failed := countFailed(outcomes); failed > 0 {
			return fmt.Errorf("%d of %d references failed", failed, len(outcomes))
		}
		return nil
	})
}

func preloadContent(ctx context.Context, svc *domain.ImageService, scanner *scan.Scanner, dir string) error {
	found, err := scanner.Dir(ctx, dir)
	if err != nil {
		return err
	}

	seen := map[string]bool{}
	var refs []domain.ImageReference
	for _, r := range found {
		if seen[r.Value] || strings.HasPrefix(r.Value, "/") {
			continue
		}
		seen[r.Value] = true
		ref, err := domain.NewReference(r.Value, domain.Variant{}, domain.WithArticle(r.File))
		if err != nil {
			continue
		}
		refs = append(refs, ref)
	}

	ok, failed := svc.Preload(ctx, refs)
	fmt.Printf("preloaded %d of %d remote references (%d failed)\n", ok, len(refs), failed)
	return nil
}

func runMap(container *dig.Container, args []string) error {
	fs := pflag.NewFlagSet("map", pflag.ContinueOnError)
	contentDir := fs.String("content-dir", "", "content directory to scan (defaults to PATHS_CONTENT_DIR)")
	apply := fs.Bool("apply", false, "rewrite content files with the mapped paths")
	dryRun := fs.Bool("dry-run", false, "with --apply, report rewrites without writing")
	custom := fs.StringArray("custom", nil, "add a custom mapping original=mapped (repeatable)")
	asJSON := fs.Bool("json", false, "print the report as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	return container.Invoke(func(mapper *pathmap.Mapper, scanner *scan.Scanner, paths *config.PathsConfig) error {
		ctx, stop := signalContext()
		defer stop()

		for _, pair := range *custom {
			original, mapped, ok := strings.Cut(pair, "=")
			if !ok {
				return fmt.Errorf("invalid custom mapping %q, want original=mapped", pair)
			}
			if _, err := mapper.AddMapping(ctx, original, mapped); err != nil {
				return err
			}
		}

		dir := *contentDir
		if dir == "" {
			dir = paths.ContentDir
		}

		found, err := scanner.Dir(ctx, dir)
		if err != nil {
			return err
		}
		refs := make([]string, 0, len(found))
		for _, r := range found {
			refs = append(refs, r.Value)
		}

		report, err := mapper.MapAll(ctx, refs)
		if err != nil {
			return err
		}

		if *apply {
			files, err := scanner.Files(dir)
			if err != nil {
				return err
			}
			fixes, err := mapper.Apply(ctx, files, *dryRun)
			printFixes(fixes, *dryRun)
			if err != nil {
				return err
			}
		}

		if *asJSON {
			return printJSON(report)
		}
		printReport(report)
		return nil
	})
}

func runSweep(container *dig.Container, args []string) error {
	fs := pflag.NewFlagSet("sweep", pflag.ContinueOnError)
	clearAll := fs.Bool("clear", false, "remove every cached entry instead of sweeping")
	if err := fs.Parse(args); err != nil {
		return err
	}

	return container.Invoke(func(svc *domain.ImageService, l *ledger.Ledger) error {
		defer closeLedger(l)
		ctx := context.Background()

		if *clearAll {
			if err := svc.ClearCache(ctx); err != nil {
				return err
			}
			fmt.Println("cache cleared")
			return nil
		}

		report, err := svc.Sweep(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("expired %d, corrupt %d, evicted %d, orphans %d, failures %d\n",
			report.Expired, report.Corrupt, report.Evicted, report.Orphans, report.Failures)
		fmt.Printf("disk usage %s -> %s\n",
			humanize.IBytes(uint64(max(report.BytesBefore, 0))),
			humanize.IBytes(uint64(max(report.BytesAfter, 0))))
		return nil
	})
}

func runAudit(container *dig.Container, args []string) error {
	fs := pflag.NewFlagSet("audit", pflag.ContinueOnError)
	curated := fs.Bool("curated", true, "validate every curated entry")
	duplicates := fs.Bool("duplicates", true, "list URLs used by more than one article")
	stats := fs.Bool("stats", false, "print pipeline and cache statistics")
	concurrency := fs.Int("concurrency", 8, "curated entries probed at once")
	if err := fs.Parse(args); err != nil {
		return err
	}

	return container.Invoke(func(
		svc *domain.ImageService,
		cat *catalog.Catalog,
		prober domain.Prober,
		l *ledger.Ledger,
	) error {
		defer closeLedger(l)

		ctx, stop := signalContext()
		defer stop()

		if *curated {
			report, err := source.ValidateCurated(ctx, cat, prober, *concurrency)
			if err != nil {
				return err
			}
			fmt.Printf("curated: %d valid, %d invalid\n", len(report.Valid), len(report.Invalid))
			for _, check := range report.Checks {
				if !check.Valid() {
					fmt.Printf("  invalid %s (%s)\n", check.Key, strings.Join(check.Rejected, ", "))
				}
			}
		}

		if *duplicates && l != nil {
			groups, err := svc.Duplicates(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("duplicates: %d shared URLs\n", len(groups))
			for _, g := range groups {
				fmt.Printf("  %s used by %s\n", g.URL, strings.Join(g.Articles, ", "))
			}
		}

		if *stats {
			printStats(svc.Stats(ctx))
		}
		return nil
	})
}

func printOutcomes(outcomes []domain.Outcome) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "REFERENCE\tSOURCE\tCACHE\tSIZE\tRESULT")
	for _, o := range outcomes {
		if o.Image == nil {
			fmt.Fprintf(w, "%s\t-\t-\t-\t%s\n", o.Reference, o.Error)
			continue
		}
		img := o.Image
		result := img.URL
		if img.LocalPath != "" {
			result = img.LocalPath
		}
		size := "-"
		if len(img.Bytes) > 0 {
			size = humanize.Bytes(uint64(len(img.Bytes)))
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", o.Reference, img.Source, img.CacheStatus, size, result)
	}
	_ = w.Flush()
}

func printReport(report *pathmap.Report) {
	fmt.Printf("analyzed %d, mapped %d, fixed %d, errors %d\n",
		report.Summary.PathsAnalyzed, report.Summary.PathsMapped,
		report.Summary.PathsFixed, report.Summary.Errors)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for _, m := range report.Mappings {
		if m.Status == domain.MappingExists {
			continue
		}
		fmt.Fprintf(w, "%s\t->\t%s\t%s\t%.2f\n", m.OriginalPath, m.MappedPath, m.Status, m.Confidence)
	}
	_ = w.Flush()

	for _, e := range report.Errors {
		fmt.Printf("error %s: %s\n", e.Path, e.Error)
	}
}

func printFixes(fixes []pathmap.Fix, dryRun bool) {
	verb := "rewrote"
	if dryRun {
		verb = "would rewrite"
	}
	for _, f := range fixes {
		fmt.Printf("%s %s: %s -> %s\n", verb, f.File, f.OriginalPath, f.MappedPath)
	}
}

func printStats(st domain.Stats) {
	fmt.Printf("requests %s, hits %s, misses %s, downloads %s, failures %s, hit rate %.1f%%\n",
		humanize.Comma(st.Requests), humanize.Comma(st.Hits), humanize.Comma(st.Misses),
		humanize.Comma(st.Downloads), humanize.Comma(st.Failures), st.HitRate*100)
	fmt.Printf("cache: %d in memory, %d on disk, %s\n",
		st.Cache.MemoryEntries, st.Cache.DiskEntries, humanize.IBytes(uint64(max(st.CacheSizeBytes, 0))))
	if !st.Cache.LastSweep.IsZero() {
		fmt.Printf("last sweep %s\n", humanize.Time(st.Cache.LastSweep))
	}
	for name, rs := range st.RateLimitStatus {
		fmt.Printf("rate %s: %d/%d used, %d remaining\n", name, rs.Used, rs.Max, rs.Remaining)
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func countFailed(outcomes []domain.Outcome) int {
	n := 0
	for _, o := range outcomes {
		if o.Image == nil {
			n++
		}
	}
	return n
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/quetzaldb/quetzal/internal/config"
	"github.com/quetzaldb/quetzal/internal/executor"
	"github.com/quetzaldb/quetzal/internal/iter"
	"github.com/quetzaldb/quetzal/internal/logical"
	"github.com/quetzaldb/quetzal/internal/nt"
	"github.com/quetzaldb/quetzal/internal/plan"
	"github.com/quetzaldb/quetzal/internal/query"
	"github.com/quetzaldb/quetzal/internal/server"
	"github.com/quetzaldb/quetzal/internal/store"
)

var cfgFile string

func main() {
	root := &cobra.Command{
		Use:           "quetzal",
		Short:         "quetzal is an RDF triple store with a SPARQL TSV query surface",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "path to a TOML config file")
	root.AddCommand(newServeCmd(), newImportCmd(), newMatchCmd(), newStatsCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func loadConfig() (config.Config, error) {
	if cfgFile == "" {
		return config.Default(), nil
	}
	return config.Load(cfgFile)
}

func openStore(cfg config.Config) (*store.Store, error) {
	if cfg.Store.InMemory {
		return store.OpenInMemory()
	}
	return store.Open(cfg.Store.Path)
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the store over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			log, err := cfg.Log.NewLogger()
			if err != nil {
				return err
			}
			defer log.Sync() //nolint:errcheck

			st, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer st.Close() //nolint:errcheck

			srv, err := server.New(st, log, cfg.Server)
			if err != nil {
				return err
			}

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
			errCh := make(chan error, 1)
			go func() { errCh <- srv.Start() }()

			select {
			case err := <-errCh:
				return err
			case sig := <-stop:
				log.Info("shutting down", zap.String("signal", sig.String()))
				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return srv.Shutdown(ctx)
			}
		},
	}
}

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.nt>",
		Short: "Load an N-Triples file into the store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			st, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer st.Close() //nolint:errcheck

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close() //nolint:errcheck

			started := time.Now()
			triples, err := nt.ParseAll(f)
			if err != nil {
				return err
			}
			if err := st.InsertTriples(triples); err != nil {
				return err
			}
			if err := st.Sync(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d triples in %s\n",
				len(triples), time.Since(started).Round(time.Millisecond))
			return nil
		},
	}
}

func newMatchCmd() *cobra.Command {
	var subject, predicate, object string
	var analyze bool
	cmd := &cobra.Command{
		Use:   "match",
		Short: "Match a triple pattern and print the rows as SPARQL TSV",
		Long: "Match a triple pattern against the store. Terms use N-Triples syntax\n" +
			"(<http://...>, \"literal\", _:b0); an omitted term is a variable.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			st, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer st.Close() //nolint:errcheck

			var (
				terms    [3]logical.PatternTerm
				varNames []string
				known    = true
			)
			for i, raw := range []string{subject, predicate, object} {
				name := []string{"s", "p", "o"}[i]
				raw = strings.TrimSpace(raw)
				if raw == "" {
					terms[i] = logical.VarTerm(query.VarId(len(varNames)), name)
					varNames = append(varNames, name)
					continue
				}
				term, err := nt.ParseTerm(raw)
				if err != nil {
					return fmt.Errorf("term %s: %w", name, err)
				}
				oid, found, err := st.EncodeTermReadOnly(term)
				if err != nil {
					return err
				}
				if !found {
					known = false
				}
				terms[i] = logical.ConstTerm(oid)
			}

			ctx := query.NewQueryContext(varNames, st.Dictionary(), st.Catalog(), store.NewMemoryPathManager())
			projection := make([]query.VarId, len(varNames))
			for i := range projection {
				projection[i] = query.VarId(i)
			}

			var root iter.BindingIter
			if known {
				pattern := logical.NewTriplePattern(terms[0], terms[1], terms[2])
				root, err = plan.NewPlanner(ctx, st.Triples()).Compile(pattern)
				if err != nil {
					return err
				}
			} else {
				root = iter.NewEmpty(projection)
			}

			if _, err := executor.NewSelectExecutor(ctx, root, projection).Run(cmd.OutOrStdout()); err != nil {
				return err
			}
			if analyze {
				root.Analyze(cmd.ErrOrStderr(), 0)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&subject, "subject", "s", "", "subject term")
	cmd.Flags().StringVarP(&predicate, "predicate", "p", "", "predicate term")
	cmd.Flags().StringVarP(&object, "object", "o", "", "object term")
	cmd.Flags().BoolVar(&analyze, "analyze", false, "print the plan with runtime counters to stderr")
	return cmd
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print store statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			st, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer st.Close() //nolint:errcheck

			count, err := st.Count()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "triples: %d\n", count)
			return nil
		},
	}
}

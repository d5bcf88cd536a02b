// Package cli holds the migrator's cobra commands.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"go-recruitment-datalayer/internal/adapter"
	"go-recruitment-datalayer/internal/backup"
	"go-recruitment-datalayer/internal/consistency"
	"go-recruitment-datalayer/internal/domain"
	"go-recruitment-datalayer/internal/restore"
	"go-recruitment-datalayer/pkg/redis"

	"github.com/spf13/cobra"
)

var (
	ErrFamiliesFailed = errors.New("one or more families failed")
	ErrMismatch       = errors.New("records differ between backends")
)

const restoreLockKey = "migrator:restore"

// NewRootCmd builds the migrator command tree. newRuntime is called once per
// command run, after flag parsing.
func NewRootCmd(newRuntime Factory) *cobra.Command {
	root := &cobra.Command{
		Use:           "migrator",
		Short:         "Backup, restore and verify recruitment data across the legacy and new backends",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newBackupCmd(newRuntime),
		newRestoreCmd(newRuntime),
		newVerifyCmd(newRuntime),
	)
	return root
}

func newBackupCmd(newRuntime Factory) *cobra.Command {
	var (
		families []string
		cutoff   string
		out      string
	)
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Export families through the adapters into a backup directory",
		Example: `  migrator backup
  migrator backup --families candidates,applications --cutoff 2025-01-01 --out /var/backups`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			since, err := parseCutoff(cutoff)
			if err != nil {
				return err
			}
			rt, err := newRuntime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()

			store := rt.Store
			if out != "" {
				store = backup.DirStore{Root: out}
			}

			a, err := backup.NewEngine(rt.Set.Sources(), rt.Log, rt.FanOut).
				Snapshot(cmd.Context(), toFamilies(families), since)
			if err != nil {
				return err
			}
			location, err := store.Save(cmd.Context(), a)
			if err != nil {
				return err
			}
			result := struct {
				Location string           `json:"location"`
				Mirror   string           `json:"mirror,omitempty"`
				Metadata *backup.Metadata `json:"metadata"`
			}{Location: location, Metadata: a.Metadata}

			if rt.Mirror != nil {
				key, err := rt.Mirror.Mirror(cmd.Context(), location, a)
				if err != nil {
					rt.Log.Error("backup mirror failed", "location", location, "error", err)
				} else {
					result.Mirror = key
				}
			}

			if err := printJSON(cmd.OutOrStdout(), result); err != nil {
				return err
			}
			if len(a.Metadata.Failed) > 0 {
				return fmt.Errorf("%w: %s", ErrFamiliesFailed, strings.Join(keys(a.Metadata.Failed), ", "))
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&families, "families", nil, "families to export (default all)")
	cmd.Flags().StringVar(&cutoff, "cutoff", "", "only rows created at or after this time (RFC3339 or YYYY-MM-DD)")
	cmd.Flags().StringVar(&out, "out", "", "backup root directory (default BACKUP_DIR)")
	return cmd
}

func newRestoreCmd(newRuntime Factory) *cobra.Command {
	return &cobra.Command{
		Use:     "restore <backup-dir>",
		Short:   "Upsert a backup directory into the new backend in dependency order",
		Example: "  migrator restore backups/backup-20250301T090000000Z",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()
			if rt.Next == nil {
				return errors.New("new backend is not configured")
			}

			a, err := rt.Store.Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if rt.Locker != nil {
				lock, err := redis.Acquire(cmd.Context(), rt.Locker, restoreLockKey, rt.LockTTL)
				if err != nil {
					return err
				}
				defer func() {
					if err := lock.Release(cmd.Context()); err != nil {
						rt.Log.Warn("restore lock release failed", "error", err)
					}
				}()
			}

			report, err := restore.NewEngine(rt.Next, rt.BatchSize, rt.Log).Restore(cmd.Context(), a)
			if err != nil {
				return err
			}
			if err := printJSON(cmd.OutOrStdout(), report); err != nil {
				return err
			}
			if !report.OK() {
				return fmt.Errorf("%w: %s", ErrFamiliesFailed, strings.Join(keys(report.Errors), ", "))
			}
			return nil
		},
	}
}

func newVerifyCmd(newRuntime Factory) *cobra.Command {
	var (
		family       string
		sessionToken string
		ignore       []string
	)
	cmd := &cobra.Command{
		Use:   "verify --family <family> <id>...",
		Short: "Compare records between the legacy and new backends",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, ids []string) error {
			rt, err := newRuntime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()

			var probes consistency.Prober = rt.Set
			if sessionToken != "" {
				if rt.Session == nil {
					return errors.New("--session-token needs the rest new backend driver")
				}
				scoped, err := rt.Session(sessionToken)
				if err != nil {
					return err
				}
				probes = scoped
			}

			opts := []consistency.Option{consistency.WithFanOut(rt.FanOut), consistency.WithLogger(rt.Log)}
			if cmd.Flags().Changed("ignore") {
				opts = append(opts, consistency.WithIgnore(ignore...))
			}
			reports, err := consistency.NewChecker(probes, opts...).
				CompareMany(cmd.Context(), domain.Family(family), ids)
			if err != nil {
				return err
			}
			if err := printJSON(cmd.OutOrStdout(), reports); err != nil {
				return err
			}
			for _, r := range reports {
				if !r.Match {
					return ErrMismatch
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&family, "family", "", "family of the ids (required)")
	cmd.Flags().StringVar(&sessionToken, "session-token", "", "run new-backend reads as this user access token")
	cmd.Flags().StringSliceVar(&ignore, "ignore", consistency.DefaultIgnore, "fields excluded from the comparison")
	_ = cmd.MarkFlagRequired("family")
	return cmd
}

func parseCutoff(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, fmt.Errorf("invalid --cutoff %q: want RFC3339 or YYYY-MM-DD", s)
}

func toFamilies(names []string) []domain.Family {
	out := make([]domain.Family, 0, len(names))
	for _, n := range names {
		out = append(out, domain.Family(strings.ToLower(strings.TrimSpace(n))))
	}
	return out
}

func keys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

var _ consistency.Prober = (*adapter.Set)(nil)

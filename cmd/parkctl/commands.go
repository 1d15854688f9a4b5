// README: parkctl subcommands.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"parkwatch/internal/backend"
	"parkwatch/internal/config"
	"parkwatch/internal/modules/geodata"
	"parkwatch/internal/modules/reminder"
	"parkwatch/internal/modules/session"
	"parkwatch/internal/notify"
	"parkwatch/internal/photo"
	"parkwatch/internal/types"
)

// newCore wires the client core for one invocation and reconciles against the
// backend so a session started elsewhere (or before a crash) is picked up.
func newCore(ctx context.Context) (*session.Store, backend.Client, config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, config.Config{}, err
	}
	client := backend.NewHTTPClient(cfg.Client.BaseURL, cfg.Client.Token)
	sched := reminder.NewScheduler(notify.NewLogNotifier())
	store := session.NewStore(client, sched)
	if photos, err := photo.NewDirStore(cfg.Client.PhotoDir); err == nil {
		store.SetPhotoStore(photos)
	}
	store.Reconcile(ctx)
	return store, client, cfg, nil
}

func newStartCmd() *cobra.Command {
	var (
		lat, lng    float64
		note        string
		backdateMin int
		photoPath   string
		remindAfter time.Duration
		remindAt    string
	)
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start a parking session at the given coordinates",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, _, _, err := newCore(ctx)
			if err != nil {
				return err
			}

			startCmd := session.StartCommand{Latitude: lat, Longitude: lng, Note: note}
			if backdateMin > 0 {
				t := time.Now().Add(-time.Duration(backdateMin) * time.Minute)
				startCmd.AdjustedStartedAt = &t
			}
			if photoPath != "" {
				img, err := os.ReadFile(photoPath)
				if err != nil {
					return err
				}
				startCmd.PendingPhoto = img
			}
			if remindAfter > 0 {
				startCmd.Reminder = &reminder.Config{Enabled: true, Mode: reminder.ModeAfterDuration, After: remindAfter}
			} else if remindAt != "" {
				t, err := time.Parse("15:04", remindAt)
				if err != nil {
					return fmt.Errorf("invalid --remind-at, want HH:MM: %w", err)
				}
				startCmd.Reminder = &reminder.Config{Enabled: true, Mode: reminder.ModeAtTime, Hour: t.Hour(), Minute: t.Minute()}
			}

			sess, err := store.Start(ctx, startCmd)
			if err != nil {
				return err
			}
			fmt.Printf("session %s started at %s\n", sess.ID, sess.EffectiveStart().Format(time.RFC3339))
			return nil
		},
	}
	cmd.Flags().Float64Var(&lat, "lat", 0, "latitude of the parked vehicle")
	cmd.Flags().Float64Var(&lng, "lng", 0, "longitude of the parked vehicle")
	cmd.Flags().StringVar(&note, "note", "", "free-text note")
	cmd.Flags().IntVar(&backdateMin, "backdate-min", 0, "I actually parked N minutes ago")
	cmd.Flags().StringVar(&photoPath, "photo", "", "attach a photo file")
	cmd.Flags().DurationVar(&remindAfter, "remind-after", 0, "remind after this duration from the (possibly backdated) start")
	cmd.Flags().StringVar(&remindAt, "remind-at", "", "remind at the next occurrence of HH:MM")
	_ = cmd.MarkFlagRequired("lat")
	_ = cmd.MarkFlagRequired("lng")
	return cmd
}

func newEndCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "end",
		Short: "End the active parking session",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, _, _, err := newCore(ctx)
			if err != nil {
				return err
			}
			closed, err := store.End(ctx)
			if err != nil {
				return err
			}
			elapsed := closed.EndedAt.Sub(closed.EffectiveStart()).Round(time.Second)
			fmt.Printf("session %s ended, parked for %s\n", closed.ID, elapsed)
			return nil
		},
	}
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the active session, if any",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, _, _, err := newCore(ctx)
			if err != nil {
				return err
			}
			sess, ok := store.Active()
			if !ok {
				fmt.Println("no active session")
				return nil
			}
			snap := session.NewTimer(store).Snapshot()
			fmt.Printf("session %s at (%.5f, %.5f), elapsed %s\n", sess.ID, sess.Latitude, sess.Longitude, snap.HHMMSS())
			if sess.Note != "" {
				fmt.Printf("note: %s\n", sess.Note)
			}
			return nil
		},
	}
}

func newHistoryCmd() *cobra.Command {
	var limit, offset int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past parking sessions, most recent first",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			client := backend.NewHTTPClient(cfg.Client.BaseURL, cfg.Client.Token)
			records, err := client.ListHistory(ctx, limit, offset)
			if err != nil {
				return err
			}
			for _, r := range records {
				end := "active"
				if r.EndedAt != nil {
					end = r.EndedAt.Format(time.RFC3339)
				}
				fmt.Printf("%s  %s → %s  (%.5f, %.5f)\n", r.ID, r.StartedAt.Format(time.RFC3339), end, r.Latitude, r.Longitude)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "max records")
	cmd.Flags().IntVar(&offset, "offset", 0, "records to skip")
	return cmd
}

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Tick the session clock until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, _, _, err := newCore(ctx)
			if err != nil {
				return err
			}
			if _, ok := store.Active(); !ok {
				fmt.Println("no active session")
				return nil
			}
			timer := session.NewTimer(store)
			timer.Run(ctx, func(s session.Snapshot) {
				if !s.Running {
					return
				}
				fmt.Printf("\r%s", s.HHMMSS())
			})
			fmt.Println()
			return nil
		},
	}
}

func newNearbyCmd() *cobra.Command {
	var (
		lat, lng float64
		wait     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "nearby",
		Short: "Show priced spots and parking locations around a coordinate",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			client := backend.NewHTTPClient(cfg.Client.BaseURL, cfg.Client.Token)
			coord := geodata.NewCoordinator(client, geodata.NewMemoryCache(), geodata.Options{
				TTL:      cfg.Geodata.CacheTTL,
				Debounce: cfg.Geodata.Debounce,
				MinMoveM: cfg.Geodata.MinMoveM,
				RadiusM:  cfg.Geodata.RadiusMeters,
			})
			defer coord.Close()

			// First location acquisition: fetch immediately, no debounce.
			coord.Refresh(types.Point{Lat: lat, Lng: lng})

			deadline := time.After(wait)
			settled := 0
			for settled < 2 {
				select {
				case u := <-coord.Updates():
					if u.Err != nil {
						fmt.Fprintf(os.Stderr, "%s query failed: %v\n", u.Kind, u.Err)
						settled++
						continue
					}
					if u.FromCache {
						continue
					}
					settled++
					switch u.Kind {
					case geodata.KindPrices:
						for _, s := range u.Spots {
							fmt.Printf("%-30s %6.0fm  %s/h\n", s.Name, s.DistanceM, s.Tariff)
						}
					case geodata.KindLocations:
						for _, l := range u.Locations {
							fmt.Printf("%-30s (%.5f, %.5f)\n", l.Name, l.Position.Lat, l.Position.Lng)
						}
					}
				case <-deadline:
					return fmt.Errorf("timed out waiting for geodata")
				}
			}
			return nil
		},
	}
	cmd.Flags().Float64Var(&lat, "lat", 0, "latitude")
	cmd.Flags().Float64Var(&lng, "lng", 0, "longitude")
	cmd.Flags().DurationVar(&wait, "wait", 10*time.Second, "how long to wait for results")
	_ = cmd.MarkFlagRequired("lat")
	_ = cmd.MarkFlagRequired("lng")
	return cmd
}

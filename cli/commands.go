package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Chris4081/memauto-go-sdk/admin"
	"github.com/Chris4081/memauto-go-sdk/guide"
	"github.com/Chris4081/memauto-go-sdk/hooks"
	"github.com/Chris4081/memauto-go-sdk/logger"
	"github.com/Chris4081/memauto-go-sdk/match"
)

func newServeCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the admin HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, pl, err := openStore(v)
			if err != nil {
				return err
			}
			defer pl.Close()

			log := logger.New(logger.WithPretty(true), logger.WithDebug(v.GetBool("debug")))
			hk := hooks.New(st, pl, hooks.WithLogger(log))
			handler := admin.NewHandler(st, pl, hk, admin.WithLogger(log))

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if err := st.Watch(ctx); err != nil {
				log.Warn("file watch unavailable", "err", err)
			}

			errCh := make(chan error, 1)
			go func() { errCh <- handler.Serve(v.GetString("listen")) }()

			select {
			case <-ctx.Done():
				return nil
			case err := <-errCh:
				return err
			}
		},
	}
	cmd.Flags().String("listen", v.GetString("listen"), "Address for the admin API to listen on")
	_ = v.BindPFlag("listen", cmd.Flags().Lookup("listen"))
	return cmd
}

func newLsCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "ls",
		Short: "List stored memories",
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, pl, err := openStore(v)
			if err != nil {
				return err
			}
			defer pl.Close()

			entries := st.Entries()
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no memories stored")
				return nil
			}
			for i, e := range entries {
				flag := " "
				if e.Always {
					flag = "*"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%3d %s %s", i, flag, e.Memory)
				if e.Keywords != "" {
					fmt.Fprintf(cmd.OutOrStdout(), "  [%s]", e.Keywords)
				}
				fmt.Fprintln(cmd.OutOrStdout())
			}
			return nil
		},
	}
}

func newAddCmd(v *viper.Viper) *cobra.Command {
	var keywords string
	var always bool
	cmd := &cobra.Command{
		Use:   "add <memory>",
		Short: "Save a memory through the relevance pipeline",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, pl, err := openStore(v)
			if err != nil {
				return err
			}
			defer pl.Close()

			accepted, msg := pl.Submit(strings.Join(args, " "), keywords, always)
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			if !accepted {
				return errors.New("memory not saved")
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&keywords, "keywords", "k", "", "Comma-separated trigger keywords")
	cmd.Flags().BoolVarP(&always, "always", "a", false, "Inject on every turn regardless of keywords")
	return cmd
}

func newRmCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <index>",
		Short: "Delete a memory by index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid index %q", args[0])
			}
			st, pl, err := openStore(v)
			if err != nil {
				return err
			}
			defer pl.Close()

			if err := st.Delete(idx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted memory %d\n", idx)
			return nil
		},
	}
}

func newWipeCmd(v *viper.Viper) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "wipe",
		Short: "Delete all memories (a backup is written first)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return errors.New("refusing to wipe without --yes")
			}
			st, pl, err := openStore(v)
			if err != nil {
				return err
			}
			defer pl.Close()

			backup, err := st.DeleteAll()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "all memories deleted, backup at %s\n", backup)
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm deletion")
	return cmd
}

func newGuideCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "guide [lang]",
		Short: "Print the save-directive guide text",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, pl, err := openStore(v)
			if err != nil {
				return err
			}
			defer pl.Close()

			settings := st.Settings()
			lang := settings.GuideLang
			if len(args) == 1 {
				lang = args[0]
			}
			fmt.Fprintln(cmd.OutOrStdout(), guide.Resolve(lang, settings.GuideCustom))
			return nil
		},
	}
}

func newMatchCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "match <text>",
		Short: "Show which memories the given text would trigger",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, pl, err := openStore(v)
			if err != nil {
				return err
			}
			defer pl.Close()

			hits := match.CollectIndexed(strings.Join(args, " "), st.Entries())
			if len(hits) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no matches")
				return nil
			}
			for _, h := range hits {
				fmt.Fprintf(cmd.OutOrStdout(), "%3d  %s\n", h.Index, h.Memory)
			}
			return nil
		},
	}
}

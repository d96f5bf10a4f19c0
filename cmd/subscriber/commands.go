package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tweedegolf/mailchimp-v3-subscriber/pkg/mailchimp"
)

// service is the membership surface the commands drive.
type service interface {
	UseList(listID string)
	Subscribe(ctx context.Context, email string, mergeFields map[string]any) (mailchimp.MemberInfo, error)
	Unsubscribe(ctx context.Context, email string) (mailchimp.MemberInfo, error)
	Update(ctx context.Context, email string, mergeFields map[string]any, status string) (mailchimp.MemberInfo, error)
	MemberInfo(ctx context.Context, email string) (mailchimp.MemberInfo, error)
	IsSubscribed(ctx context.Context, email string) bool
	Close() error
}

type opener func(ctx context.Context) (service, error)

func newRootCommand(open opener) *cobra.Command {
	var listID string

	// withService opens the service, applies --list and closes it afterwards.
	withService := func(cmd *cobra.Command, fn func(ctx context.Context, svc service) (any, error)) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		svc, err := open(ctx)
		if err != nil {
			return err
		}
		defer svc.Close()

		svc.UseList(listID)
		out, err := fn(ctx, svc)
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), out)
	}

	rootCmd := &cobra.Command{
		Use:           "mailchimp-subscriber",
		Short:         "Manage Mailchimp list members",
		Long:          "Subscribe, unsubscribe, update and inspect members of a Mailchimp list through the v3 API.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&listID, "list", "l", "", "List id, overrides MAILCHIMP_LIST_ID")

	rootCmd.AddCommand(
		newSubscribeCommand(withService),
		newUnsubscribeCommand(withService),
		newUpdateCommand(withService),
		newInfoCommand(withService),
		newStatusCommand(withService),
	)
	return rootCmd
}

type runner func(cmd *cobra.Command, fn func(ctx context.Context, svc service) (any, error)) error

func newSubscribeCommand(run runner) *cobra.Command {
	var merge []string

	cmd := &cobra.Command{
		Use:   "subscribe EMAIL",
		Short: "Subscribe an address to the list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fields, err := parseMergeFields(merge)
			if err != nil {
				return err
			}
			return run(cmd, func(ctx context.Context, svc service) (any, error) {
				return svc.Subscribe(ctx, args[0], fields)
			})
		},
	}
	cmd.Flags().StringArrayVarP(&merge, "merge", "m", nil, "Merge field as KEY=VALUE, repeatable")
	return cmd
}

func newUnsubscribeCommand(run runner) *cobra.Command {
	return &cobra.Command{
		Use:   "unsubscribe EMAIL",
		Short: "Unsubscribe an address from the list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, svc service) (any, error) {
				return svc.Unsubscribe(ctx, args[0])
			})
		},
	}
}

func newUpdateCommand(run runner) *cobra.Command {
	var (
		merge  []string
		status string
	)

	cmd := &cobra.Command{
		Use:   "update EMAIL",
		Short: "Create or update a member with the given status and merge fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fields, err := parseMergeFields(merge)
			if err != nil {
				return err
			}
			return run(cmd, func(ctx context.Context, svc service) (any, error) {
				return svc.Update(ctx, args[0], fields, status)
			})
		},
	}
	cmd.Flags().StringArrayVarP(&merge, "merge", "m", nil, "Merge field as KEY=VALUE, repeatable")
	cmd.Flags().StringVarP(&status, "status", "s", mailchimp.StatusSubscribed, "Member status (subscribed, unsubscribed, pending, ...)")
	return cmd
}

func newInfoCommand(run runner) *cobra.Command {
	return &cobra.Command{
		Use:   "info EMAIL",
		Short: "Print the member record, {} when unknown",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, svc service) (any, error) {
				return svc.MemberInfo(ctx, args[0])
			})
		},
	}
}

func newStatusCommand(run runner) *cobra.Command {
	return &cobra.Command{
		Use:   "status EMAIL",
		Short: "Print whether an address is subscribed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, svc service) (any, error) {
				return map[string]any{
					"email":      args[0],
					"subscribed": svc.IsSubscribed(ctx, args[0]),
				}, nil
			})
		},
	}
}

// parseMergeFields turns KEY=VALUE pairs into a merge field map.
func parseMergeFields(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid merge field %q (expected KEY=VALUE)", pair)
		}
		out[key] = value
	}
	return out, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

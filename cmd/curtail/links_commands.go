package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"curtail/internal/api"
)

func newLinksCommand(ctx *commandContext) *cobra.Command {
	linksCmd := &cobra.Command{
		Use:   "links",
		Short: "Manage short links",
	}

	linksCmd.AddCommand(newLinksListCommand(ctx))
	linksCmd.AddCommand(newLinksCreateCommand(ctx))
	linksCmd.AddCommand(newLinksDeleteCommand(ctx))

	return linksCmd
}

func newLinksListCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored short links (admin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.apiClient()
			if err != nil {
				return err
			}
			resp, err := client.ListLinks(cmd.Context(), limit)
			if err != nil {
				return err
			}

			stdout := cmd.OutOrStdout()
			if len(resp.Links) == 0 {
				fmt.Fprintln(stdout, "No short links stored")
				return nil
			}

			rows := make([][]string, 0, len(resp.Links))
			for _, link := range resp.Links {
				state := "active"
				if link.Expired {
					state = "expired"
				}
				rows = append(rows, []string{link.Code, link.ShortLink, link.LongURL, link.ExpiresAt, state})
			}
			fmt.Fprintln(stdout, renderTable(
				[]string{"CODE", "SHORT LINK", "TARGET", "EXPIRES", "STATE"},
				rows,
			))
			fmt.Fprintf(stdout, "%d of %d links shown\n", len(resp.Links), resp.Total)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of links to list")
	return cmd
}

func newLinksCreateCommand(ctx *commandContext) *cobra.Command {
	var validity int
	var customCode string

	cmd := &cobra.Command{
		Use:   "create URL",
		Short: "Create a short link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.apiClient()
			if err != nil {
				return err
			}
			resp, err := client.CreateLink(cmd.Context(), api.CreateLinkRequest{
				URL:             args[0],
				ValidityMinutes: validity,
				CustomCode:      customCode,
			})
			if err != nil {
				return err
			}

			stdout := cmd.OutOrStdout()
			fmt.Fprintf(stdout, "Short link: %s\n", resp.ShortLink)
			fmt.Fprintf(stdout, "Expires:    %s\n", resp.Expiry)
			return nil
		},
	}

	cmd.Flags().IntVar(&validity, "validity", 0, "Validity in minutes (0 uses the configured default)")
	cmd.Flags().StringVar(&customCode, "code", "", "Custom short code instead of a generated one")
	return cmd
}

func newLinksDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete CODE",
		Short: "Delete a short link and its click history (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.apiClient()
			if err != nil {
				return err
			}
			if err := client.DeleteLink(cmd.Context(), args[0]); err != nil {
				var apiErr *api.APIError
				if errors.As(err, &apiErr) && apiErr.StatusCode == 404 {
					return fmt.Errorf("short link %q not found", args[0])
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	}
}

func newStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats CODE",
		Short: "Show click statistics for a short link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.apiClient()
			if err != nil {
				return err
			}
			resp, err := client.LinkStats(cmd.Context(), args[0])
			if err != nil {
				var apiErr *api.APIError
				if errors.As(err, &apiErr) && apiErr.StatusCode == 404 {
					return fmt.Errorf("short link %q not found", args[0])
				}
				return err
			}

			stdout := cmd.OutOrStdout()
			fmt.Fprintf(stdout, "Short link: %s\n", resp.Link.ShortLink)
			fmt.Fprintf(stdout, "Target:     %s\n", resp.Link.LongURL)
			fmt.Fprintf(stdout, "Created:    %s\n", resp.Link.CreatedAt)
			fmt.Fprintf(stdout, "Expires:    %s (expired: %s)\n", resp.Link.ExpiresAt, yesNo(resp.Link.Expired))
			fmt.Fprintf(stdout, "Clicks:     %d\n", resp.TotalClicks)

			if len(resp.Recent) > 0 {
				rows := make([][]string, 0, len(resp.Recent))
				for _, click := range resp.Recent {
					rows = append(rows, []string{click.At, click.Referrer, click.Source})
				}
				fmt.Fprintln(stdout, renderTable([]string{"TIME", "REFERRER", "SOURCE"}, rows))
			}
			return nil
		},
	}
}

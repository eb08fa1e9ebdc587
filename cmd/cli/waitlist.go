package main

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/akeren/landing-api/pkg/constants"
	"github.com/akeren/landing-api/pkg/sdk"
	"github.com/akeren/landing-api/pkg/sdk/transport"
	"github.com/akeren/landing-api/pkg/sdk/waitlist"
	"github.com/akeren/landing-api/pkg/utils"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

const (
	adminEmailEnv    = "LANDING_ADMIN_EMAIL"
	adminPasswordEnv = "LANDING_ADMIN_PASSWORD"
)

func newWaitlistCommand(serverURL *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "waitlist",
		Short: "Join, list, advance and export waitlist entries",
	}

	cmd.AddCommand(
		newWaitlistJoinCommand(serverURL),
		newWaitlistListCommand(serverURL),
		newWaitlistAdvanceCommand(serverURL, "invite", "invited"),
		newWaitlistAdvanceCommand(serverURL, "mark-joined", "joined"),
		newWaitlistExportCommand(serverURL),
	)

	return cmd
}

func newClient(serverURL string) (*sdk.SDK, error) {
	return sdk.New(sdk.Options{BaseURL: serverURL})
}

// newAdminClient signs in with the LANDING_ADMIN_* credentials.
func newAdminClient(cmd *cobra.Command, serverURL string) (*sdk.SDK, error) {
	email := utils.GetEnvTrimmed(adminEmailEnv)
	password := os.Getenv(adminPasswordEnv)
	if email == "" || password == "" {
		return nil, fmt.Errorf("%s and %s must be set for admin commands", adminEmailEnv, adminPasswordEnv)
	}

	client, err := newClient(serverURL)
	if err != nil {
		return nil, err
	}

	if resp := client.Auth.Login(cmd.Context(), email, password); !resp.OK() {
		return nil, responseError(resp)
	}
	return client, nil
}

func responseError[T any](resp transport.Response[T]) error {
	message := resp.Error
	if message == "" {
		message = "unexpected response"
	}

	switch resp.Status {
	case 0:
		return fmt.Errorf("cannot reach the API: %s", message)
	case http.StatusUnauthorized:
		return fmt.Errorf("%s: check %s and %s", message, adminEmailEnv, adminPasswordEnv)
	default:
		return fmt.Errorf("%s (HTTP %d)", message, resp.Status)
	}
}

func newWaitlistJoinCommand(serverURL *string) *cobra.Command {
	var (
		noEmail bool
		req     waitlist.JoinRequest
	)

	cmd := &cobra.Command{
		Use:   "join <email>",
		Short: "Add an email to the waitlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient(*serverURL)
			if err != nil {
				return err
			}

			req.Email = args[0]
			resp := client.Waitlist.Join(cmd.Context(), req, !noEmail)
			if resp.Status == http.StatusConflict {
				return errors.New("already on the waitlist")
			}
			if !resp.OK() || resp.Data == nil || resp.Data.WaitlistEntry == nil {
				return responseError(resp)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Joined %s at position %d\n", resp.Data.WaitlistEntry.Email, resp.Data.WaitlistEntry.QueuePosition)
			if !noEmail && !resp.Data.EmailSent {
				reason := "unknown error"
				if resp.Data.EmailResult != nil && resp.Data.EmailResult.Error != "" {
					reason = resp.Data.EmailResult.Error
				}
				fmt.Fprintf(out, "Confirmation email not sent: %s\n", reason)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&noEmail, "no-email", false, "skip the confirmation email")
	cmd.Flags().StringVar(&req.UTMSource, "utm-source", "", "UTM source")
	cmd.Flags().StringVar(&req.UTMMedium, "utm-medium", "", "UTM medium")
	cmd.Flags().StringVar(&req.UTMCampaign, "utm-campaign", "", "UTM campaign")
	return cmd
}

func newWaitlistListCommand(serverURL *string) *cobra.Command {
	var opts waitlist.ListOptions

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show one page of waitlist entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newAdminClient(cmd, *serverURL)
			if err != nil {
				return err
			}

			resp := client.Waitlist.ListEntries(cmd.Context(), opts)
			if !resp.OK() || resp.Data == nil {
				return responseError(resp)
			}

			return renderEntries(cmd.OutOrStdout(), resp.Data)
		},
	}

	cmd.Flags().IntVar(&opts.Page, "page", constants.DefaultPage, "page number")
	cmd.Flags().IntVar(&opts.Limit, "limit", constants.DefaultPageSize, "entries per page (max 100)")
	cmd.Flags().StringVar(&opts.Search, "search", "", "match email or UTM source")
	cmd.Flags().StringVar(&opts.Status, "status", "", "pending, invited or joined")
	return cmd
}

func renderEntries(out io.Writer, page *waitlist.EntriesPage) error {
	table := tablewriter.NewWriter(out)
	table.Header("Position", "Email", "Status", "UTM Source", "Joined")

	for _, entry := range page.Items {
		if err := table.Append(
			strconv.Itoa(entry.QueuePosition),
			entry.Email,
			entry.Status,
			entry.UTMSource,
			formatJoined(entry.CreatedAt),
		); err != nil {
			return err
		}
	}

	if err := table.Render(); err != nil {
		return err
	}

	fmt.Fprintf(out, "Page %d of %d (%d entries)\n", page.Page, max(page.Pages, 1), page.Total)
	return nil
}

func formatJoined(value string) string {
	parsed, err := time.Parse(constants.RFC3339DateTimeFormat, value)
	if err != nil {
		return value
	}
	return parsed.Local().Format("2006-01-02 15:04")
}

func newWaitlistAdvanceCommand(serverURL *string, use, status string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <email>",
		Short: "Move an entry to " + status,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newAdminClient(cmd, *serverURL)
			if err != nil {
				return err
			}

			resp := client.Waitlist.UpdateWaitlistStatus(cmd.Context(), args[0], status)
			if !resp.OK() {
				return responseError(resp)
			}

			message := "Status updated to " + status
			if resp.Data != nil && resp.Data.Message != "" {
				message = resp.Data.Message
			}
			fmt.Fprintln(cmd.OutOrStdout(), message)
			return nil
		},
	}
}

func newWaitlistExportCommand(serverURL *string) *cobra.Command {
	var (
		search  string
		status  string
		outPath string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write filtered waitlist entries as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newAdminClient(cmd, *serverURL)
			if err != nil {
				return err
			}

			entries, resp := client.Waitlist.ListAll(cmd.Context(), waitlist.ListOptions{Status: status})
			if !resp.OK() {
				return responseError(resp)
			}
			entries = waitlist.FilterEntries(entries, search, status)

			if outPath == "" {
				return waitlist.WriteCSV(cmd.OutOrStdout(), entries)
			}

			file, err := os.Create(outPath)
			if err != nil {
				return err
			}
			if err := writeCSVAndClose(file, entries); err != nil {
				return fmt.Errorf("write %s: %w", outPath, err)
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d entries to %s\n", len(entries), outPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "match email or UTM source")
	cmd.Flags().StringVar(&status, "status", "", "pending, invited or joined")
	cmd.Flags().StringVar(&outPath, "out", "", "output file (default stdout)")
	return cmd
}

// writeCSVAndClose also returns the error from Close.
func writeCSVAndClose(w io.WriteCloser, entries []waitlist.Entry) error {
	if err := waitlist.WriteCSV(w, entries); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}

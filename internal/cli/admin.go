package cli

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	identityapp "github.com/chiclet/backend/internal/application/identity"
)

func newAdminCommand(st *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage back-office accounts",
	}
	cmd.AddCommand(newAdminCreateCommand(st), newAdminListCommand(st), newAdminSetActiveCommand(st))
	return cmd
}

func newAdminCreateCommand(st *state) *cobra.Command {
	var req identityapp.CreateAdminRequest

	cmd := &cobra.Command{
		Use:     "create",
		Short:   "Create an active admin account",
		Example: `  chicletctl admin create --email ops@chiclet.in --name "Ops" --password 's3cret-pass' --role super_admin`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return st.withUsers(cmd.Context(), func(users AdminUsers) error {
				user, err := users.CreateAdmin(cmd.Context(), req)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created %s %s (%s)\n", user.Role, user.Email, user.ID)
				return nil
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&req.Email, "email", "", "login email")
	f.StringVar(&req.Name, "name", "", "display name")
	f.StringVar(&req.Password, "password", "", "initial password")
	f.StringVar(&req.Role, "role", "admin", "admin or super_admin")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newAdminListCommand(st *state) *cobra.Command {
	var q identityapp.UserListQuery

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List admin accounts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return st.withUsers(cmd.Context(), func(users AdminUsers) error {
				page, err := users.ListAdmins(cmd.Context(), q)
				if err != nil {
					return err
				}
				return writeAdmins(cmd.OutOrStdout(), page.Items, page.Total)
			})
		},
	}
	f := cmd.Flags()
	f.IntVar(&q.Page, "page", 1, "page number")
	f.IntVar(&q.PageSize, "page-size", 50, "rows per page")
	f.StringVar(&q.Search, "search", "", "match email or name")
	return cmd
}

func newAdminSetActiveCommand(st *state) *cobra.Command {
	var (
		email  string
		active bool
	)

	cmd := &cobra.Command{
		Use:     "set-active",
		Short:   "Activate or deactivate an account by email",
		Example: `  chicletctl admin set-active --email ops@chiclet.in --active=false`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return st.withUsers(cmd.Context(), func(users AdminUsers) error {
				user, err := users.SetActiveByEmail(cmd.Context(), email, active)
				if err != nil {
					return err
				}
				status := "inactive"
				if user.IsActive {
					status = "active"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", user.Email, status)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().BoolVar(&active, "active", true, "desired state")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("active")
	return cmd
}

func writeAdmins(w io.Writer, admins []identityapp.UserResponse, total int64) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tEMAIL\tNAME\tROLE\tACTIVE\tLAST LOGIN")
	for _, a := range admins {
		lastLogin := "-"
		if a.LastLoginAt != nil {
			lastLogin = a.LastLoginAt.UTC().Format(time.RFC3339)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%t\t%s\n", a.ID, a.Email, a.Name, a.Role, a.IsActive, lastLogin)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%d of %d admins\n", len(admins), total)
	return err
}

// Package cli implements chicletctl, the operator command line for the
// chiclet back office.
package cli

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	identityapp "github.com/chiclet/backend/internal/application/identity"
	"github.com/chiclet/backend/internal/domain/shared"
	"github.com/chiclet/backend/internal/infrastructure/logger"
)

// AdminUsers is the slice of the user service the admin commands drive
type AdminUsers interface {
	CreateAdmin(ctx context.Context, req identityapp.CreateAdminRequest) (*identityapp.UserResponse, error)
	ListAdmins(ctx context.Context, q identityapp.UserListQuery) (*shared.Paginated[identityapp.UserResponse], error)
	SetActiveByEmail(ctx context.Context, email string, active bool) (*identityapp.UserResponse, error)
}

// UsersOpener connects to the backing stores. The returned func releases them.
type UsersOpener func(ctx context.Context, log *zap.Logger) (AdminUsers, func(), error)

// Options wires the commands to their dependencies
type Options struct {
	// OpenUsers defaults to OpenFromConfig
	OpenUsers UsersOpener
}

type state struct {
	opts     Options
	logLevel string
	log      *zap.Logger
}

// NewRootCommand builds the chicletctl command tree
func NewRootCommand(opts Options) *cobra.Command {
	if opts.OpenUsers == nil {
		opts.OpenUsers = OpenFromConfig
	}
	st := &state{opts: opts}

	root := &cobra.Command{
		Use:          "chicletctl",
		Short:        "Operate the chiclet store back office",
		SilenceUsage: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			log, err := logger.New(&logger.Config{
				Level:  st.logLevel,
				Format: "console",
				Output: "stderr",
			})
			if err != nil {
				return err
			}
			st.log = log
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if st.log != nil {
				_ = st.log.Sync()
			}
		},
	}
	root.PersistentFlags().StringVar(&st.logLevel, "log-level", "warn", "debug, info, warn or error")

	root.AddCommand(newAdminCommand(st), newWebhookCommand())
	return root
}

// withUsers opens the user service for the duration of fn
func (st *state) withUsers(ctx context.Context, fn func(AdminUsers) error) error {
	users, closeFn, err := st.opts.OpenUsers(ctx, st.log)
	if err != nil {
		return err
	}
	if closeFn != nil {
		defer closeFn()
	}
	return fn(users)
}

// Package cli implements the tokenctl commands.
package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/tendant/simple-token/pkg/token"
)

// StoreOpener connects the stores a command needs. The returned func
// releases them.
type StoreOpener func(ctx context.Context) (token.Stores, func(), error)

// Defaults seed flag defaults from the environment
type Defaults struct {
	JwtSecret   string
	JwtIssuer   string
	JwtAudience string
	CallerTTL   time.Duration
}

// NewRootCmd builds tokenctl. Commands that read stores act as the system
// caller and skip capability checks.
func NewRootCmd(open StoreOpener, defaults Defaults) *cobra.Command {
	root := &cobra.Command{
		Use:   "tokenctl",
		Short: "Issue and inspect service tokens",
		Long: `Issue and inspect long-lived service tokens.

tokenctl talks to the token database directly and acts as an operator, so
capability checks do not apply.`,
		SilenceUsage: true,
	}

	root.AddCommand(
		newGetTokenCmd(open),
		newFieldsCmd(open),
		newServicesCmd(open),
		newCallerTokenCmd(defaults),
	)
	return root
}

package cli

import (
	"fmt"

	"github.com/rileyhilliard/sysdeck/internal/backend"
	"github.com/rileyhilliard/sysdeck/internal/errors"
	"github.com/rileyhilliard/sysdeck/internal/gateway"
	"github.com/rileyhilliard/sysdeck/internal/logger"
	"github.com/spf13/cobra"
)

// backend command flags
var (
	backendCodec string
	backendList  bool
)

// backendCmd answers one gateway command on this host
var backendCmd = &cobra.Command{
	Use:    "backend <command>",
	Short:  "Answer one gateway command (used by the process and ssh transports)",
	Hidden: true,
	Long: `Read encoded arguments from stdin, run one backend command, and
write the response envelope to stdout.

The process and ssh gateway transports start this on the target host;
running it by hand is useful when a transport misbehaves.

Examples:
  echo '{}' | sysdeck backend get_system_info
  sysdeck backend --list`,
	Args: cobra.MaximumNArgs(1),
	// The backend never loads config and writes nothing but the envelope.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logger.NewEnvLogger("[sysdeck backend]")
		reg := backend.NewRegistry(backend.New(backend.WithLogger(log)), log)

		if backendList {
			for _, c := range reg.Commands() {
				fmt.Fprintln(cmd.OutOrStdout(), c)
			}
			return nil
		}
		if len(args) == 0 {
			return errors.New(errors.ErrConfig,
				"No backend command given",
				"Run 'sysdeck backend --list' to see the commands.")
		}

		codec, err := gateway.CodecByName(backendCodec)
		if err != nil {
			return err
		}
		return gateway.Serve(cmd.Context(), reg, args[0], codec, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func init() {
	backendCmd.Flags().StringVar(&backendCodec, "codec", gateway.CodecJSON, "wire codec: json or cbor")
	backendCmd.Flags().BoolVar(&backendList, "list", false, "list the commands this backend answers")
	rootCmd.AddCommand(backendCmd)
}

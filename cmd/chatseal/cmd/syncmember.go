package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var syncMemberCmd = &cobra.Command{
	Use:   "sync-member <user-id>",
	Short: "Grant an admitted member access to existing chat keys",
	Long: `Extend the workspace's established chat keys to a newly admitted
member. Chats without keys and chats the member can already access are
skipped. Requires an unlocked session and the --chats list.`,
	Args: cobra.ExactArgs(1),
	RunE: runSyncMember,
}

func init() {
	rootCmd.AddCommand(syncMemberCmd)
}

func runSyncMember(cmd *cobra.Command, args []string) error {
	if err := unlock(cmd); err != nil {
		return err
	}

	granted, err := client.SyncNewMember(cmd.Context(), viper.GetString("workspace"), args[0])
	if err != nil {
		return err
	}
	fmt.Printf("granted %d chat key(s) to %s\n", granted, args[0])
	return nil
}

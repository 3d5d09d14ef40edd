package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show session and store status",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	fmt.Println("Chatseal Status")
	fmt.Println("===============")
	fmt.Printf("Store Path: %s\n", viper.GetString("store.path"))
	fmt.Printf("Workspace:  %s\n", viper.GetString("workspace"))

	user := viper.GetString("user")
	cred := viper.GetString("credential")
	if user == "" || cred == "" {
		fmt.Println("Session:    locked (no user/credential configured)")
		return nil
	}

	if err := client.Unlock(cmd.Context(), user, cred); err != nil {
		fmt.Printf("Session:    unlock failed: %v\n", err)
		return nil
	}
	fmt.Printf("Session:    unlocked as %s\n", client.Owner())
	return nil
}

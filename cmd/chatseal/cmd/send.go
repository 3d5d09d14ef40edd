package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var sendPlaintext bool

var sendCmd = &cobra.Command{
	Use:   "send <chat-id> <text>...",
	Short: "Send a message to a chat",
	Long: `Encrypt and store a message. The chat's content key is provisioned
for all configured workspace members on first use. Pass --plaintext to
store the message unencrypted instead.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runSend,
}

func init() {
	sendCmd.Flags().BoolVar(&sendPlaintext, "plaintext", false, "store the message without encryption")
	rootCmd.AddCommand(sendCmd)
}

func runSend(cmd *cobra.Command, args []string) error {
	chatID := args[0]
	text := strings.Join(args[1:], " ")

	if sendPlaintext {
		msg, err := client.SendPlaintext(cmd.Context(), chatID, viper.GetString("user"), text)
		if err != nil {
			return err
		}
		fmt.Printf("sent %s (plaintext)\n", msg.ID)
		return nil
	}

	if err := unlock(cmd); err != nil {
		return err
	}

	msg, err := client.SendMessage(cmd.Context(), chatID, text)
	if err != nil {
		return err
	}
	fmt.Printf("sent %s (encrypted, key v%d)\n", msg.ID, msg.EncryptionKeyVersion)
	return nil
}

package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	chatseal "github.com/chatseal/client-go"
)

var readCmd = &cobra.Command{
	Use:   "read <chat-id>",
	Short: "Read a chat's messages",
	Long: `Print a chat's messages in order, decrypting each one. Messages
that cannot be decrypted are shown with a placeholder instead of failing
the whole listing.`,
	Args: cobra.ExactArgs(1),
	RunE: runRead,
}

func init() {
	rootCmd.AddCommand(readCmd)
}

func runRead(cmd *cobra.Command, args []string) error {
	if err := unlock(cmd); err != nil {
		return err
	}

	msgs, err := client.Messages(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	for _, msg := range msgs {
		text, err := client.DecryptMessage(cmd.Context(), msg)
		if err != nil {
			var derr *chatseal.DecryptError
			if errors.As(err, &derr) {
				text = chatseal.PlaceholderUnrecoverable
			} else {
				return err
			}
		}
		marker := " "
		if msg.IsEncrypted {
			marker = "*"
		}
		fmt.Printf("%s %s %-12s %s\n", msg.CreatedAt.Format("2006-01-02 15:04:05"), marker, msg.SenderID, text)
	}
	return nil
}

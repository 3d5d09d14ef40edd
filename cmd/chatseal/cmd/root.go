package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	chatseal "github.com/chatseal/client-go"
	"github.com/chatseal/client-go/persist"
)

var (
	storePath   string
	userID      string
	credential  string
	workspaceID string
	members     []string
	chats       []string
	verbose     bool

	client *chatseal.Client
	store  persist.Store
)

// rootCmd is the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "chatseal",
	Short: "Encrypted workspace chat client",
	Long: `A command line client for encrypted workspace chat. Messages are
encrypted with per-chat content keys; chat keys are granted per user and
unlocked with the user's credential. Nothing secret is stored unsealed.`,
	SilenceUsage:       true,
	PersistentPreRunE:  initClient,
	PersistentPostRunE: closeClient,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&storePath, "store-path", "p", "", "path to the local database (default $HOME/.chatseal)")
	rootCmd.PersistentFlags().StringVarP(&userID, "user", "u", "", "user identifier (or CHATSEAL_USER)")
	rootCmd.PersistentFlags().StringVar(&credential, "credential", "", "session credential (or CHATSEAL_CREDENTIAL)")
	rootCmd.PersistentFlags().StringVarP(&workspaceID, "workspace", "w", "", "workspace identifier")
	rootCmd.PersistentFlags().StringSliceVar(&members, "members", nil, "workspace member user IDs")
	rootCmd.PersistentFlags().StringSliceVar(&chats, "chats", nil, "workspace chat IDs")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	bindFlagOrPanic("store.path", "store-path")
	bindFlagOrPanic("user", "user")
	bindFlagOrPanic("credential", "credential")
	bindFlagOrPanic("workspace", "workspace")
}

func bindFlagOrPanic(configKey, flagName string) {
	if err := viper.BindPFlag(configKey, rootCmd.PersistentFlags().Lookup(flagName)); err != nil {
		panic(fmt.Sprintf("failed to bind %s flag: %v", flagName, err))
	}
}

func initConfig() {
	// A .env in the working directory is optional.
	_ = godotenv.Load()

	viper.SetEnvPrefix("CHATSEAL")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if home, err := os.UserHomeDir(); err == nil {
		viper.SetDefault("store.path", home+"/.chatseal")
	} else {
		viper.SetDefault("store.path", ".chatseal")
	}
}

func initClient(cmd *cobra.Command, args []string) error {
	logger := logrus.New()
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.WarnLevel)
	}

	var err error
	store, err = persist.NewStore(persist.Config{
		Type:   persist.StoreTypeBadger,
		Path:   viper.GetString("store.path"),
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}

	dir := chatseal.NewStaticDirectory()
	ws := viper.GetString("workspace")
	for _, m := range members {
		dir.AddMember(ws, m)
	}
	for _, c := range chats {
		dir.AddChat(ws, c)
	}

	client, err = chatseal.New(
		chatseal.WithPersistStore(store),
		chatseal.WithWorkspace(ws),
		chatseal.WithDirectory(dir),
		chatseal.WithLogger(logger),
	)
	if err != nil {
		store.Close()
		return fmt.Errorf("create client: %w", err)
	}
	return nil
}

func closeClient(cmd *cobra.Command, args []string) error {
	if client != nil {
		if err := client.Close(); err != nil {
			return err
		}
	}
	if store != nil {
		return store.Close()
	}
	return nil
}

// unlock starts a session from the configured user and credential.
func unlock(cmd *cobra.Command) error {
	user := viper.GetString("user")
	cred := viper.GetString("credential")
	if user == "" || cred == "" {
		return fmt.Errorf("--user and --credential are required (or CHATSEAL_USER / CHATSEAL_CREDENTIAL)")
	}
	return client.Unlock(cmd.Context(), user, cred)
}

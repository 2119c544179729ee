package subcmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/grocyscan/grocy-scanner/kernel/model"
	"github.com/grocyscan/grocy-scanner/kernel/store"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func init() {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the add-on options file",
	}
	configCmd.AddCommand(NewSetKeyCommand())
	RootCmd.AddCommand(configCmd)
}

func NewSetKeyCommand() *cobra.Command {
	setKeyCmd := &SetKeyCommand{}

	cmd := &cobra.Command{
		Use:   "set-key [api-key]",
		Short: "Save the grocy api key, prompting for it when not given",
		Args:  cobra.MaximumNArgs(1),
		RunE:  setKeyCmd.run,
	}

	cmd.Flags().StringVar(&setKeyCmd.OptionsPath, "options", "", "path to the add-on options file (overrides config)")

	return cmd
}

type SetKeyCommand struct {
	OptionsPath string
}

func (s *SetKeyCommand) run(cmd *cobra.Command, args []string) error {
	optionsPath := s.OptionsPath
	if optionsPath == "" {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		optionsPath = cfg.OptionsPath
	}

	var key string
	if len(args) == 1 {
		key = args[0]
	} else {
		var err error
		if key, err = promptKey(cmd); err != nil {
			return err
		}
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return model.ErrMissingCredential
	}

	if err := store.NewFileStore(optionsPath).SaveAPIKey(key); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "saved api key [%s] to [%s]\n", model.Fingerprint(key), optionsPath)
	return nil
}

func promptKey(cmd *cobra.Command) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("api key argument required when stdin is not a terminal")
	}
	_, _ = fmt.Fprint(cmd.ErrOrStderr(), "Grocy API key: ")
	data, err := term.ReadPassword(fd)
	_, _ = fmt.Fprintln(cmd.ErrOrStderr())
	if err != nil {
		return "", fmt.Errorf("failed to read api key: %w", err)
	}
	return string(data), nil
}

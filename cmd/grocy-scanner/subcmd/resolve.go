/*
	(c) Copyright NetFoundry Inc. Inc.

	Licensed under the Apache License, Version 2.0 (the "License");
	you may not use this file except in compliance with the License.
	You may obtain a copy of the License at

	https://www.apache.org/licenses/LICENSE-2.0

	Unless required by applicable law or agreed to in writing, software
	distributed under the License is distributed on an "AS IS" BASIS,
	WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
	See the License for the specific language governing permissions and
	limitations under the License.
*/

package subcmd

import (
	"fmt"

	"github.com/grocyscan/grocy-scanner/kernel/engine"
	"github.com/grocyscan/grocy-scanner/kernel/grocy"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func init() {
	RootCmd.AddCommand(NewResolveCommand())
}

func NewResolveCommand() *cobra.Command {
	resolveCmd := &ResolveCommand{}

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Locate grocy through the supervisor, test the api key and save the resolved url",
		Args:  cobra.NoArgs,
		RunE:  resolveCmd.resolve,
	}

	cmd.Flags().StringVar(&resolveCmd.APIKey, "api-key", "", "grocy api key to test (defaults to the stored key)")
	cmd.Flags().StringVar(&resolveCmd.OptionsPath, "options", "", "path to the add-on options file (overrides config)")
	cmd.Flags().BoolVar(&resolveCmd.DryRun, "dry-run", false, "only locate grocy, do not test or save anything")
	cmd.Flags().BoolVar(&resolveCmd.UseMemoryStore, "memory", false, "use in-memory options store")

	return cmd
}

type ResolveCommand struct {
	APIKey         string
	OptionsPath    string
	DryRun         bool
	UseMemoryStore bool
}

func (r *ResolveCommand) resolve(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if r.OptionsPath != "" {
		cfg.OptionsPath = r.OptionsPath
	}

	resolver, err := newResolver(cfg)
	if err != nil {
		return err
	}

	if r.DryRun {
		baseURL, err := resolver.Resolve(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to locate grocy: %w", err)
		}
		logrus.Infof("dry-run: grocy located at [%s]", baseURL)
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), baseURL)
		return nil
	}

	optionsStore := newOptionsStore(cfg, r.UseMemoryStore)
	reconciler := engine.NewReconciler(optionsStore, cfg, resolver, grocy.NewClient(cfg.GrocyTimeout()))
	result, err := reconciler.Reconcile(cmd.Context(), r.APIKey)
	if err != nil {
		return fmt.Errorf("reconciliation failed: %w", err)
	}
	if !result.Result.OK() {
		return fmt.Errorf("grocy at [%s] answered %s: %s", result.BaseURL, result.Result.Outcome, result.Result.Message)
	}

	logrus.Infof("resolve: grocy reachable at [%s], resolved url saved", result.BaseURL)
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), result.BaseURL)
	return nil
}

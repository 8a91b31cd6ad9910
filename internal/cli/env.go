package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// EnvLookup resolves an environment variable, like [os.LookupEnv].
type EnvLookup func(key string) (string, bool)

// RootOpt configures the command tree built by [NewRootCmd].
type RootOpt func(*RootArgs)

// WithEnvLookup replaces [os.LookupEnv] as the source of flag defaults.
func WithEnvLookup(lookup EnvLookup) RootOpt {
	return func(ra *RootArgs) {
		ra.lookupEnv = lookup
	}
}

// envName returns the variable bound to a flag, e.g. "log-level" is read
// from TAGRSS_LOG_LEVEL. Flags of different subcommands that share a name
// share a variable.
func envName(flag *pflag.Flag) string {
	return strings.ToUpper(cmdName + "_" + strings.ReplaceAll(flag.Name, "-", "_"))
}

// annotateEnv adds the bound variable to the usage of every flag in the tree,
// so that it is listed in help output.
func annotateEnv(cmd *cobra.Command) {
	annotate := func(flag *pflag.Flag) {
		suffix := fmt.Sprintf(" ($%s)", envName(flag))
		if !strings.HasSuffix(flag.Usage, suffix) {
			flag.Usage += suffix
		}
	}

	cmd.LocalNonPersistentFlags().VisitAll(annotate)
	cmd.PersistentFlags().VisitAll(annotate)

	for _, sub := range cmd.Commands() {
		annotateEnv(sub)
	}
}

// applyEnv sets each flag of the executing command, including inherited
// ones, that was not given on the command line from its variable.
// Arguments take precedence over variables, which take precedence over
// defaults. Invalid values are returned as errors.
func applyEnv(cmd *cobra.Command, lookup EnvLookup) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}

	var errs []error

	cmd.Flags().VisitAll(func(flag *pflag.Flag) {
		if flag.Changed || flag.Name == "help" || flag.Name == "version" {
			return
		}

		name := envName(flag)

		value, ok := lookup(name)
		if !ok {
			return
		}

		err := cmd.Flags().Set(flag.Name, value)
		if err != nil {
			errs = append(errs, fmt.Errorf("$%s: %w", name, err))
		}
	})

	return errors.Join(errs...)
}

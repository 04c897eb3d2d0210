package cobra

import (
	"fmt"
	"io"
	goruntime "runtime"

	"github.com/spf13/cobra"

	"github.com/NielsdaWheelz/governor/internal/commands"
	"github.com/NielsdaWheelz/governor/internal/config"
	"github.com/NielsdaWheelz/governor/internal/privilege"
	"github.com/NielsdaWheelz/governor/internal/tracing"
	"github.com/NielsdaWheelz/governor/internal/version"
)

// newRuntime loads configuration and wires the runtime for one command.
// Tracing is enabled by --trace or the trace_file config key; a trace file
// that cannot be opened is reported and otherwise ignored.
func newRuntime(cmd *cobra.Command) (*commands.Runtime, error) {
	id := privilege.OSIdentity{}
	cfg, err := loadConfig(id)
	if err != nil {
		return nil, err
	}

	if traceFile := resolveTraceFile(cmd.ErrOrStderr(), cfg, globalOpts.Trace, privilege.Delegated(id)); traceFile != "" {
		if err := tracing.Init("governor", version.FullVersion(), traceFile); err != nil {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "warning: tracing disabled: %v\n", err)
		}
	}

	rt := commands.NewRuntime(cfg)
	rt.Stdin = cmd.InOrStdin()
	return rt, nil
}

// loadConfig resolves configuration for the process identity id.
// Root acting for another account reads only the system config file.
func loadConfig(id privilege.Identity) (config.Config, error) {
	if privilege.Delegated(id) {
		return config.LoadElevated(goruntime.GOOS)
	}
	return config.Load(config.OSEnv{}, goruntime.GOOS)
}

// resolveTraceFile picks the trace destination. --trace wins over trace_file
// unless the process is delegated, where it is ignored with a warning.
func resolveTraceFile(stderr io.Writer, cfg config.Config, flag string, delegated bool) string {
	if flag == "" {
		return cfg.TraceFile
	}
	if delegated {
		_, _ = fmt.Fprintln(stderr, "warning: --trace is ignored under sudo; set trace_file in "+config.DefaultConfigPath)
		return cfg.TraceFile
	}
	return flag
}

// completeJobNames offers registered job names for the first positional argument.
func completeJobNames(cmd *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	cfg, err := loadConfig(privilege.OSIdentity{})
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return commands.JobNames(cmd.Context(), commands.NewRuntime(cfg)), cobra.ShellCompDirectiveNoFileComp
}

package cli

import (
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/roach88/slimecats/internal/identity"
)

// KeygenOptions holds flags for the keygen command.
type KeygenOptions struct {
	*RootOptions
	Scheme string
}

// NewKeygenCommand creates the keygen command.
func NewKeygenCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &KeygenOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "keygen <shortname>",
		Short: "Generate an author keypair",
		Long: `Generate a new author keypair and print it as a config snippet.

The shortname is 4 characters, lowercase letters and digits, starting with
a letter.

Example:
  slimecats keygen suzy >> slimecats.yaml
  slimecats keygen suzy --scheme dilithium3`,
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{annotationNoConfig: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKeygen(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Scheme, "scheme", string(identity.SchemeEd25519), "signature scheme (ed25519|dilithium3)")

	return cmd
}

func runKeygen(opts *KeygenOptions, shortname string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	kp, err := identity.Generate(shortname, identity.Scheme(opts.Scheme))
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeUsage, "failed to generate keypair", err)
	}

	snippet, err := yaml.Marshal(struct {
		Author identity.Keypair `yaml:"author"`
	}{kp})
	if err != nil {
		return f.Fail(ExitFailure, ErrCodeUsage, "failed to encode keypair", err)
	}
	return f.Result(kp, string(snippet))
}

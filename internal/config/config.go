// Package config evaluates Shelly configuration files (~/.shellyrc by default)
// against an interpreter. Files are YAML unless their extension says otherwise.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"shelly/internal/commands"
	"shelly/internal/completion"
	"shelly/internal/dispatch"
	"shelly/internal/logger"
	"shelly/internal/shell"
)

// FileName is the configuration file looked up in the home directory.
const FileName = ".shellyrc"

// ErrInvalidValue is returned when a configuration key holds a value of the wrong shape.
var ErrInvalidValue = errors.New("invalid configuration value")

var typedExtensions = []string{"json", "toml", "yaml", "yml"}

// CommandSpec declares a special command in a configuration file. Its body runs
// Run followed by the command's arguments on the default shell.
type CommandSpec struct {
	Name        string `mapstructure:"name"`
	Description string `mapstructure:"description"`
	Usage       string `mapstructure:"usage"`
	Run         string `mapstructure:"run"`
}

// DefaultPath returns ~/.shellyrc.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate home directory: %w", err)
	}
	return filepath.Join(home, FileName), nil
}

// Load reads path from the interpreter's filesystem and applies every key it sets.
// It has the shell.ConfigLoader signature.
func Load(path string, in *shell.Interpreter) error {
	v := viper.New()
	v.SetFs(in.Filesystem())
	v.SetConfigFile(path)
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if !slices.Contains(typedExtensions, ext) {
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	return Apply(v, filepath.Dir(path), in)
}

var _ shell.ConfigLoader = Load

// Apply configures in from the keys set in v. Relative paths (env_file,
// history_file) are resolved against dir.
func Apply(v *viper.Viper, dir string, in *shell.Interpreter) error {
	log := logger.NewStyledLogger("Config")

	if v.IsSet("env_file") {
		path := resolvePath(dir, v.GetString("env_file"))
		if err := loadEnvFile(in.Filesystem(), path); err != nil {
			return err
		}
		log.Debug("Loaded environment file", "path", path)
	}

	if v.IsSet("prefix") {
		in.SetPrefix(v.GetString("prefix"))
	}
	if v.IsSet("suffix") {
		in.SetSuffix(v.GetString("suffix"))
	}
	if v.IsSet("quote_input") {
		in.SetQuoteInput(v.GetBool("quote_input"))
	}
	if v.IsSet("history_file") {
		in.SetHistoryFile(resolvePath(dir, v.GetString("history_file")))
	}

	if v.IsSet("prompt") {
		prompt := v.GetString("prompt")
		if v.IsSet("continuation_prompt") {
			continuation := v.GetString("continuation_prompt")
			in.SetPrompt(func(c bool) string {
				if c {
					return continuation
				}
				return prompt
			})
		} else {
			in.SetStaticPrompt(prompt)
		}
	}

	if err := applyShellEscape(v, in); err != nil {
		return err
	}
	if err := applyCompletion(v, in); err != nil {
		return err
	}

	var specs []CommandSpec
	if err := v.UnmarshalKey("commands", &specs); err != nil {
		return fmt.Errorf("%w: commands: %v", ErrInvalidValue, err)
	}
	for _, spec := range specs {
		cmd, err := spec.Command()
		if err != nil {
			return err
		}
		if err := in.AddCommand(cmd); err != nil {
			return fmt.Errorf("failed to add command '%s': %w", spec.Name, err)
		}
		log.Debug("Registered configured command", "command", spec.Name)
	}
	return nil
}

// Command builds the special command described by spec.
func (spec CommandSpec) Command() (*commands.Command, error) {
	if !commands.ValidName(spec.Name) {
		return nil, fmt.Errorf("%w (given: '%s')", commands.ErrInvalidName, spec.Name)
	}
	if strings.TrimSpace(spec.Run) == "" {
		return nil, fmt.Errorf("%w: command '%s' has nothing to run", ErrInvalidValue, spec.Name)
	}

	run := spec.Run
	return commands.New(spec.Name, spec.Description, spec.Usage, func(sh commands.Shell, args string) error {
		line := strings.TrimSpace(run + " " + args)
		if _, err := sh.Exec(line); err != nil {
			fmt.Fprintf(sh.Stderr(), "shelly: %v\n", err)
		}
		return nil
	}), nil
}

func applyShellEscape(v *viper.Viper, in *shell.Interpreter) error {
	if !v.IsSet("shell_escape") {
		return nil
	}
	switch value := v.Get("shell_escape").(type) {
	case bool:
		if value {
			in.SetShellEscape(dispatch.DefaultEscapeMarker)
		} else {
			in.DisableShellEscape()
		}
	case string:
		in.SetShellEscape(value)
	default:
		return fmt.Errorf("%w: shell_escape must be a boolean or a marker, got %T", ErrInvalidValue, value)
	}
	return nil
}

func applyCompletion(v *viper.Viper, in *shell.Interpreter) error {
	if !v.IsSet("completion") && !v.IsSet("completions") {
		return nil
	}

	policy := in.Completer().Policy()
	if v.IsSet("completion") {
		parsed, err := completion.ParsePolicy(v.GetString("completion"))
		if err != nil {
			return err
		}
		policy = parsed
	}

	if v.IsSet("completions") {
		in.SetCompletion(policy, WordList(v.GetStringSlice("completions")))
	} else {
		in.SetCompletionPolicy(policy)
	}
	return nil
}

// WordList returns a completion.Func offering the words that start with the typed text.
func WordList(words []string) completion.Func {
	words = slices.Clone(words)
	return func(word string) []string {
		matches := []string{}
		for _, w := range words {
			if strings.HasPrefix(w, word) {
				matches = append(matches, w)
			}
		}
		return matches
	}
}

// loadEnvFile exports the variables in path that the environment does not already define.
func loadEnvFile(fs afero.Fs, path string) error {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return fmt.Errorf("failed to read env file %s: %w", path, err)
	}
	envMap, err := godotenv.Unmarshal(string(data))
	if err != nil {
		return fmt.Errorf("failed to parse env file %s: %w", path, err)
	}
	for key, value := range envMap {
		if _, exists := os.LookupEnv(key); exists {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			return fmt.Errorf("failed to set %s: %w", key, err)
		}
	}
	return nil
}

func resolvePath(dir, path string) string {
	if rest, ok := strings.CutPrefix(path, "~/"); ok {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, rest)
		}
	}
	if filepath.IsAbs(path) || dir == "" {
		return path
	}
	return filepath.Join(dir, path)
}

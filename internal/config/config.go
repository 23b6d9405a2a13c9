// Package config resolves the invocation settings from the environment or
// the command line.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Environment variable names honored for provisioning controllers that
// cannot pass command-line arguments to inventory scripts.
const (
	EnvURL       = "URL"
	EnvInventory = "INVENTORY"
	EnvSSHKey    = "SSHKEY"
	EnvRef       = "COMMIT"
)

// Settings holds everything one invocation needs. It is resolved exactly
// once, before any repository or inventory work starts.
type Settings struct {
	// URL is the git repository connection string.
	URL string

	// Inventory is the path of the inventory file inside the repository.
	Inventory string

	// SSHKey optionally points to an alternative SSH private key for the
	// fetch.
	SSHKey string

	// Ref optionally selects a branch, tag or commit.
	Ref string
}

// Flags carries the optional command-line values used when the environment
// does not provide the settings.
type Flags struct {
	SSHKey string
	Ref    string
}

// NewEnv returns a viper instance bound to the environment variables this
// program understands.
func NewEnv() *viper.Viper {
	v := viper.New()
	_ = v.BindEnv("url", EnvURL)
	_ = v.BindEnv("inventory", EnvInventory)
	_ = v.BindEnv("sshkey", EnvSSHKey)
	_ = v.BindEnv("commit", EnvRef)
	return v
}

// Resolve builds the settings. When both URL and INVENTORY environment
// variables are present and non-empty the environment wins and the
// command-line arguments and flags are ignored entirely; otherwise the two
// positional arguments <url> <inventory> are required.
func Resolve(v *viper.Viper, args []string, flags Flags) (*Settings, error) {
	if s := fromEnv(v); s != nil {
		return s, nil
	}

	if len(args) != 2 {
		return nil, fmt.Errorf("expected <url> <inventory> arguments when %s and %s are not set", EnvURL, EnvInventory)
	}

	s := &Settings{
		URL:       args[0],
		Inventory: args[1],
		SSHKey:    flags.SSHKey,
		Ref:       flags.Ref,
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func fromEnv(v *viper.Viper) *Settings {
	url := v.GetString("url")
	inv := v.GetString("inventory")
	if url == "" || inv == "" {
		return nil
	}
	return &Settings{
		URL:       url,
		Inventory: inv,
		SSHKey:    v.GetString("sshkey"),
		Ref:       v.GetString("commit"),
	}
}

func (s *Settings) validate() error {
	if s.URL == "" {
		return fmt.Errorf("repository URL cannot be empty")
	}
	if s.Inventory == "" {
		return fmt.Errorf("inventory path cannot be empty")
	}
	return nil
}

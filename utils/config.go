package utils

import (
	"fmt"
	"os"

	"dario.cat/mergo"
	"github.com/kelseyhightower/envconfig"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/Jds-23/curly-octo-memory/config"
	"github.com/Jds-23/curly-octo-memory/types"
)

// Config is the globally accessible configuration
var Config *types.Config

// ReadConfig will process a configuration
func ReadConfig(cfg *types.Config, path string) error {
	err := readConfigFile(cfg, path)
	if err != nil {
		return err
	}

	err = readConfigEnv(cfg)
	if err != nil {
		return fmt.Errorf("error reading config environment: %v", err)
	}

	// merge defaults for anything the file left unset
	defaults := &types.Config{}
	err = yaml.Unmarshal([]byte(config.DefaultConfigYml), defaults)
	if err != nil {
		return fmt.Errorf("error decoding embedded default config: %v", err)
	}
	err = mergo.Merge(cfg, defaults)
	if err != nil {
		return fmt.Errorf("error merging default config: %v", err)
	}

	// single endpoint shorthand per chain
	for idx := range cfg.Chains {
		chain := &cfg.Chains[idx]
		if chain.Endpoints == nil && chain.Endpoint != "" {
			chain.Endpoints = []types.EndpointConfig{
				{
					Url:  chain.Endpoint,
					Name: "default",
				},
			}
		}
		if len(chain.Endpoints) == 0 {
			return fmt.Errorf("missing rpc endpoints for chain %v (need at least 1 endpoint per configured chain)", chain.Name)
		}
		if chain.ChainId == "" {
			return fmt.Errorf("missing chainId for chain %v", chain.Name)
		}
	}

	if len(cfg.Chains) == 0 {
		return fmt.Errorf("missing chain configuration (need at least 1 chain to run the service)")
	}

	log.WithFields(log.Fields{
		"chains":     len(cfg.Chains),
		"balanceApi": cfg.BalanceApi.Endpoint,
		"mintApi":    cfg.MintApi.Endpoint,
	}).Infof("did init config")

	return nil
}

func readConfigFile(cfg *types.Config, path string) error {
	if path == "" {
		return yaml.Unmarshal([]byte(config.DefaultConfigYml), cfg)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("error opening config file %v: %v", path, err)
	}
	defer f.Close()

	decoder := yaml.NewDecoder(f)
	err = decoder.Decode(cfg)
	if err != nil {
		return fmt.Errorf("error decoding config file %v: %v", path, err)
	}

	return nil
}

func readConfigEnv(cfg *types.Config) error {
	return envconfig.Process("", cfg)
}

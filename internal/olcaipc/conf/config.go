package conf

import (
	"encoding/json"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/Fergus4506/olca-ipc-container/pkg/config"
)

const (
	AppName      = "olcaipc"
	EnvPrefix    = "OLCAIPC"
	EnvConfigDir = "OLCAIPC_DIR"
)

// Load reads the config file under configPath (or $OLCAIPC_DIR, or
// ~/.olcaipc), the OLCAIPC_* environment and the command line overrides in
// cmdConf, in increasing priority.
func Load(configPath string, cmdConf map[string]any) (*Config, *config.Manager, error) {

	if configPath == "" {
		configPath = os.Getenv(EnvConfigDir)
	}

	cm, err := config.New(AppName, configPath, "", EnvPrefix, false)
	if err != nil {
		log.Error().Err(err).Msg("load config failed")
		return nil, nil, err
	}

	conf := &Config{}
	config.SetDefaults(cm.Viper, conf, Defaults)

	for key, value := range cmdConf {
		cm.SetConfig(key, value)
	}

	if err := cm.Load(conf); err != nil {
		log.Error().Err(err).Msg("load config failed")
		return nil, nil, err
	}

	if err := conf.Validate(); err != nil {
		return nil, nil, err
	}

	b, _ := json.Marshal(conf)
	log.Debug().Msgf("config: %s", string(b))

	return conf, cm, nil
}

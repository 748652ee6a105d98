package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/annchain/bondledger/common"
	"github.com/annchain/bondledger/common/io"
	"github.com/annchain/bondledger/common/utilfuncs"
	"github.com/spf13/viper"
)

// readConfig loads configdir/config.toml if present, then the injected
// overrides, then the environment.
func readConfig() {
	configPath := io.FixPrefixPath(viper.GetString("configdir"), "config.toml")
	if io.FileExists(configPath) {
		mergeLocalConfig(configPath)
	}

	// load injected config from the deployer if any
	injectedPath := io.FixPrefixPath(viper.GetString("configdir"), "injected.toml")
	if io.FileExists(injectedPath) {
		mergeLocalConfig(injectedPath)
	}

	mergeEnvConfig()
	// print running config in console.
	b, err := common.PrettyJson(viper.AllSettings())
	utilfuncs.PanicIfError(err, "dump json")
	fmt.Println(b)
}

func mergeEnvConfig() {
	// env override
	viper.SetEnvPrefix("bondledger")
	viper.AutomaticEnv()
}

func mergeLocalConfig(configPath string) {
	absPath, err := filepath.Abs(configPath)
	utilfuncs.PanicIfError(err, fmt.Sprintf("Error on parsing config file path: %s", absPath))

	file, err := os.Open(absPath)
	utilfuncs.PanicIfError(err, fmt.Sprintf("Error on opening config file: %s", absPath))
	defer file.Close()

	viper.SetConfigType("toml")
	err = viper.MergeConfig(file)
	utilfuncs.PanicIfError(err, fmt.Sprintf("Error on reading config file: %s", absPath))
}

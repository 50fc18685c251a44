package core

import (
	"os"
	"path/filepath"
)

type Paths struct {
	HomeDir    string
	DataDir    string
	ConfigFile string
	LogFile    string
	CatalogDB  string
}

var defaultPaths *Paths

func ensureDefaultPaths() {
	if defaultPaths == nil {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			panic(err)
		}

		dataDir := filepath.Join(homeDir, ".local", "share", "gsuggest")
		defaultPaths = &Paths{
			HomeDir:    homeDir,
			DataDir:    dataDir,
			ConfigFile: filepath.Join(homeDir, ".config", "gsuggest", "config.yaml"),
			LogFile:    filepath.Join(dataDir, "gsuggest.log"),
			CatalogDB:  filepath.Join(dataDir, "catalog.db"),
		}

		err = os.MkdirAll(defaultPaths.DataDir, 0755)
		if err != nil {
			panic(err)
		}
	}
}

func HomeDir() string {
	ensureDefaultPaths()
	return defaultPaths.HomeDir
}

func DataDir() string {
	ensureDefaultPaths()
	return defaultPaths.DataDir
}

func ConfigFile() string {
	ensureDefaultPaths()
	return defaultPaths.ConfigFile
}

func LogFile() string {
	ensureDefaultPaths()
	return defaultPaths.LogFile
}

func CatalogDB() string {
	ensureDefaultPaths()
	return defaultPaths.CatalogDB
}

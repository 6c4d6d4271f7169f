package config

import "os"

func IsDebug() bool {
	return os.Getenv("EMBER_DEBUG") == "1"
}

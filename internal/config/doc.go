// Package config loads usekit project configuration.
//
// The configuration is read from usekit.json, usekit.toml or usekit.yaml in
// the project directory. Every field is optional; missing values take the
// defaults of the hooks they configure.
//
// # Configuration File Structure
//
//	{
//	  "name": "dashboard",
//	  "swr": {
//	    "maxAge": "30s",
//	    "swr": "5m",
//	    "revalidateOnFocus": true,
//	    "focusThrottleInterval": "5s",
//	    "timeout": "5s",
//	    "shouldTimeoutInvalid": false
//	  },
//	  "storage": {
//	    "driver": "file",
//	    "path": ".usekit/storage.json"
//	  },
//	  "server": {
//	    "addr": "localhost:7400",
//	    "metrics": true
//	  },
//	  "log": {
//	    "level": "info",
//	    "format": "text"
//	  }
//	}
//
// The same structure in TOML:
//
//	[swr]
//	maxAge = "30s"
//
//	[storage]
//	driver = "postgres"
//	dsn = "postgres://localhost/usekit"
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	_, user := swr.UseSWR("user", fetchUser, swr.WithConfig(cfg.SWR.Apply()))
package config

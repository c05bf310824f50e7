// Package config provides configuration parsing for modelview.
//
// The configuration is optional. When present it is stored in
// modelview.json in the working directory (or passed with --config).
// Command-line flags override file values.
//
// # Configuration File Structure
//
//	{
//	  "server": {
//	    "host": "localhost",
//	    "port": 8080,
//	    "verbose": false,
//	    "browse": true,
//	    "watch": false,
//	    "assets": "",
//	    "pollInterval": "250ms",
//	    "stopTimeout": "5s",
//	    "browseDelay": "1s",
//	    "waitInterval": "1s"
//	  },
//	  "log": {
//	    "level": "info",
//	    "format": "text"
//	  },
//	  "metrics": {
//	    "addr": "127.0.0.1:9090",
//	    "namespace": "modelview"
//	  },
//	  "s3": {
//	    "region": "us-east-1",
//	    "endpoint": "http://localhost:9000",
//	    "pathStyle": true
//	  }
//	}
//
// # Usage
//
//	cfg, err := config.LoadFromWorkingDir()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Port:", cfg.Server.Port)
package config

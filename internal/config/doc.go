// Package config loads histroute project configuration and route tables.
//
// The configuration is stored in histroute.json at the project root.
// This package handles loading, saving, and validating configuration.
//
// # Configuration File Structure
//
//	{
//	  "routes": "routes.yaml",
//	  "base": "https://example.com",
//	  "serve": {
//	    "port": 3000,
//	    "host": "localhost",
//	    "allowedOrigins": ["https://example.com"]
//	  },
//	  "s3": {
//	    "bucket": "my-config",
//	    "key": "web/routes.json",
//	    "region": "eu-west-1"
//	  }
//	}
//
// # Route Tables
//
// A route table maps route names to routes, in JSON or YAML:
//
//	home:
//	  pathname: /
//	post:
//	  pathname: /posts/:id
//	  meta: {title: Post}
//	legacy:
//	  pathname: /old/*
//	  ignore: true
//
// Routes keep document order. The first matching route wins, so order
// matters.
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	routes, err := cfg.LoadRoutes(ctx)
package config

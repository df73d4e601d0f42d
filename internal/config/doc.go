// Package config handles configuration loading for adk-gateway.
//
// # Overview
//
// Configuration is loaded from YAML files with environment variable expansion.
// The package provides validation and sensible defaults.
//
// # Configuration File
//
// Default locations (in order):
//
//  1. Path from ADK_GATEWAY_CONFIG environment variable
//  2. $XDG_CONFIG_HOME/adk-gateway/gateway.yaml
//  3. ~/.config/adk-gateway/gateway.yaml
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	tailscale:
//	  auth_key: "${TS_AUTHKEY}"
//
// Syntax: ${VAR_NAME}
//
// # Duration Parsing
//
// Timeout values use Go's time.ParseDuration syntax:
//
//	backend:
//	  create_session_timeout: "10s"
//	  run_timeout: "30s"
//	  health_timeout: "5s"
//
// Supported units: ns, us, ms, s, m, h
//
// # Configuration Sections
//
// Server settings:
//
//	server:
//	  http_addr: "localhost:5000"
//	  allowed_origin: "*"
//
// Backend settings:
//
//	backend:
//	  base_url: "http://127.0.0.1:8000"
//	  app_name: "app"
//	  user_id: "user"
//
// Tailscale hosting (optional, replaces the TCP listener):
//
//	tailscale:
//	  enabled: true
//	  hostname: "adk-gateway"
//	  funnel: false
package config

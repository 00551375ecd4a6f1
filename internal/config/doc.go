// Package config defines the application's configuration structure and
// loading logic, combining environment variables, optional config files,
// and validated defaults.
package config

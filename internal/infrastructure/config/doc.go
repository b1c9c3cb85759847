// Package config loads and validates Vidyank Core configuration.
//
// Configuration is layered: hard-coded defaults, then the YAML file, then a
// .env file, then VIDYANK_* environment variables. Validate reports every
// problem in one error so a broken deployment can be fixed in a single pass.
//
// Secrets (the JWT signing key, broker and InfluxDB credentials) belong in the
// environment, not in the committed YAML file.
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    return err
//	}
//	fmt.Println(cfg.Security.JWT.TokenTTL)
package config

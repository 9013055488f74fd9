// Package config loads batchkit settings from a YAML file, an optional .env
// file and the environment.
//
// Files are looked up next to the binary's cmd directory, in ./config and in
// the working directory unless explicit paths are given. Environment variables
// carrying the BATCHKIT_ prefix override file values, with underscores mapped
// to nesting:
//
//	BATCHKIT_PIPELINE_BATCH_SIZE=64   ->  pipeline.batch_size
//	BATCHKIT_LOGGING_LEVEL=debug      ->  logging.level
//
// # Usage
//
//	var cfg config.AppConfig
//	if err := config.Load("batchkit", &cfg, config.WithConfigFile(path)); err != nil {
//	    return err
//	}
//	cfg.ApplyDefaults()
//	if err := cfg.Validate(); err != nil {
//	    return err
//	}
//	p, err := batch.New(src, cfg.Pipeline.BatchSize, transform, cfg.Pipeline.Options()...)
package config

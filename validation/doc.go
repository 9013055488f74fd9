// Package validation validates configuration structs with struct tags.
//
//	type PipelineConfig struct {
//	    BatchSize int `mapstructure:"batch_size" validate:"gt=0"`
//	}
//	err := validation.Validate(cfg) // *errors.AppError with CONFIGURATION_ERROR
package validation

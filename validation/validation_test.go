package validation

import (
	"strings"
	"testing"

	"github.com/kbukum/batchkit/errors"
)

type sample struct {
	BatchSize int    `mapstructure:"batch_size" validate:"gt=0"`
	Workers   int    `mapstructure:"workers" validate:"gte=1,lte=64"`
	Mode      string `mapstructure:"mode" validate:"omitempty,oneof=fast slow"`
	Nested    inner  `mapstructure:"nested"`
}

type inner struct {
	QueueCapacity int `validate:"gt=0"`
}

func TestValidate_OK(t *testing.T) {
	err := Validate(sample{BatchSize: 1, Workers: 2, Nested: inner{QueueCapacity: 1}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_CollectsAllFields(t *testing.T) {
	err := Validate(sample{BatchSize: 0, Workers: 100, Mode: "medium"})
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, errors.ErrCodeConfiguration) {
		t.Fatalf("expected CONFIGURATION_ERROR, got %v", err)
	}
	msg := err.Error()
	for _, want := range []string{
		"batch_size must be greater than 0",
		"workers must be at most 64",
		"mode must be one of: fast slow",
		"nested.queue_capacity must be greater than 0",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("expected %q in %q", want, msg)
		}
	}

	appErr, _ := errors.AsAppError(err)
	fields, ok := appErr.Details["fields"].([]FieldError)
	if !ok || len(fields) != 4 {
		t.Errorf("expected 4 field errors, got %v", appErr.Details["fields"])
	}
}

func TestToSnakeCase(t *testing.T) {
	tests := map[string]string{
		"QueueCapacity": "queue_capacity",
		"Workers":       "workers",
		"":              "",
	}
	for in, want := range tests {
		if got := toSnakeCase(in); got != want {
			t.Errorf("toSnakeCase(%q) = %q, want %q", in, got, want)
		}
	}
}

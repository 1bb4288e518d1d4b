package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapNilReturnsNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrorTypeIO, SeverityHigh, "should not appear"))
}

func TestErrorStringIncludesCause(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrap(cause, ErrorTypeIO, SeverityHigh, "writing artifact")
	assert.Contains(t, err.Error(), "writing artifact")
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, cause, err.Unwrap())
}

func TestConvenienceConstructorsSetTypeAndSeverity(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		wantType ErrorType
	}{
		{"config", ConfigError("missing field"), ErrorTypeConfig},
		{"io", IOError(errors.New("x"), "read failed"), ErrorTypeIO},
		{"data", DataError(errors.New("x"), "bad json"), ErrorTypeData},
		{"policy", PolicyError("gate_failure", "blocked"), ErrorTypePolicy},
		{"external", ExternalError(errors.New("x"), "api down"), ErrorTypeExternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantType, tt.err.Type)
		})
	}
}

func TestPolicyErrorCarriesCode(t *testing.T) {
	err := PolicyErrorf("degradation_guard", "dropped from %d to %d", 10, 1)
	assert.Equal(t, "degradation_guard", err.Code)
	assert.True(t, IsPolicyCode(err, "degradation_guard"))
	assert.False(t, IsPolicyCode(err, "gate_failure"))
	assert.False(t, IsPolicyCode(errors.New("plain error"), "degradation_guard"))
}

func TestIsFatal(t *testing.T) {
	assert.False(t, IsFatal(nil))
	assert.False(t, IsFatal(errors.New("plain error")))
	assert.True(t, IsFatal(ConfigError("missing")))     // SeverityCritical
	assert.False(t, IsFatal(DataError(errors.New("x"), "bad"))) // SeverityMedium
}

func TestGetSeverityAndType(t *testing.T) {
	assert.Equal(t, SeverityLow, GetSeverity(nil))
	assert.Equal(t, SeverityMedium, GetSeverity(errors.New("plain error")))
	assert.Equal(t, SeverityHigh, GetSeverity(IOError(errors.New("x"), "read failed")))

	assert.Equal(t, ErrorTypeExternal, GetType(nil))
	assert.Equal(t, ErrorTypeData, GetType(DataError(errors.New("x"), "bad")))
}

func TestWithContext(t *testing.T) {
	err := ConfigError("missing field").WithContext("field", "dsn")
	assert.Equal(t, "dsn", err.Context["field"])
}
